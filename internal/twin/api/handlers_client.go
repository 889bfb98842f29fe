package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/mypromo/connect-sdk-test/internal/twin/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

// settingRule describes one patchable settings field.
type settingRule struct {
	roles     []string
	isBool    bool
	low, high int
	apply     func(s *store.Settings, b bool, n int)
}

var settingRules = map[string]settingRule{
	"activate_new_fulfiller": {roles: []string{store.RoleMerchant}, isBool: true,
		apply: func(s *store.Settings, b bool, _ int) { s.ActivateNewFulfiller = &b }},
	"activate_new_products": {roles: []string{store.RoleMerchant}, isBool: true,
		apply: func(s *store.Settings, b bool, _ int) { s.ActivateNewProducts = &b }},
	"has_to_supply_carrier": {roles: []string{store.RoleMerchant, store.RoleFulfiller}, isBool: true,
		apply: func(s *store.Settings, b bool, _ int) { s.HasToSupplyCarrier = &b }},
	"has_to_supply_tracking_code": {roles: []string{store.RoleMerchant, store.RoleFulfiller}, isBool: true,
		apply: func(s *store.Settings, b bool, _ int) { s.HasToSupplyTrackingCode = &b }},
	"price_reset_logic": {roles: []string{store.RoleMerchant}, low: 0, high: 2,
		apply: func(s *store.Settings, _ bool, n int) { s.PriceResetLogic = &n }},
	"adjust_max_up_percentage": {roles: []string{store.RoleMerchant}, low: 0, high: 100,
		apply: func(s *store.Settings, _ bool, n int) { s.AdjustMaxUpPercentage = &n }},
	"adjust_max_down_percentage": {roles: []string{store.RoleMerchant}, low: 0, high: 100,
		apply: func(s *store.Settings, _ bool, n int) { s.AdjustMaxDownPercentage = &n }},
	"sent_to_production_delay": {roles: []string{store.RoleMerchant}, low: 0, high: 720,
		apply: func(s *store.Settings, _ bool, n int) { s.SentToProductionDelay = &n }},
}

// GetSettings handles GET /v1/client/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, ok := h.store.Settings.Get(clientFrom(r).Number)
	if !ok {
		notFound(w, "Client settings")
		return
	}
	twincore.JSON(w, http.StatusOK, settings)
}

// PatchSettings handles PATCH /v1/client/settings. Unknown fields and
// fields of the other role are rejected.
func (h *Handler) PatchSettings(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)

	var body map[string]json.RawMessage
	if !decode(w, r, &body) {
		return
	}

	type change struct {
		rule settingRule
		b    bool
		n    int
	}
	var changes []change
	errs := fieldErrors{}

	keys := lo.Keys(body)
	sort.Strings(keys)
	for _, key := range keys {
		rule, known := settingRules[key]
		if !known || !lo.Contains(rule.roles, client.Role) {
			errs.add(key, fmt.Sprintf("The %s field is not allowed for %s clients.", key, client.Role))
			continue
		}
		c := change{rule: rule}
		if rule.isBool {
			if err := json.Unmarshal(body[key], &c.b); err != nil {
				errs.add(key, fmt.Sprintf("The %s field must be true or false.", key))
				continue
			}
		} else {
			if err := json.Unmarshal(body[key], &c.n); err != nil {
				errs.add(key, fmt.Sprintf("The %s field must be an integer.", key))
				continue
			}
			if c.n < rule.low || c.n > rule.high {
				errs.add(key, fmt.Sprintf("The %s field must be between %d and %d.", key, rule.low, rule.high))
				continue
			}
		}
		changes = append(changes, c)
	}
	if errs.write(w, "The given data was invalid.") {
		return
	}

	now := h.store.Now()
	settings, ok := h.store.Settings.Update(client.Number, func(s *store.Settings) bool {
		for _, c := range changes {
			c.rule.apply(s, c.b, c.n)
		}
		s.UpdatedAt = now
		return true
	})
	if !ok {
		notFound(w, "Client settings")
		return
	}
	h.logger.Debug("settings updated", zap.String("client_id", client.ID), zap.Strings("fields", keys))
	twincore.JSON(w, http.StatusOK, settings)
}

// connectorView is a catalog connector with the client's configuration.
type connectorView struct {
	store.Connector
	Configured    bool           `json:"configured"`
	Configuration map[string]any `json:"configuration"`
	UpdatedAt     string         `json:"updated_at,omitempty"`
}

// ListConnectors handles GET /v1/client/connectors.
func (h *Handler) ListConnectors(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	q := r.URL.Query()
	errs := fieldErrors{}
	connectorID := intQuery(q, "connector_id", errs)
	key, target := q.Get("connector_key"), q.Get("target")

	configured := h.store.Connectors.Filter(func(_ int, c store.ClientConnector) bool { return c.Owner == client.Number })
	var views []connectorView
	for _, c := range store.Connectors {
		if (connectorID != 0 && c.ID != connectorID) || (key != "" && c.Key != key) || (target != "" && c.Target != target) {
			continue
		}
		v := connectorView{Connector: c, Configuration: map[string]any{}}
		if cc, ok := lo.Find(configured, func(cc store.ClientConnector) bool { return cc.ConnectorID == c.ID }); ok {
			v.Configured = true
			v.Configuration = cc.Configuration
			v.UpdatedAt = cc.UpdatedAt
		}
		views = append(views, v)
	}
	writePage(w, r, views, errs)
}

// UpdateConnector handles PATCH /v1/client/connectors/{key}. The key may
// be the connector key or its numeric id.
func (h *Handler) UpdateConnector(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	connector, ok := store.FindConnector(chi.URLParam(r, "key"))
	if !ok {
		notFound(w, "Connector")
		return
	}

	var req struct {
		Target        string         `json:"target"`
		Configuration map[string]any `json:"configuration"`
	}
	if !decode(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	if req.Target == "" {
		errs.add("target", "The target field is required.")
	} else if req.Target != connector.Target {
		errs.add("target", "The selected target is invalid.")
	}
	for _, field := range connector.Required {
		v, _ := req.Configuration[field].(string)
		if v == "" {
			errs.add("configuration."+field, fmt.Sprintf("The configuration.%s field is required.", field))
		}
	}
	for _, field := range []string{"shop_url", "instance_url"} {
		if v, ok := req.Configuration[field].(string); ok && v != "" && !absoluteURL(v) {
			errs.add("configuration."+field, fmt.Sprintf("The configuration.%s field must be a valid URL.", field))
		}
	}
	if errs.write(w, "The given data was invalid.") {
		return
	}

	defer h.store.Lock()()
	now := h.store.Now()
	existing := h.store.Connectors.Filter(func(_ int, c store.ClientConnector) bool {
		return c.Owner == client.Number && c.ConnectorID == connector.ID
	})
	var saved store.ClientConnector
	if len(existing) > 0 {
		saved, _ = h.store.Connectors.Update(existing[0].ID, func(c *store.ClientConnector) bool {
			c.Configuration = req.Configuration
			c.UpdatedAt = now
			return true
		})
	} else {
		saved = h.store.Connectors.Insert(func(id int) store.ClientConnector {
			return store.ClientConnector{
				ID: id, Owner: client.Number, ConnectorID: connector.ID, ConnectorKey: connector.Key,
				Target: req.Target, Configuration: req.Configuration, UpdatedAt: now,
			}
		})
	}
	twincore.JSON(w, http.StatusOK, saved)
}

// ListJobs handles GET /v1/client/jobs.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	jobs := h.store.Jobs.Filter(func(_ int, j store.Job) bool { return j.Owner == client.Number })
	writePage(w, r, jobs, nil)
}

// GetJob handles GET /v1/client/jobs/{id}.
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "id", "Job")
	if !ok {
		return
	}
	job, ok := h.store.Jobs.Get(id)
	if !ok || job.Owner != clientFrom(r).Number {
		notFound(w, "Job")
		return
	}
	twincore.JSON(w, http.StatusOK, job)
}
