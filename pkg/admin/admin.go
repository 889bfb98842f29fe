// Package admin provides the /admin/* control plane of the Connect twin:
// state reset and snapshots, fault injection, request inspection and the
// simulated clock.
package admin

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/mypromo/connect-sdk-test/pkg/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

// StateStore is the state a twin exposes to the control plane.
type StateStore interface {
	// Snapshot returns the full state as a JSON-serializable value.
	Snapshot() any
	// LoadState replaces the full state from a JSON body.
	LoadState(data []byte) error
	// Reset clears all state and reloads seed data.
	Reset()
}

// APIClient is a registered API client as listed by GET /admin/clients.
// Secrets are never listed.
type APIClient struct {
	ID   string `json:"client_id"`
	Role string `json:"client_type"`
}

// ClientLister is implemented by state stores that know their API clients.
type ClientLister interface {
	APIClients() []APIClient
}

// Handler serves the control plane.
type Handler struct {
	state StateStore
	mw    *twincore.Middleware
	clock *store.Clock
}

// NewHandler creates a new admin handler. clock may be nil.
func NewHandler(state StateStore, mw *twincore.Middleware, clock *store.Clock) *Handler {
	return &Handler{state: state, mw: mw, clock: clock}
}

// Routes mounts the control plane under /admin.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Post("/reset", h.reset)

		r.Get("/state", h.snapshot)
		r.Post("/state", h.loadState)
		r.Get("/clients", h.clients)

		r.Get("/faults", h.listFaults)
		r.Delete("/faults", h.clearFaults)
		r.Post("/fault/*", h.injectFault)
		r.Delete("/fault/*", h.removeFault)

		r.Get("/requests", h.requests)
		r.Delete("/requests", h.clearRequests)

		r.Get("/time", h.now)
		r.Post("/time/advance", h.advance)
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	twincore.Error(w, http.StatusBadRequest, "bad_request", msg)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	twincore.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// reset restores the seeded state, drops faults and the request log, and
// rewinds the clock.
func (h *Handler) reset(w http.ResponseWriter, _ *http.Request) {
	h.state.Reset()
	h.mw.ReqLog.Clear()
	h.mw.Faults.Reset()
	if h.clock != nil {
		h.clock.Reset()
	}
	twincore.JSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) snapshot(w http.ResponseWriter, _ *http.Request) {
	twincore.JSON(w, http.StatusOK, h.state.Snapshot())
}

func (h *Handler) loadState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		badRequest(w, "failed to read body: "+err.Error())
		return
	}
	if err := h.state.LoadState(body); err != nil {
		badRequest(w, "failed to load state: "+err.Error())
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (h *Handler) clients(w http.ResponseWriter, _ *http.Request) {
	lister, ok := h.state.(ClientLister)
	if !ok {
		twincore.Error(w, http.StatusNotFound, "not_found", "client listing not supported")
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]any{"data": lister.APIClients()})
}

// faultPath maps the wildcard back to the API path, so
// /admin/fault/v1/client/settings targets /v1/client/settings.
func faultPath(r *http.Request) string {
	return "/" + chi.URLParam(r, "*")
}

func (h *Handler) injectFault(w http.ResponseWriter, r *http.Request) {
	var fault twincore.FaultConfig
	if err := json.NewDecoder(r.Body).Decode(&fault); err != nil {
		badRequest(w, "invalid fault config: "+err.Error())
		return
	}
	if http.StatusText(fault.StatusCode) == "" {
		badRequest(w, "status_code must be a valid HTTP status")
		return
	}
	endpoint := faultPath(r)
	h.mw.Faults.Set(endpoint, fault)
	twincore.JSON(w, http.StatusOK, map[string]any{
		"status":   "injected",
		"endpoint": endpoint,
		"fault":    fault,
	})
}

func (h *Handler) removeFault(w http.ResponseWriter, r *http.Request) {
	endpoint := faultPath(r)
	if !h.mw.Faults.Remove(endpoint) {
		twincore.Error(w, http.StatusNotFound, "not_found", "no fault registered for "+endpoint)
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]any{"status": "removed", "endpoint": endpoint})
}

func (h *Handler) listFaults(w http.ResponseWriter, _ *http.Request) {
	twincore.JSON(w, http.StatusOK, h.mw.Faults.All())
}

func (h *Handler) clearFaults(w http.ResponseWriter, _ *http.Request) {
	h.mw.Faults.Reset()
	twincore.JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// requests lists the request log. ?method= and ?path= narrow it; path
// matches as a prefix.
func (h *Handler) requests(w http.ResponseWriter, r *http.Request) {
	method := strings.ToUpper(r.URL.Query().Get("method"))
	prefix := r.URL.Query().Get("path")
	entries := lo.Filter(h.mw.ReqLog.Entries(), func(e twincore.RequestLogEntry, _ int) bool {
		return (method == "" || e.Method == method) && strings.HasPrefix(e.Path, prefix)
	})
	twincore.JSON(w, http.StatusOK, entries)
}

func (h *Handler) clearRequests(w http.ResponseWriter, _ *http.Request) {
	h.mw.ReqLog.Clear()
	twincore.JSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (h *Handler) now(w http.ResponseWriter, _ *http.Request) {
	if h.clock == nil {
		twincore.Error(w, http.StatusNotFound, "not_found", "simulated clock not configured")
		return
	}
	twincore.JSON(w, http.StatusOK, h.clockBody())
}

func (h *Handler) advance(w http.ResponseWriter, r *http.Request) {
	if h.clock == nil {
		badRequest(w, "simulated clock not configured")
		return
	}
	var req struct {
		Duration string `json:"duration"` // e.g. "24h"
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request: "+err.Error())
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil {
		badRequest(w, "invalid duration: "+err.Error())
		return
	}
	if d < 0 {
		badRequest(w, "the clock only moves forward")
		return
	}

	h.clock.Advance(d)
	body := h.clockBody()
	body["status"] = "advanced"
	body["duration"] = d.String()
	twincore.JSON(w, http.StatusOK, body)
}

func (h *Handler) clockBody() map[string]any {
	return map[string]any{
		"simulated": h.clock.Now().Format(time.RFC3339),
		"offset":    h.clock.Offset().String(),
	}
}
