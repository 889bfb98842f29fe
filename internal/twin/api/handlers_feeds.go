package api

import (
	"net/http"
	"time"

	"github.com/samber/lo"

	"github.com/mypromo/connect-sdk-test/internal/twin/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

type callbackRequest struct {
	URL string `json:"url"`
}

type exportRequest struct {
	TemplateKey string           `json:"template_key"`
	Format      string           `json:"format"`
	Filters     map[string]any   `json:"filters"`
	Callback    *callbackRequest `json:"callback"`
}

func validateCallback(errs fieldErrors, cb *callbackRequest) string {
	if cb == nil {
		return ""
	}
	if cb.URL != "" && !absoluteURL(cb.URL) {
		errs.add("callback.url", "The callback.url must be a valid URL.")
	}
	return cb.URL
}

// createdRange reads the created_from and created_to filters.
func createdRange(r *http.Request, errs fieldErrors) (from, to time.Time) {
	q := r.URL.Query()
	parse := func(key string) time.Time {
		v := q.Get(key)
		if v == "" {
			return time.Time{}
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			errs.add(key, "The "+key+" must be an RFC 3339 date.")
		}
		return t
	}
	return parse("created_from"), parse("created_to")
}

func inRange(createdAt string, from, to time.Time) bool {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return true
	}
	return (from.IsZero() || !t.Before(from)) && (to.IsZero() || !t.After(to))
}

// RequestExport handles POST /v1/feeds/exports.
func (h *Handler) RequestExport(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	var req exportRequest
	if !decode(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	if !lo.Contains(store.ExportTemplates, req.TemplateKey) {
		errs.add("template_key", "The selected template_key is invalid.")
	}
	if !lo.Contains(store.FeedFormats, req.Format) {
		errs.add("format", "The selected format is invalid.")
	}
	if cur, ok := req.Filters["currency"].(string); ok && cur != "" && !lo.Contains(store.Currencies, cur) {
		errs.add("filters.currency", "The selected filters.currency is invalid.")
	}
	if pt, ok := req.Filters["product_types"].(string); ok && !lo.Contains([]string{"", "all", "products", "services"}, pt) {
		errs.add("filters.product_types", "The selected filters.product_types is invalid.")
	}
	callback := validateCallback(errs, req.Callback)
	if errs.write(w, "The given data was invalid.") {
		return
	}
	if req.Filters == nil {
		req.Filters = map[string]any{}
	}

	defer h.store.Lock()()
	now := h.store.Now()
	job := h.store.AddJob(client.Number, "product_export", req.TemplateKey)
	export := h.store.Exports.Insert(func(id int) store.Export {
		return store.Export{
			ID: id, Owner: client.Number, TemplateKey: req.TemplateKey, Format: req.Format,
			Filters: req.Filters, CallbackURL: callback, Status: store.FeedQueued, JobID: job.ID, CreatedAt: now,
		}
	})
	twincore.JSON(w, http.StatusCreated, export)
}

func (h *Handler) ownedExport(w http.ResponseWriter, r *http.Request) (store.Export, bool) {
	id, ok := idParam(w, r, "id", "Export")
	if !ok {
		return store.Export{}, false
	}
	e, ok := h.store.Exports.Get(id)
	if !ok || e.Owner != clientFrom(r).Number {
		notFound(w, "Export")
		return store.Export{}, false
	}
	return e, true
}

// GetExport handles GET /v1/feeds/exports/{id}.
func (h *Handler) GetExport(w http.ResponseWriter, r *http.Request) {
	if e, ok := h.ownedExport(w, r); ok {
		twincore.JSON(w, http.StatusOK, e)
	}
}

// ListExports handles GET /v1/feeds/exports.
func (h *Handler) ListExports(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	errs := fieldErrors{}
	from, to := createdRange(r, errs)
	exports := h.store.Exports.Filter(func(_ int, e store.Export) bool {
		return e.Owner == client.Number && inRange(e.CreatedAt, from, to)
	})
	writePage(w, r, exports, errs)
}

// CancelExport handles PATCH /v1/feeds/exports/{id}/cancel. Only queued
// exports can be cancelled.
func (h *Handler) CancelExport(w http.ResponseWriter, r *http.Request) {
	e, ok := h.ownedExport(w, r)
	if !ok {
		return
	}
	updated, ok := h.store.Exports.Update(e.ID, func(e *store.Export) bool {
		if e.Status != store.FeedQueued {
			return false
		}
		e.Status = store.FeedCancelled
		return true
	})
	if !ok {
		conflict(w, "feed_not_cancellable", "Only queued exports can be cancelled.")
		return
	}
	twincore.JSON(w, http.StatusOK, updated)
}

// DeleteExport handles DELETE /v1/feeds/exports/{id}.
func (h *Handler) DeleteExport(w http.ResponseWriter, r *http.Request) {
	e, ok := h.ownedExport(w, r)
	if !ok {
		return
	}
	h.store.Exports.Delete(e.ID)
	twincore.JSON(w, http.StatusOK, map[string]any{"id": e.ID, "deleted": true})
}

type importInput struct {
	URL    string `json:"url"`
	Format string `json:"format"`
}

type importRequest struct {
	TemplateID  int              `json:"template_id"`
	TemplateKey string           `json:"template_key"`
	DryRun      bool             `json:"dry_run"`
	Input       importInput      `json:"input"`
	Callback    *callbackRequest `json:"callback"`
}

// RequestImport handles POST /v1/feeds/imports.
func (h *Handler) RequestImport(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	var req importRequest
	if !decode(w, r, &req) {
		return
	}

	errs := fieldErrors{}
	key := req.TemplateKey
	if req.TemplateID != 0 {
		byID, ok := store.ImportTemplateIDs[req.TemplateID]
		switch {
		case !ok:
			errs.add("template_id", "The selected template_id is invalid.")
		case key != "" && key != byID:
			errs.add("template_key", "The template_key does not match template_id.")
		default:
			key = byID
		}
	}
	if !lo.Contains(store.ImportTemplates, key) {
		errs.add("template_key", "The selected template_key is invalid.")
	}
	if !absoluteURL(req.Input.URL) {
		errs.add("input.url", "The input.url must be a valid URL.")
	}
	if !lo.Contains(store.FeedFormats, req.Input.Format) {
		errs.add("input.format", "The selected input.format is invalid.")
	}
	callback := validateCallback(errs, req.Callback)
	if errs.write(w, "The given data was invalid.") {
		return
	}

	defer h.store.Lock()()
	now := h.store.Now()
	job := h.store.AddJob(client.Number, "product_import", key)
	imp := h.store.Imports.Insert(func(id int) store.Import {
		return store.Import{
			ID: id, Owner: client.Number, TemplateID: req.TemplateID, TemplateKey: key, DryRun: req.DryRun,
			InputURL: req.Input.URL, InputFormat: req.Input.Format, CallbackURL: callback,
			Status: store.FeedQueued, JobID: job.ID, CreatedAt: now,
		}
	})
	twincore.JSON(w, http.StatusCreated, imp)
}

func (h *Handler) ownedImport(w http.ResponseWriter, r *http.Request) (store.Import, bool) {
	id, ok := idParam(w, r, "id", "Import")
	if !ok {
		return store.Import{}, false
	}
	i, ok := h.store.Imports.Get(id)
	if !ok || i.Owner != clientFrom(r).Number {
		notFound(w, "Import")
		return store.Import{}, false
	}
	return i, true
}

// GetImport handles GET /v1/feeds/imports/{id}.
func (h *Handler) GetImport(w http.ResponseWriter, r *http.Request) {
	if i, ok := h.ownedImport(w, r); ok {
		twincore.JSON(w, http.StatusOK, i)
	}
}

// ListImports handles GET /v1/feeds/imports.
func (h *Handler) ListImports(w http.ResponseWriter, r *http.Request) {
	client := clientFrom(r)
	errs := fieldErrors{}
	from, to := createdRange(r, errs)
	imports := h.store.Imports.Filter(func(_ int, i store.Import) bool {
		return i.Owner == client.Number && inRange(i.CreatedAt, from, to)
	})
	writePage(w, r, imports, errs)
}

// transitionImport moves an import from one of the allowed statuses to
// next, writing a 409 when the import is in any other status.
func (h *Handler) transitionImport(w http.ResponseWriter, r *http.Request, next, code, message string, allowed ...string) {
	i, ok := h.ownedImport(w, r)
	if !ok {
		return
	}
	updated, ok := h.store.Imports.Update(i.ID, func(i *store.Import) bool {
		if !lo.Contains(allowed, i.Status) {
			return false
		}
		i.Status = next
		if next == store.FeedValidated {
			i.Validation = &store.Validated{Rows: 3, Errors: []string{}}
		}
		return true
	})
	if !ok {
		conflict(w, code, message)
		return
	}
	twincore.JSON(w, http.StatusOK, updated)
}

// CancelImport handles PATCH /v1/feeds/imports/{id}/cancel.
func (h *Handler) CancelImport(w http.ResponseWriter, r *http.Request) {
	h.transitionImport(w, r, store.FeedCancelled, "feed_not_cancellable",
		"Only queued or validated imports can be cancelled.", store.FeedQueued, store.FeedValidated)
}

// ValidateImport handles PATCH /v1/feeds/imports/{id}/validate.
func (h *Handler) ValidateImport(w http.ResponseWriter, r *http.Request) {
	h.transitionImport(w, r, store.FeedValidated, "feed_not_validatable",
		"Only queued imports can be validated.", store.FeedQueued)
}

// ConfirmImport handles PATCH /v1/feeds/imports/{id}/confirm.
func (h *Handler) ConfirmImport(w http.ResponseWriter, r *http.Request) {
	h.transitionImport(w, r, store.FeedConfirmed, "feed_not_validated",
		"The import must be validated before it can be confirmed.", store.FeedValidated)
}

// DeleteImport handles DELETE /v1/feeds/imports/{id}.
func (h *Handler) DeleteImport(w http.ResponseWriter, r *http.Request) {
	i, ok := h.ownedImport(w, r)
	if !ok {
		return
	}
	h.store.Imports.Delete(i.ID)
	twincore.JSON(w, http.StatusOK, map[string]any{"id": i.ID, "deleted": true})
}
