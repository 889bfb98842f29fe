package connect

import (
	"context"
	"net/http"
)

// ProductExports requests and manages product export files.
type ProductExports struct{ s *Session }

// ProductExports returns the product export repository.
func (s *Session) ProductExports() ProductExports { return ProductExports{s} }

// Request queues a new export.
func (r ProductExports) Request(ctx context.Context, e ProductExport) (Payload, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return r.s.post(ctx, "/v1/feeds/exports", e)
}

// Find returns one export.
func (r ProductExports) Find(ctx context.Context, id int) (Payload, error) {
	return feedCall(ctx, r.s, http.MethodGet, "/v1/feeds/exports/", id, "")
}

// All lists exports.
func (r ProductExports) All(ctx context.Context, opts FeedOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/feeds/exports", opts.values())
}

// Cancel stops a queued or running export.
func (r ProductExports) Cancel(ctx context.Context, id int) (Payload, error) {
	return feedCall(ctx, r.s, http.MethodPatch, "/v1/feeds/exports/", id, "/cancel")
}

// Delete removes a finished or cancelled export.
func (r ProductExports) Delete(ctx context.Context, id int) (Payload, error) {
	return feedCall(ctx, r.s, http.MethodDelete, "/v1/feeds/exports/", id, "")
}

// ProductImports requests and manages product imports.
type ProductImports struct{ s *Session }

// ProductImports returns the product import repository.
func (s *Session) ProductImports() ProductImports { return ProductImports{s} }

// Request queues a new import.
func (r ProductImports) Request(ctx context.Context, i ProductImport) (Payload, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	return r.s.post(ctx, "/v1/feeds/imports", i)
}

// Find returns one import.
func (r ProductImports) Find(ctx context.Context, id int) (Payload, error) {
	return feedCall(ctx, r.s, http.MethodGet, "/v1/feeds/imports/", id, "")
}

// All lists imports.
func (r ProductImports) All(ctx context.Context, opts FeedOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/feeds/imports", opts.values())
}

// Cancel stops a queued import.
func (r ProductImports) Cancel(ctx context.Context, id int) (Payload, error) {
	return feedCall(ctx, r.s, http.MethodPatch, "/v1/feeds/imports/", id, "/cancel")
}

// Delete removes an import.
func (r ProductImports) Delete(ctx context.Context, id int) (Payload, error) {
	return feedCall(ctx, r.s, http.MethodDelete, "/v1/feeds/imports/", id, "")
}

// Validate runs the import's validation pass.
func (r ProductImports) Validate(ctx context.Context, id int) (Payload, error) {
	return feedCall(ctx, r.s, http.MethodPatch, "/v1/feeds/imports/", id, "/validate")
}

// Confirm applies a validated import.
func (r ProductImports) Confirm(ctx context.Context, id int) (Payload, error) {
	return feedCall(ctx, r.s, http.MethodPatch, "/v1/feeds/imports/", id, "/confirm")
}

func feedCall(ctx context.Context, s *Session, method, prefix string, id int, suffix string) (Payload, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	var body any
	if method == http.MethodPatch {
		body = struct{}{}
	}
	return s.do(ctx, method, prefix+itoa(id)+suffix, nil, body)
}
