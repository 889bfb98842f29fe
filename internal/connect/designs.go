package connect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/mypromo/connect-sdk-test/internal/apierr"
)

// Designs drives the personalization editor.
type Designs struct{ s *Session }

// Designs returns the design repository.
func (s *Session) Designs() Designs { return Designs{s} }

// CreateEditorUserHash registers an editor user and returns its hash under
// "editor_user_hash".
func (r Designs) CreateEditorUserHash(ctx context.Context) (Payload, error) {
	return r.s.post(ctx, "/v1/designs/user-hash", struct{}{})
}

// Create starts a design. The response carries "id" and "editor_start_url".
func (r Designs) Create(ctx context.Context, d Design) (Payload, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return r.s.post(ctx, "/v1/designs", d)
}

// Submit finalizes a design.
func (r Designs) Submit(ctx context.Context, id string) (Payload, error) {
	if err := requireKey("id", id); err != nil {
		return nil, err
	}
	return r.s.patch(ctx, "/v1/designs/"+url.PathEscape(id)+"/submit", struct{}{})
}

// PreviewPDF downloads the rendered preview of a submitted design.
func (r Designs) PreviewPDF(ctx context.Context, id string) ([]byte, error) {
	if err := requireKey("id", id); err != nil {
		return nil, err
	}
	data, ctype, err := r.s.raw(ctx, http.MethodGet, "/v1/designs/"+url.PathEscape(id)+"/preview", "application/pdf")
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(ctype, "application/pdf") {
		return nil, &apierr.RequestError{
			Op:  "GET /v1/designs/" + id + "/preview",
			Err: fmt.Errorf("unexpected content type %q", ctype),
		}
	}
	return data, nil
}

// SavePreview downloads the preview and writes it to path. It returns the
// file name and size.
func (r Designs) SavePreview(ctx context.Context, id, path string) (Payload, error) {
	if path == "" {
		return nil, &apierr.ValidationError{Message: "invalid preview target", Errors: map[string][]string{"path": {"required"}}}
	}
	data, err := r.PreviewPDF(ctx, id)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &apierr.RequestError{Op: "save preview", Err: err}
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, &apierr.RequestError{Op: "save preview", Err: err}
	}
	return Payload{"file": filepath.Base(path), "bytes": len(data)}, nil
}
