package connect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mypromo/connect-sdk-test/internal/apierr"
)

// Misc groups the lookup endpoints: status, carriers, countries, locales,
// states, timezones and file downloads.
type Misc struct{ s *Session }

// Misc returns the miscellaneous repository.
func (s *Session) Misc() Misc { return Misc{s} }

// APIStatus returns the public API status.
func (r Misc) APIStatus(ctx context.Context) (Payload, error) {
	return r.s.Status(ctx)
}

// Carriers lists shipping carriers.
func (r Misc) Carriers(ctx context.Context, opts PageOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/carriers", opts.values())
}

// Countries lists countries.
func (r Misc) Countries(ctx context.Context, opts PageOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/countries", opts.values())
}

// Locales lists locales.
func (r Misc) Locales(ctx context.Context, opts PageOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/locales", opts.values())
}

// States lists country states.
func (r Misc) States(ctx context.Context, opts PageOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/states", opts.values())
}

// Timezones lists timezones.
func (r Misc) Timezones(ctx context.Context, opts PageOptions) (Payload, error) {
	return r.s.get(ctx, "/v1/timezones", opts.values())
}

// DownloadFile fetches a file served under the API endpoint. Only URLs on
// the session's endpoint are allowed so the bearer token never leaves it.
func (r Misc) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	u, err := url.Parse(fileURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &apierr.ValidationError{Message: "invalid file url", Errors: map[string][]string{"url": {"must be an absolute url"}}}
	}
	base := r.s.client.baseURL
	if u.Scheme != base.Scheme || u.Host != base.Host {
		return nil, &apierr.ValidationError{
			Message: "invalid file url",
			Errors:  map[string][]string{"url": {fmt.Sprintf("must be served by %s", base.Host)}},
		}
	}
	path := strings.TrimPrefix(u.EscapedPath(), base.Path)
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	data, _, err := r.s.raw(ctx, http.MethodGet, path, "*/*")
	return data, err
}

func itoa(n int) string { return strconv.Itoa(n) }

func requireID(field string, id int) error {
	if id <= 0 {
		return &apierr.ValidationError{Message: "invalid identifier", Errors: map[string][]string{field: {"must be a positive integer"}}}
	}
	return nil
}

func requireKey(field, key string) error {
	if key == "" {
		return &apierr.ValidationError{Message: "invalid identifier", Errors: map[string][]string{field: {"required"}}}
	}
	return nil
}
