package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	pkgstore "github.com/mypromo/connect-sdk-test/pkg/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
)

// fieldErrors collects per-field validation messages.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, msg string) {
	f[field] = append(f[field], msg)
}

// write reports whether there were errors and, if so, writes a 422.
func (f fieldErrors) write(w http.ResponseWriter, message string) bool {
	if len(f) == 0 {
		return false
	}
	twincore.ValidationError(w, message, f)
	return true
}

// pageParams reads page, per_page and pagination. pagination=false returns
// every item on one page.
func pageParams(q url.Values) (page, perPage int, errs fieldErrors) {
	errs = fieldErrors{}
	page, perPage = 1, defaultPerPage
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errs.add("page", "must be a positive integer")
		} else {
			page = n
		}
	}
	if v := q.Get("per_page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxPerPage {
			errs.add("per_page", fmt.Sprintf("must be between 1 and %d", maxPerPage))
		} else {
			perPage = n
		}
	}
	if v := q.Get("pagination"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs.add("pagination", "must be a boolean")
		} else if !b {
			page, perPage = 1, 0
		}
	}
	return page, perPage, errs
}

// writePage paginates items according to the request query.
func writePage[T any](w http.ResponseWriter, r *http.Request, items []T, extra fieldErrors) {
	page, perPage, errs := pageParams(r.URL.Query())
	for k, v := range extra {
		errs[k] = append(errs[k], v...)
	}
	if errs.write(w, "The given data was invalid.") {
		return
	}
	if items == nil {
		items = []T{}
	}
	twincore.JSON(w, http.StatusOK, pkgstore.Paginate(items, page, perPage))
}

// decode reads a JSON request body into v. An empty body leaves v as is.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		twincore.Error(w, http.StatusBadRequest, "bad_request", "failed to read body")
		return false
	}
	if strings.TrimSpace(string(data)) == "" {
		return true
	}
	if err := json.Unmarshal(data, v); err != nil {
		twincore.Error(w, http.StatusBadRequest, "bad_request", "Invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// idParam parses a positive integer URL parameter, writing a 404 otherwise.
func idParam(w http.ResponseWriter, r *http.Request, name, resource string) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id < 1 {
		notFound(w, resource)
		return 0, false
	}
	return id, true
}

func notFound(w http.ResponseWriter, resource string) {
	twincore.Error(w, http.StatusNotFound, "not_found", resource+" not found.")
}

func conflict(w http.ResponseWriter, code, message string) {
	twincore.Error(w, http.StatusConflict, code, message)
}

// intQuery parses an optional integer filter.
func intQuery(q url.Values, key string, errs fieldErrors) int {
	v := q.Get(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		errs.add(key, "must be a non-negative integer")
		return 0
	}
	return n
}

// boolQuery parses an optional boolean filter.
func boolQuery(q url.Values, key string, errs fieldErrors) *bool {
	v := q.Get(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		errs.add(key, "must be a boolean")
		return nil
	}
	return &b
}

// absoluteURL reports whether raw parses as an absolute http(s) URL.
func absoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// baseURL reconstructs the scheme and host the request was sent to.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		scheme = fwd
	}
	return scheme + "://" + r.Host
}
