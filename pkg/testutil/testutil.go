// Package testutil drives the Connect twin over HTTP in tests: an API
// client that can log in with client credentials, an admin client for the
// control plane, and chainable response assertions.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

// TwinClient sends requests to a twin, optionally as a logged-in client.
// It fails the test on transport errors.
type TwinClient struct {
	BaseURL    string
	HTTPClient *http.Client
	token      string
	t          testing.TB
}

// NewTwinClient targets an httptest server.
func NewTwinClient(t testing.TB, server *httptest.Server) *TwinClient {
	return &TwinClient{BaseURL: server.URL, HTTPClient: server.Client(), t: t}
}

// NewTwinClientURL targets a twin listening at baseURL.
func NewTwinClientURL(t testing.TB, baseURL string) *TwinClient {
	return &TwinClient{BaseURL: strings.TrimRight(baseURL, "/"), HTTPClient: &http.Client{}, t: t}
}

// WithToken returns a copy sending token as the bearer token.
func (c *TwinClient) WithToken(token string) *TwinClient {
	cp := *c
	cp.token = token
	return &cp
}

// Login runs the client_credentials grant and returns a copy carrying the
// issued access token.
func (c *TwinClient) Login(clientID, clientSecret string) *TwinClient {
	c.t.Helper()
	form := url.Values{"grant_type": {"client_credentials"}}
	req := c.newRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(clientID, clientSecret)

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	c.send(req).AssertStatus(http.StatusOK).JSON(&tok)
	if tok.AccessToken == "" {
		c.t.Fatal("token response carries no access_token")
	}
	return c.WithToken(tok.AccessToken)
}

// Get sends a GET.
func (c *TwinClient) Get(path string) *Response {
	c.t.Helper()
	return c.do(http.MethodGet, path, nil)
}

// Post sends body as JSON.
func (c *TwinClient) Post(path string, body any) *Response {
	c.t.Helper()
	return c.do(http.MethodPost, path, body)
}

// Patch sends body as JSON.
func (c *TwinClient) Patch(path string, body any) *Response {
	c.t.Helper()
	return c.do(http.MethodPatch, path, body)
}

// Delete sends a DELETE.
func (c *TwinClient) Delete(path string) *Response {
	c.t.Helper()
	return c.do(http.MethodDelete, path, nil)
}

func (c *TwinClient) do(method, path string, body any) *Response {
	c.t.Helper()
	if body == nil {
		return c.send(c.newRequest(method, path, nil))
	}
	data, err := json.Marshal(body)
	if err != nil {
		c.t.Fatalf("encoding %s %s body: %v", method, path, err)
	}
	req := c.newRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return c.send(req)
}

func (c *TwinClient) newRequest(method, path string, body io.Reader) *http.Request {
	c.t.Helper()
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		c.t.Fatalf("building %s %s: %v", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	return req
}

func (c *TwinClient) send(req *http.Request) *Response {
	c.t.Helper()
	if c.token != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.t.Fatalf("reading %s %s: %v", req.Method, req.URL.Path, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: body, Headers: resp.Header, t: c.t}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	t          testing.TB
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) {
	r.t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		r.t.Fatalf("decoding response: %v\nbody: %s", err, r.Body)
	}
}

// JSONMap decodes the body as an object.
func (r *Response) JSONMap() map[string]any {
	r.t.Helper()
	var m map[string]any
	r.JSON(&m)
	return m
}

// Data decodes a paginated list body and returns its data items.
func (r *Response) Data() []map[string]any {
	r.t.Helper()
	var page struct {
		Data []map[string]any `json:"data"`
	}
	r.JSON(&page)
	if page.Data == nil {
		r.t.Fatalf("expected a data array, got %s", r.Body)
	}
	return page.Data
}

// AssertStatus checks the status code.
func (r *Response) AssertStatus(expected int) *Response {
	r.t.Helper()
	if r.StatusCode != expected {
		r.t.Errorf("expected status %d, got %d\nbody: %s", expected, r.StatusCode, r.Body)
	}
	return r
}

// AssertBodyContains checks the raw body for substr.
func (r *Response) AssertBodyContains(substr string) *Response {
	r.t.Helper()
	if !bytes.Contains(r.Body, []byte(substr)) {
		r.t.Errorf("expected body to contain %q, got: %s", substr, r.Body)
	}
	return r
}

// AssertErrorCode checks the code of a Connect error body.
func (r *Response) AssertErrorCode(code string) *Response {
	r.t.Helper()
	var body twincore.ErrorBody
	r.JSON(&body)
	if body.Code != code {
		r.t.Errorf("expected error code %q, got %q (message %q)", code, body.Code, body.Message)
	}
	return r
}

// AssertInvalidFields checks for a validation_failed body naming every
// field in fields.
func (r *Response) AssertInvalidFields(fields ...string) *Response {
	r.t.Helper()
	var body twincore.ErrorBody
	r.JSON(&body)
	if body.Code != "validation_failed" {
		r.t.Errorf("expected a validation error, got %q (message %q)", body.Code, body.Message)
		return r
	}
	for _, f := range fields {
		if len(body.Errors[f]) == 0 {
			r.t.Errorf("expected a validation message for %q, got %v", f, body.Errors)
		}
	}
	return r
}

// AdminClient calls the /admin control plane.
type AdminClient struct {
	*TwinClient
}

// NewAdminClient wraps tc.
func NewAdminClient(tc *TwinClient) *AdminClient {
	return &AdminClient{tc}
}

func (ac *AdminClient) Reset() *Response    { ac.t.Helper(); return ac.Post("/admin/reset", nil) }
func (ac *AdminClient) GetState() *Response { ac.t.Helper(); return ac.Get("/admin/state") }
func (ac *AdminClient) Health() *Response   { ac.t.Helper(); return ac.Get("/admin/health") }
func (ac *AdminClient) Clients() *Response  { ac.t.Helper(); return ac.Get("/admin/clients") }

// LoadState replaces the twin state with a snapshot from GetState.
func (ac *AdminClient) LoadState(state any) *Response {
	ac.t.Helper()
	return ac.Post("/admin/state", state)
}

// InjectFault registers fault for an API path such as
// "/v1/client/settings".
func (ac *AdminClient) InjectFault(endpoint string, fault any) *Response {
	ac.t.Helper()
	return ac.Post("/admin/fault/"+strings.TrimPrefix(endpoint, "/"), fault)
}

// RemoveFault drops the fault registered for endpoint.
func (ac *AdminClient) RemoveFault(endpoint string) *Response {
	ac.t.Helper()
	return ac.Delete("/admin/fault/" + strings.TrimPrefix(endpoint, "/"))
}

// Requests lists logged requests, narrowed by method and path prefix when
// they are not empty.
func (ac *AdminClient) Requests(method, pathPrefix string) *Response {
	ac.t.Helper()
	q := url.Values{}
	if method != "" {
		q.Set("method", method)
	}
	if pathPrefix != "" {
		q.Set("path", pathPrefix)
	}
	path := "/admin/requests"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return ac.Get(path)
}

// AdvanceTime moves the simulated clock forward by a Go duration string.
func (ac *AdminClient) AdvanceTime(duration string) *Response {
	ac.t.Helper()
	return ac.Post("/admin/time/advance", map[string]string{"duration": duration})
}
