package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mypromo/connect-sdk-test/pkg/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

// ---------------------------------------------------------------------------
// Mock state store
// ---------------------------------------------------------------------------

type mockState struct {
	data        map[string]string
	resetCalled bool
}

func newMockState() *mockState {
	return &mockState{data: map[string]string{"key": "value"}}
}

func (m *mockState) Snapshot() any {
	return m.data
}

func (m *mockState) LoadState(data []byte) error {
	var d map[string]string
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	m.data = d
	return nil
}

func (m *mockState) Reset() {
	m.resetCalled = true
	m.data = map[string]string{"key": "value"}
}

var testBase = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func setupTestServer(t *testing.T, state StateStore, clock *store.Clock) (*httptest.Server, *twincore.Middleware) {
	t.Helper()
	mw := twincore.NewMiddleware(&twincore.Config{Name: "test-admin"}, nil)

	r := chi.NewRouter()
	NewHandler(state, mw, clock).Routes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, mw
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHandleHealth(t *testing.T) {
	srv, _ := setupTestServer(t, newMockState(), nil)

	resp := do(t, http.MethodGet, srv.URL+"/admin/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["status"] != "ok" {
		t.Errorf("expected status=ok, got %+v", body)
	}
}

func TestHandleReset(t *testing.T) {
	state := newMockState()
	clk := store.NewClock(testBase)
	clk.Advance(time.Hour)

	srv, mw := setupTestServer(t, state, clk)
	mw.ReqLog.Add(twincore.RequestLogEntry{Path: "/v1/status"})
	mw.Faults.Set("/v1/status", twincore.FaultConfig{StatusCode: 500})

	resp := do(t, http.MethodPost, srv.URL+"/admin/reset", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if !state.resetCalled {
		t.Error("expected state Reset to be called")
	}
	if clk.Offset() != 0 {
		t.Errorf("expected clock offset to be reset, got %v", clk.Offset())
	}
	if len(mw.ReqLog.Entries()) != 0 || len(mw.Faults.All()) != 0 {
		t.Error("expected request log and faults to be cleared")
	}
}

func TestHandleGetState(t *testing.T) {
	srv, _ := setupTestServer(t, newMockState(), nil)

	resp := do(t, http.MethodGet, srv.URL+"/admin/state", "")
	var body map[string]string
	json.NewDecoder(resp.Body).Decode(&body)
	if body["key"] != "value" {
		t.Errorf("expected key=value, got %+v", body)
	}
}

func TestHandleLoadState(t *testing.T) {
	state := newMockState()
	srv, _ := setupTestServer(t, state, nil)

	resp := do(t, http.MethodPost, srv.URL+"/admin/state", `{"foo":"bar"}`)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if state.data["foo"] != "bar" {
		t.Errorf("expected state to be updated, got %+v", state.data)
	}
}

func TestHandleLoadStateInvalid(t *testing.T) {
	srv, _ := setupTestServer(t, newMockState(), nil)

	resp := do(t, http.MethodPost, srv.URL+"/admin/state", "{bad json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
	var body twincore.ErrorBody
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Code != "bad_request" {
		t.Errorf("expected Connect error body, got %+v", body)
	}
}

func TestHandleInjectFaultNestedPath(t *testing.T) {
	srv, mw := setupTestServer(t, newMockState(), nil)

	resp := do(t, http.MethodPost, srv.URL+"/admin/fault/v1/client/settings", `{"status_code":503,"times":1}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	fault := mw.Faults.Check("PATCH", "/v1/client/settings")
	if fault == nil || fault.StatusCode != 503 {
		t.Fatalf("expected fault on nested path, got %+v", fault)
	}
}

func TestHandleInjectFaultInvalid(t *testing.T) {
	srv, _ := setupTestServer(t, newMockState(), nil)

	tests := []struct {
		name string
		body string
	}{
		{"bad json", "{bad"},
		{"missing status", `{"message":"x"}`},
		{"status out of range", `{"status_code":700}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, srv.URL+"/admin/fault/v1/status", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestHandleRemoveFault(t *testing.T) {
	srv, mw := setupTestServer(t, newMockState(), nil)
	mw.Faults.Set("/v1/orders", twincore.FaultConfig{StatusCode: 500})

	resp := do(t, http.MethodDelete, srv.URL+"/admin/fault/v1/orders", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if mw.Faults.Check("GET", "/v1/orders") != nil {
		t.Error("expected fault to be removed")
	}

	resp = do(t, http.MethodDelete, srv.URL+"/admin/fault/v1/orders", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing fault, got %d", resp.StatusCode)
	}
}

func TestHandleListFaults(t *testing.T) {
	srv, mw := setupTestServer(t, newMockState(), nil)
	mw.Faults.Set("/a", twincore.FaultConfig{StatusCode: 500})

	resp := do(t, http.MethodGet, srv.URL+"/admin/faults", "")
	var body map[string]twincore.FaultConfig
	json.NewDecoder(resp.Body).Decode(&body)
	if _, ok := body["/a"]; !ok {
		t.Errorf("expected fault /a in listing, got %+v", body)
	}
}

func TestHandleGetRequests(t *testing.T) {
	srv, mw := setupTestServer(t, newMockState(), nil)
	mw.ReqLog.Add(twincore.RequestLogEntry{Method: "GET", Path: "/v1/status"})

	resp := do(t, http.MethodGet, srv.URL+"/admin/requests", "")
	var body []twincore.RequestLogEntry
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body) != 1 || body[0].Path != "/v1/status" {
		t.Fatalf("unexpected entries: %+v", body)
	}
}

func TestHandleTime(t *testing.T) {
	clk := store.NewClock(testBase)
	srv, _ := setupTestServer(t, newMockState(), clk)

	resp := do(t, http.MethodPost, srv.URL+"/admin/time/advance", `{"duration":"1h"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var result map[string]any
	json.NewDecoder(resp.Body).Decode(&result)
	if result["simulated"] != "2024-03-01T13:00:00Z" {
		t.Errorf("unexpected simulated time %v", result["simulated"])
	}

	resp = do(t, http.MethodGet, srv.URL+"/admin/time", "")
	json.NewDecoder(resp.Body).Decode(&result)
	if result["offset"] != "1h0m0s" {
		t.Errorf("unexpected offset %v", result["offset"])
	}
}

func TestHandleTimeErrors(t *testing.T) {
	noClock, _ := setupTestServer(t, newMockState(), nil)
	withClock, _ := setupTestServer(t, newMockState(), store.NewClock(testBase))

	tests := []struct {
		name   string
		url    string
		body   string
		status int
	}{
		{"no clock", noClock.URL, `{"duration":"1h"}`, http.StatusBadRequest},
		{"bad duration", withClock.URL, `{"duration":"soon"}`, http.StatusBadRequest},
		{"bad json", withClock.URL, "{bad", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := do(t, http.MethodPost, tt.url+"/admin/time/advance", tt.body)
			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
		})
	}

	resp := do(t, http.MethodGet, noClock.URL+"/admin/time", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 without clock, got %d", resp.StatusCode)
	}
}

type listingState struct {
	*mockState
}

func (listingState) APIClients() []APIClient {
	return []APIClient{{ID: "merchant", Role: "merchant"}}
}

func TestHandleClients(t *testing.T) {
	srv, _ := setupTestServer(t, listingState{newMockState()}, nil)

	resp := do(t, http.MethodGet, srv.URL+"/admin/clients", "")
	var body struct {
		Data []APIClient `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body.Data) != 1 || body.Data[0].ID != "merchant" {
		t.Errorf("unexpected clients %+v", body.Data)
	}

	plain, _ := setupTestServer(t, newMockState(), nil)
	resp = do(t, http.MethodGet, plain.URL+"/admin/clients", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 without a client lister, got %d", resp.StatusCode)
	}
}

func TestHandleRequestsFilter(t *testing.T) {
	srv, mw := setupTestServer(t, newMockState(), nil)
	mw.ReqLog.Add(twincore.RequestLogEntry{Method: "GET", Path: "/v1/orders/1"})
	mw.ReqLog.Add(twincore.RequestLogEntry{Method: "POST", Path: "/v1/orders"})
	mw.ReqLog.Add(twincore.RequestLogEntry{Method: "GET", Path: "/v1/status"})

	resp := do(t, http.MethodGet, srv.URL+"/admin/requests?method=get&path=/v1/orders", "")
	var body []twincore.RequestLogEntry
	json.NewDecoder(resp.Body).Decode(&body)
	if len(body) != 1 || body[0].Path != "/v1/orders/1" {
		t.Fatalf("unexpected entries: %+v", body)
	}

	do(t, http.MethodDelete, srv.URL+"/admin/requests", "")
	if n := len(mw.ReqLog.Entries()); n != 0 {
		t.Errorf("expected empty log, got %d entries", n)
	}
}

func TestHandleClearFaults(t *testing.T) {
	srv, mw := setupTestServer(t, newMockState(), nil)
	mw.Faults.Set("/v1/orders", twincore.FaultConfig{StatusCode: 500})
	mw.Faults.Set("/v1/status", twincore.FaultConfig{StatusCode: 503})

	resp := do(t, http.MethodDelete, srv.URL+"/admin/faults", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	if len(mw.Faults.All()) != 0 {
		t.Error("expected all faults cleared")
	}
}

func TestHandleTimeRejectsRewind(t *testing.T) {
	srv, _ := setupTestServer(t, newMockState(), store.NewClock(testBase))

	resp := do(t, http.MethodPost, srv.URL+"/admin/time/advance", `{"duration":"-1h"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}
