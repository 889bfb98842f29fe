package twincore

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RequestLogEntry captures details of an incoming request for admin inspection.
type RequestLogEntry struct {
	Seq        int               `json:"seq"`
	Method     string            `json:"method"`
	Path       string            `json:"path"`
	Query      string            `json:"query,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	StatusCode int               `json:"status_code"`
	RequestID  string            `json:"request_id,omitempty"`
	Faulted    bool              `json:"faulted,omitempty"`
}

// RequestLog is a thread-safe ring buffer of recent requests.
type RequestLog struct {
	mu      sync.RWMutex
	entries []RequestLogEntry
	maxSize int
	seq     int
}

// NewRequestLog creates a request log with the given max size.
func NewRequestLog(maxSize int) *RequestLog {
	return &RequestLog{
		entries: make([]RequestLogEntry, 0, maxSize),
		maxSize: maxSize,
	}
}

// Add appends an entry, evicting the oldest if at capacity. Entries are
// numbered in arrival order.
func (rl *RequestLog) Add(entry RequestLogEntry) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.seq++
	entry.Seq = rl.seq
	if len(rl.entries) >= rl.maxSize {
		rl.entries = rl.entries[1:]
	}
	rl.entries = append(rl.entries, entry)
}

// Entries returns a copy of all log entries.
func (rl *RequestLog) Entries() []RequestLogEntry {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	out := make([]RequestLogEntry, len(rl.entries))
	copy(out, rl.entries)
	return out
}

// Clear removes all entries and restarts numbering.
func (rl *RequestLog) Clear() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.entries = rl.entries[:0]
	rl.seq = 0
}

// FaultConfig defines an injected failure for one endpoint path.
type FaultConfig struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message,omitempty"`
	Code       string `json:"code,omitempty"`
	Body       string `json:"body,omitempty"`
	// Method limits the fault to one HTTP method. Empty matches any.
	Method string `json:"method,omitempty"`
	// Times is how many requests the fault fires for. Zero means every request.
	Times int `json:"times,omitempty"`
}

// FaultRegistry manages injected faults keyed by request path. A key ending
// in "*" matches every path with that prefix.
type FaultRegistry struct {
	mu     sync.Mutex
	faults map[string]FaultConfig
}

// NewFaultRegistry creates an empty fault registry.
func NewFaultRegistry() *FaultRegistry {
	return &FaultRegistry{
		faults: make(map[string]FaultConfig),
	}
}

// Set injects a fault for the given path pattern.
func (fr *FaultRegistry) Set(pattern string, fault FaultConfig) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fault.Method = strings.ToUpper(fault.Method)
	fr.faults[pattern] = fault
}

// Remove removes the fault for the given pattern.
func (fr *FaultRegistry) Remove(pattern string) bool {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	_, existed := fr.faults[pattern]
	delete(fr.faults, pattern)
	return existed
}

// Check returns the fault matching method and path, or nil. Exact patterns
// win over prefix patterns, and longer prefixes win over shorter ones. A
// fault with a Times budget is consumed by each match and removed when spent.
func (fr *FaultRegistry) Check(method, path string) *FaultConfig {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	key, ok := fr.match(method, path)
	if !ok {
		return nil
	}
	f := fr.faults[key]
	if f.Times > 0 {
		if f.Times == 1 {
			delete(fr.faults, key)
		} else {
			remaining := f
			remaining.Times--
			fr.faults[key] = remaining
		}
	}
	return &f
}

func (fr *FaultRegistry) match(method, path string) (string, bool) {
	applies := func(f FaultConfig) bool {
		return f.Method == "" || f.Method == method
	}
	if f, ok := fr.faults[path]; ok && applies(f) {
		return path, true
	}

	prefixes := make([]string, 0, len(fr.faults))
	for k := range fr.faults {
		if strings.HasSuffix(k, "*") {
			prefixes = append(prefixes, k)
		}
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	for _, k := range prefixes {
		if strings.HasPrefix(path, strings.TrimSuffix(k, "*")) && applies(fr.faults[k]) {
			return k, true
		}
	}
	return "", false
}

// All returns all registered faults.
func (fr *FaultRegistry) All() map[string]FaultConfig {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	out := make(map[string]FaultConfig, len(fr.faults))
	for k, v := range fr.faults {
		out[k] = v
	}
	return out
}

// Reset clears all faults.
func (fr *FaultRegistry) Reset() {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.faults = make(map[string]FaultConfig)
}

// Middleware provides the common middleware of a twin.
type Middleware struct {
	cfg    *Config
	logger *zap.Logger
	ReqLog *RequestLog
	Faults *FaultRegistry
}

// NewMiddleware creates a new Middleware instance. A nil logger disables
// logging.
func NewMiddleware(cfg *Config, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		cfg:    cfg,
		logger: logger,
		ReqLog: NewRequestLog(1000),
		Faults: NewFaultRegistry(),
	}
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	faulted    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

// RequestLog middleware records every request into the ring buffer.
func (m *Middleware) RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		entry := RequestLogEntry{
			Method:     r.Method,
			Path:       r.URL.Path,
			Query:      r.URL.RawQuery,
			StatusCode: rec.statusCode,
			RequestID:  r.Header.Get("X-Request-ID"),
			Faulted:    rec.faulted,
		}
		if entry.RequestID == "" {
			entry.RequestID = chimw.GetReqID(r.Context())
		}
		if m.cfg.Verbose {
			entry.Headers = make(map[string]string)
			for k := range r.Header {
				if k == "Authorization" {
					continue
				}
				entry.Headers[k] = r.Header.Get(k)
			}
		}
		m.ReqLog.Add(entry)

		m.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.statusCode),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// Recover turns handler panics into a 500 Connect error.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				m.logger.Error("handler panic",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rv),
				)
				Error(w, http.StatusInternalServerError, "server_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// FaultInjection applies any registered fault matching the request. Mount it
// inside the API route group so admin endpoints are never affected.
func (m *Middleware) FaultInjection(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fault := m.Faults.Check(r.Method, r.URL.Path)
		if fault == nil || fault.StatusCode == 0 {
			next.ServeHTTP(w, r)
			return
		}
		if rec, ok := w.(*statusRecorder); ok {
			rec.faulted = true
		}
		m.logger.Debug("injecting fault",
			zap.String("path", r.URL.Path),
			zap.Int("status", fault.StatusCode),
		)
		if fault.Body != "" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fault.StatusCode)
			fmt.Fprint(w, fault.Body)
			return
		}
		msg := fault.Message
		if msg == "" {
			msg = "injected fault"
		}
		code := fault.Code
		if code == "" {
			code = fmt.Sprint(fault.StatusCode)
		}
		Error(w, fault.StatusCode, code, msg)
	})
}
