// Package twincore provides the base HTTP server, middleware chain and
// response helpers for the in-repo fake Connect API.
package twincore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Config holds the runtime configuration of a twin.
type Config struct {
	Port    int
	Verbose bool
	Name    string // twin name for logging
}

// Twin is the base server. It wraps a chi router with the common middleware
// and provides lifecycle management.
type Twin struct {
	Config *Config
	Router *chi.Mux
	Logger *zap.Logger
	mw     *Middleware
	mu     sync.RWMutex
}

// New creates a Twin. A nil logger disables logging.
func New(cfg *Config, logger *zap.Logger) *Twin {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("twin", cfg.Name))

	r := chi.NewRouter()
	mw := NewMiddleware(cfg, logger)

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Recover)
	r.Use(mw.RequestLog)

	return &Twin{
		Config: cfg,
		Router: r,
		Logger: logger,
		mw:     mw,
	}
}

// Middleware returns the middleware instance (request log, fault registry).
func (t *Twin) Middleware() *Middleware {
	return t.mw
}

// GetConfig returns the current runtime configuration as a map.
func (t *Twin) GetConfig() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return map[string]any{
		"name":    t.Config.Name,
		"port":    t.Config.Port,
		"verbose": t.Config.Verbose,
	}
}

// SetVerbose toggles header capture and per-request debug logging.
func (t *Twin) SetVerbose(v bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Config.Verbose = v
}

// Serve listens on the configured port and blocks until ctx is cancelled,
// then shuts the server down gracefully.
func (t *Twin) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", t.Config.Port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", t.Config.Port, err)
	}
	return t.ServeListener(ctx, ln)
}

// ServeListener serves on an existing listener until ctx is cancelled.
func (t *Twin) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      t.Router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		t.Logger.Info("starting twin", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving twin: %w", err)
	case <-ctx.Done():
	}

	t.Logger.Info("shutting down twin")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// ServeHTTP implements http.Handler so Twin can be used directly in tests.
func (t *Twin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.Router.ServeHTTP(w, r)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// ErrorBody is the error payload shape the Connect API returns.
type ErrorBody struct {
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Errors  map[string][]string `json:"errors,omitempty"`
}

// Error writes a Connect error response.
func Error(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Message: message, Code: code})
}

// ValidationError writes a 422 response carrying field-level details.
func ValidationError(w http.ResponseWriter, message string, fields map[string][]string) {
	JSON(w, http.StatusUnprocessableEntity, ErrorBody{
		Message: message,
		Code:    "validation_failed",
		Errors:  fields,
	})
}
