// Package connect is a client for the Connect e-commerce API. A Client holds
// the endpoint and transport; Connect exchanges role credentials for an
// authenticated Session, and the Session exposes one repository per API area.
package connect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/mypromo/connect-sdk-test/internal/apierr"
)

// DefaultTimeout bounds every HTTP call made by a Client.
const DefaultTimeout = 30 * time.Second

// Payload is a decoded JSON object returned by the API.
type Payload map[string]any

// Client talks to one Connect endpoint.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing endpoint url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("endpoint url %q must use http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Session is an authenticated handle for one client identity. It is safe to
// share after Connect returns.
type Session struct {
	client   *Client
	http     *http.Client
	clientID string
}

// Connect exchanges client credentials for a bearer token and verifies the
// API reports status OK for the new session.
func (c *Client) Connect(ctx context.Context, clientID, clientSecret string) (*Session, error) {
	verr := &apierr.ValidationError{Message: "missing client credentials"}
	if strings.TrimSpace(clientID) == "" {
		verr.Add("client_id", "required")
	}
	if strings.TrimSpace(clientSecret) == "" {
		verr.Add("client_secret", "required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	cc := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     c.resolve("/oauth/token"),
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	// The token source keeps its context for refreshes, so it must not be
	// tied to the caller's cancellation.
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, c.http)
	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, c.http))
	if err != nil {
		return nil, classifyTokenError(err)
	}

	hc := oauth2.NewClient(tokenCtx, oauth2.ReuseTokenSource(tok, cc.TokenSource(tokenCtx)))
	hc.Timeout = c.http.Timeout

	s := &Session{client: c, http: hc, clientID: clientID}
	status, err := s.Status(ctx)
	if err != nil {
		return nil, err
	}
	if msg, _ := status["message"].(string); msg != "OK" {
		return nil, &apierr.ResponseError{
			Status:  http.StatusOK,
			Message: fmt.Sprintf("unexpected api status %q", msg),
			Code:    "status_not_ok",
		}
	}
	c.logger.Info("connected", zap.String("client_id", clientID))
	return s, nil
}

// Status returns the API status as seen by this session.
func (s *Session) Status(ctx context.Context) (Payload, error) {
	return s.get(ctx, "/v1/status", nil)
}

// ClientID is the identity the session authenticated as.
func (s *Session) ClientID() string { return s.clientID }

func classifyTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		msg := re.ErrorDescription
		if msg == "" {
			msg = fmt.Sprintf("token request rejected with status %d", status)
		}
		code := re.ErrorCode
		if code == "" {
			code = "token_rejected"
		}
		return &apierr.ResponseError{Status: status, Message: msg, Code: code}
	}
	return &apierr.RequestError{Op: "POST /oauth/token", Err: err}
}

func (c *Client) resolve(path string) string {
	return c.baseURL.String() + path
}

func (s *Session) get(ctx context.Context, path string, q url.Values) (Payload, error) {
	return s.do(ctx, http.MethodGet, path, q, nil)
}

func (s *Session) post(ctx context.Context, path string, body any) (Payload, error) {
	return s.do(ctx, http.MethodPost, path, nil, body)
}

func (s *Session) patch(ctx context.Context, path string, body any) (Payload, error) {
	return s.do(ctx, http.MethodPatch, path, nil, body)
}

func (s *Session) delete(ctx context.Context, path string) (Payload, error) {
	return s.do(ctx, http.MethodDelete, path, nil, nil)
}

// do sends a JSON request and decodes a JSON object response.
func (s *Session) do(ctx context.Context, method, path string, q url.Values, body any) (Payload, error) {
	data, _, err := s.send(ctx, method, path, q, body, "application/json")
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Payload{}, nil
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, &apierr.RequestError{Op: method + " " + path, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return p, nil
}

// raw sends a request and returns the undecoded body and its content type.
func (s *Session) raw(ctx context.Context, method, path string, accept string) ([]byte, string, error) {
	return s.send(ctx, method, path, nil, nil, accept)
}

func (s *Session) send(ctx context.Context, method, path string, q url.Values, body any, accept string) ([]byte, string, error) {
	op := method + " " + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", &apierr.RequestError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reader = bytes.NewReader(data)
	}

	target := s.client.resolve(path)
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, "", &apierr.RequestError{Op: op, Err: err}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", accept)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, "", &apierr.RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &apierr.RequestError{Op: op, Err: fmt.Errorf("reading response: %w", err)}
	}

	s.client.logger.Debug("connect request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", decodeResponseError(resp.StatusCode, data)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

type errorBody struct {
	Message string              `json:"message"`
	Code    json.RawMessage     `json:"code"`
	Errors  map[string][]string `json:"errors"`
}

func decodeResponseError(status int, data []byte) error {
	var eb errorBody
	if err := json.Unmarshal(data, &eb); err != nil || eb.Message == "" {
		msg := strings.TrimSpace(string(data))
		if msg == "" || err != nil {
			msg = http.StatusText(status)
		}
		return &apierr.ResponseError{Status: status, Message: msg, Code: fmt.Sprint(status)}
	}
	code := strings.Trim(string(eb.Code), `"`)
	if code == "" || code == "null" {
		code = fmt.Sprint(status)
	}
	return &apierr.ResponseError{Status: status, Message: eb.Message, Code: code, Errors: eb.Errors}
}
