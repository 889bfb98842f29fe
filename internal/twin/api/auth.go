package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/mypromo/connect-sdk-test/internal/twin/store"
	"github.com/mypromo/connect-sdk-test/pkg/twincore"
)

type ctxKey struct{}

// Access tokens are HS256 JWTs stamped with the simulated clock, so the
// same run always yields the same tokens.
var signingKey = []byte("connect-twin-signing-key")

const tokenTTL = time.Hour

// accessClaims mirror the claims of a Passport client credentials token.
type accessClaims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

func (h *Handler) signToken(clientID, jti string) (string, error) {
	now := h.store.Clock.Now()
	claims := accessClaims{
		Scopes: []string{},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   clientID,
			Audience:  jwt.ClaimStrings{clientID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(signingKey)
}

// parseToken verifies raw and returns its jti.
func (h *Handler) parseToken(raw string) (string, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(h.store.Clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", errors.New("token has no jti")
	}
	return claims.ID, nil
}

// clientFrom returns the client authenticated for r.
func clientFrom(r *http.Request) store.Client {
	c, _ := r.Context().Value(ctxKey{}).(store.Client)
	return c
}

// oauthError writes an RFC 6749 token endpoint error.
func oauthError(w http.ResponseWriter, status int, code, description string) {
	twincore.JSON(w, status, map[string]string{
		"error":             code,
		"error_description": description,
	})
}

// IssueToken handles POST /oauth/token with the client_credentials grant.
// Credentials are accepted as HTTP basic auth or form fields.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		oauthError(w, http.StatusBadRequest, "invalid_request", "malformed form body")
		return
	}
	if gt := r.PostForm.Get("grant_type"); gt != "client_credentials" {
		oauthError(w, http.StatusBadRequest, "unsupported_grant_type", "grant_type must be client_credentials")
		return
	}

	id, secret, ok := r.BasicAuth()
	if !ok {
		id, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}
	client, ok := h.store.Authenticate(id, secret)
	if !ok {
		h.logger.Debug("token rejected", zap.String("client_id", id))
		oauthError(w, http.StatusUnauthorized, "invalid_client", "Client authentication failed.")
		return
	}

	h.mu.Lock()
	h.issued++
	jti := store.NewTokenID(client.ID, h.issued)
	h.tokens[jti] = client
	h.mu.Unlock()

	token, err := h.signToken(client.ID, jti)
	if err != nil {
		h.logger.Error("signing token", zap.Error(err))
		oauthError(w, http.StatusInternalServerError, "server_error", "could not issue token")
		return
	}
	twincore.JSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(tokenTTL.Seconds()),
	})
}

// authenticate resolves the bearer token to a client.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if auth == "" || token == auth || token == "" {
			twincore.Error(w, http.StatusUnauthorized, "unauthenticated", "Unauthenticated.")
			return
		}

		jti, err := h.parseToken(token)
		if err != nil {
			h.logger.Debug("token rejected", zap.Error(err))
			twincore.Error(w, http.StatusUnauthorized, "unauthenticated", "Unauthenticated.")
			return
		}
		h.mu.RLock()
		client, ok := h.tokens[jti]
		h.mu.RUnlock()
		if !ok {
			twincore.Error(w, http.StatusUnauthorized, "unauthenticated", "Unauthenticated.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, client)))
	})
}

// requireRole rejects clients of any other role with 403.
func (h *Handler) requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if clientFrom(r).Role != role {
				twincore.Error(w, http.StatusForbidden, "forbidden", "This action is only available to "+role+" clients.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Status handles GET /v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	c := clientFrom(r)
	twincore.JSON(w, http.StatusOK, map[string]any{
		"message":     "OK",
		"client_id":   c.ID,
		"client_type": c.Role,
		"time":        h.store.Now(),
	})
}
