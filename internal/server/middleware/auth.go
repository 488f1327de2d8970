// Package middleware provides the HTTP middleware stack: bearer-token
// extraction, per-caller rate limiting, request logging, and panic
// recovery.
package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/vidlens/vidlens/internal/apierr"
)

type contextKey string

const accessTokenKey contextKey = "access_token"

// anonymousKey is the rate-limit identity used when no credential is
// available on the request.
const anonymousKey = "anonymous"

// RequireAuth rejects requests without a bearer token and stashes the
// token in the request context for handlers.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			apierr.Unauthorized(w)
			return
		}
		ctx := context.WithValue(r.Context(), accessTokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccessToken returns the bearer token stored by RequireAuth, or "".
func AccessToken(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey).(string)
	return token
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CallerKey derives the rate-limit identity for a request: a digest of the
// bearer token when present, else a constant anonymous key. The token is
// hashed so it never appears in limiter state or logs.
func CallerKey(r *http.Request) string {
	token := bearerToken(r)
	if token == "" {
		if t := AccessToken(r.Context()); t != "" {
			token = t
		}
	}
	if token == "" {
		return anonymousKey
	}
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
