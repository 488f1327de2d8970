package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidlens/vidlens/internal/apierr"
)

func TestRequireAuthRejectsMissingBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz"},
		{"bare token", "tok-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := RequireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)

			var body apierr.HTTPErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, apierr.CodeUnauthorized, body.Error.Code)
		})
	}
}

func TestRequireAuthStoresToken(t *testing.T) {
	var got string
	h := RequireAuth(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = AccessToken(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok-123", got)
}

func TestRequireAuthSchemeIsCaseInsensitive(t *testing.T) {
	h := RequireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer tok-123")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCallerKey(t *testing.T) {
	withToken := httptest.NewRequest(http.MethodGet, "/", nil)
	withToken.Header.Set("Authorization", "Bearer tok-123")

	sameToken := httptest.NewRequest(http.MethodGet, "/", nil)
	sameToken.Header.Set("Authorization", "Bearer tok-123")

	otherToken := httptest.NewRequest(http.MethodGet, "/", nil)
	otherToken.Header.Set("Authorization", "Bearer tok-456")

	anon := httptest.NewRequest(http.MethodGet, "/", nil)

	key := CallerKey(withToken)
	assert.Equal(t, key, CallerKey(sameToken))
	assert.NotEqual(t, key, CallerKey(otherToken))
	assert.Equal(t, "anonymous", CallerKey(anon))

	// Keys never leak the raw token.
	assert.NotContains(t, key, "tok-123")
	assert.Len(t, key, 32)
}
