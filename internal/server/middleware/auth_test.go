package middleware

import (
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func authedMux(cfg AuthConfig) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Auth(cfg)(next)
}

func do(h http.Handler, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	if header != "" {
		req.Header.Set(header, value)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuth_DisabledWhenUnconfigured(t *testing.T) {
	h := authedMux(AuthConfig{})
	require.Equal(t, http.StatusOK, do(h, "", "").Code)
}

func TestAuth_PlaintextKey(t *testing.T) {
	h := authedMux(AuthConfig{Key: "s3cret"})

	require.Equal(t, http.StatusUnauthorized, do(h, "", "").Code)
	require.Equal(t, http.StatusUnauthorized, do(h, "X-API-Key", "wrong").Code)
	require.Equal(t, http.StatusOK, do(h, "X-API-Key", "s3cret").Code)
	require.Equal(t, http.StatusOK, do(h, "Authorization", "Bearer s3cret").Code)
}

func TestAuth_HashedKey(t *testing.T) {
	salt := []byte("0123456789abcdef")
	digest := pbkdf2.Key([]byte("s3cret"), salt, pbkdf2Iterations, 32, sha256.New)
	keyHash := base64.StdEncoding.EncodeToString(salt) + ":" + base64.StdEncoding.EncodeToString(digest)

	h := authedMux(AuthConfig{KeyHash: keyHash})

	require.Equal(t, http.StatusOK, do(h, "X-API-Key", "s3cret").Code)
	require.Equal(t, http.StatusUnauthorized, do(h, "X-API-Key", "wrong").Code)
	require.Equal(t, http.StatusUnauthorized, do(h, "", "").Code)
}

func TestAuth_MalformedHashFailsClosed(t *testing.T) {
	h := authedMux(AuthConfig{KeyHash: "not-a-valid-hash"})
	require.Equal(t, http.StatusUnauthorized, do(h, "X-API-Key", "anything").Code)
}
