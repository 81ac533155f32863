package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

// pbkdf2Iterations matches the iteration count used when generating hashed
// API keys.
const pbkdf2Iterations = 100_000

// AuthConfig selects how API requests are authenticated. Exactly one of Key
// and KeyHash should be set; when both are empty the middleware passes all
// requests through.
type AuthConfig struct {
	// Key is a plaintext API key compared in constant time.
	Key string

	// KeyHash is a PBKDF2-SHA256 digest in "salt:hash" form, both parts
	// base64 (standard encoding). It keeps the plaintext key out of config
	// files.
	KeyHash string
}

// Auth returns middleware that validates API requests using either a Bearer
// token in the Authorization header or a static key in the X-API-Key header.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	verify := buildVerifier(cfg)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verify == nil {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r)
			if token == "" {
				writeUnauthorized(w, "missing authentication token")
				return
			}
			if !verify(token) {
				writeUnauthorized(w, "invalid authentication token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// buildVerifier returns the token check for the configured credential, or nil
// when authentication is disabled.
func buildVerifier(cfg AuthConfig) func(string) bool {
	if cfg.KeyHash != "" {
		salt, want, err := parseKeyHash(cfg.KeyHash)
		if err != nil {
			// A malformed hash must not fail open.
			return func(string) bool { return false }
		}
		return func(token string) bool {
			got := pbkdf2.Key([]byte(token), salt, pbkdf2Iterations, len(want), sha256.New)
			return subtle.ConstantTimeCompare(got, want) == 1
		}
	}
	if cfg.Key != "" {
		want := []byte(cfg.Key)
		return func(token string) bool {
			return subtle.ConstantTimeCompare([]byte(token), want) == 1
		}
	}
	return nil
}

// parseKeyHash splits a "salt:hash" credential into its decoded parts.
func parseKeyHash(keyHash string) (salt, hash []byte, err error) {
	parts := strings.SplitN(keyHash, ":", 2)
	if len(parts) != 2 {
		return nil, nil, errMalformedKeyHash
	}
	salt, err = base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, err
	}
	hash, err = base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, nil, err
	}
	if len(salt) == 0 || len(hash) == 0 {
		return nil, nil, errMalformedKeyHash
	}
	return salt, hash, nil
}

type keyHashError string

func (e keyHashError) Error() string { return string(e) }

const errMalformedKeyHash = keyHashError(`api key hash must be "salt:hash" base64`)

// extractToken looks for a token in the Authorization header (Bearer scheme)
// or in the X-API-Key header.
func extractToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		parts := strings.SplitN(auth, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if key := r.Header.Get("X-API-Key"); key != "" {
		return strings.TrimSpace(key)
	}
	return ""
}

// writeUnauthorized sends a 401 response with a JSON error body.
func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `"}`))
}
