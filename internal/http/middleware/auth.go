package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/davidbz/chatrelay/internal/config"
	"github.com/davidbz/chatrelay/internal/domain"
	"github.com/davidbz/chatrelay/internal/httputil"
)

const protectedPrefix = "/v1/"

// Auth rejects /v1/ requests that do not carry the configured bearer key.
// With no key configured every request passes.
func Auth(cfg *config.AuthConfig) Middleware {
	if cfg == nil || cfg.APIKey == "" {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	expected := []byte(cfg.APIKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, protectedPrefix) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok || subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
				httputil.WriteError(r.Context(), w, domain.NewAuthenticationError("Invalid API key"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
