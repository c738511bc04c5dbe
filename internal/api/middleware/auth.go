package middleware

import (
	"crypto/subtle"
	"net/http"

	"honeypot-lab/internal/config"
	"honeypot-lab/internal/observability/metrics"
)

// UnauthorizedBody is returned for a missing or wrong API key
const UnauthorizedBody = `{"detail":"Invalid API Key"}`

// APIKeyAuth returns middleware that checks the shared-secret header. The request
// body is never read when the key is wrong.
func APIKeyAuth(cfg config.AuthConfig, m *metrics.Metrics) func(next http.Handler) http.Handler {
	header := cfg.Header
	if header == "" {
		header = "x-api-key"
	}
	secret := []byte(cfg.APIKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for OPTIONS requests (CORS preflight)
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			got := []byte(r.Header.Get(header))
			if len(secret) == 0 || subtle.ConstantTimeCompare(got, secret) != 1 {
				if m != nil {
					m.AuthFailures.Inc()
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(UnauthorizedBody))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
