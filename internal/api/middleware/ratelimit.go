package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"honeypot-lab/internal/config"
	"honeypot-lab/internal/observability/metrics"
)

// RateLimitedBody is returned once a client exhausts its window
const RateLimitedBody = `{"error":"rate limit exceeded"}`

// RateLimitStore counts requests per client and window
type RateLimitStore interface {
	CheckRateLimit(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, time.Time, error)
}

// RateLimiter returns middleware that implements rate limiting
func RateLimiter(store RateLimitStore, cfg config.RateLimitConfig, m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip rate limiting for OPTIONS requests (CORS preflight)
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// Check rate limit
			allowed, remaining, resetTime, err := store.CheckRateLimit(
				r.Context(),
				clientID(r),
				int64(cfg.RequestsPerMinute),
				time.Minute,
			)
			if err != nil {
				// fail open: a limiter outage must not silence the honeypot
				next.ServeHTTP(w, r)
				return
			}

			// Set rate limit headers
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				if m != nil {
					m.RateLimited.Inc()
				}
				w.Header().Set("Retry-After", strconv.FormatInt(int64(time.Until(resetTime).Seconds()), 10))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(RateLimitedBody))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientID identifies the caller by IP. RealIP runs earlier in the chain and
// rewrites RemoteAddr from forwarding headers; direct clients arrive as
// host:port, and the port changes with every connection.
func clientID(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
