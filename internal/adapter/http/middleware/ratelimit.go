package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/iho/creditbook/internal/infrastructure/metrics"
)

// RateLimit limits each client IP to perMinute requests. Rejections are
// answered with 429 and counted when m is non-nil.
func RateLimit(perMinute int, m *metrics.Metrics) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if m != nil {
				m.RateLimitHits.WithLabelValues(routePattern(r)).Inc()
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded"}`))
		}),
	)
}
