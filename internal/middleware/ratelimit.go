package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/coffeeshop/menu-api/internal/httpapi"
)

// RateLimit limits each client IP to requests per window. Rejected requests
// receive a 429 error envelope. A non-positive limit disables rate limiting.
func RateLimit(logger *slog.Logger, requests int, window time.Duration) func(http.Handler) http.Handler {
	if requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(
		requests,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			Logger(r.Context(), logger).Warn("rate limit exceeded",
				"remote_addr", r.RemoteAddr,
				"method", r.Method,
				"url", r.URL.Path,
			)
			httpapi.TooManyRequests(w)
		}),
	)
}
