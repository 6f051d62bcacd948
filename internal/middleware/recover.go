package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/coffeeshop/menu-api/internal/httpapi"
)

// Recover turns a panicking handler into a 500 error envelope.
// http.ErrAbortHandler is re-raised so net/http can abort the connection.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				Logger(r.Context(), logger).Error("panic serving http request (recovered)",
					"panic", rec,
					"method", r.Method,
					"url", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				// Upgraded connections cannot carry a response.
				if r.Header.Get("Connection") != "Upgrade" {
					httpapi.InternalServerError(w)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
