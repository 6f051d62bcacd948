package middleware

import (
	"net/http"

	"github.com/coffeeshop/menu-api/internal/httpapi"
)

// MaxBodySize returns middleware that limits request body size.
// Requests declaring a larger Content-Length are rejected with 413 up front.
// Chunked bodies are cut off at maxBytes, which makes the handler's decode fail.
// A non-positive maxBytes disables the limit.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httpapi.WriteError(w, http.StatusRequestEntityTooLarge, httpapi.MsgTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
