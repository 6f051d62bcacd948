package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/cors"
)

var (
	corsAllowedHeaders = []string{"Content-Type", "Authorization"}
	corsAllowedMethods = []string{
		http.MethodGet, http.MethodPatch, http.MethodPost, http.MethodDelete, http.MethodOptions,
	}
)

// CORS answers preflight requests for the given origins and additionally sets
// the Access-Control-Allow-Headers and Access-Control-Allow-Methods headers on
// every response, as browser clients of the menu API expect them there too.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	preflight := cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: corsAllowedMethods,
		AllowedHeaders: corsAllowedHeaders,
		MaxAge:         300,
	})

	allowHeaders := strings.Join(corsAllowedHeaders, ",")
	allowMethods := strings.Join(corsAllowedMethods, ",")

	return func(next http.Handler) http.Handler {
		withHeaders := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
			w.Header().Set("Access-Control-Allow-Methods", allowMethods)
			next.ServeHTTP(w, r)
		})
		return preflight(withHeaders)
	}
}
