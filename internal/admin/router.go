package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/coffeeshop/menu-api/internal/httpapi"
	"github.com/coffeeshop/menu-api/internal/metrics"
	"github.com/coffeeshop/menu-api/internal/middleware"
)

// NewRouter creates the ops router. It is meant for a listener that is not
// reachable from the public internet.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)

	r.NotFound(httpapi.NotFoundHandler)
	r.MethodNotAllowed(httpapi.MethodNotAllowedHandler)

	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	r.Get("/loglevel", h.HandleGetLogLevel)
	r.Post("/loglevel", h.HandleSetLogLevel)

	r.Method(http.MethodGet, "/metrics", metrics.Handler(h.gatherer))

	return r
}
