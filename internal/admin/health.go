package admin

import (
	"context"
	"net/http"
	"time"

	"github.com/coffeeshop/menu-api/internal/httpapi"
)

// readyTimeout bounds the database ping of a readiness probe.
const readyTimeout = 5 * time.Second

// HandleHealth returns basic health status
// GET /health
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	httpapi.Write(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// HandleReady checks database connectivity
// GET /ready
// Returns 200 if database is accessible, 503 otherwise
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		httpapi.Write(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": "not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	if err := h.storage.Ping(ctx); err != nil {
		h.logger.Warn("readiness check failed", "error", err)
		httpapi.Write(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "not_ready",
			"database": "unavailable",
		})
		return
	}

	httpapi.Write(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": "connected",
	})
}
