package admin

import (
	"encoding/json"
	"net/http"

	"github.com/coffeeshop/menu-api/internal/httpapi"
	"github.com/coffeeshop/menu-api/internal/logging"
)

// SetLogLevelRequest is the body of POST /loglevel.
type SetLogLevelRequest struct {
	Level string `json:"level"`
}

// HandleGetLogLevel reports the current log level.
// GET /loglevel
func (h *Handler) HandleGetLogLevel(w http.ResponseWriter, _ *http.Request) {
	httpapi.Write(w, http.StatusOK, map[string]string{
		"level": h.logLevel.Level().String(),
	})
}

// HandleSetLogLevel changes the log level at runtime.
// POST /loglevel
// Body: {"level": "debug"}
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req SetLogLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	level, err := logging.ParseLevel(req.Level)
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid level (must be: debug, info, warn, error)")
		return
	}

	old := h.logLevel.Level()
	h.logLevel.Set(level)
	h.logger.Info("log level changed", "old_level", old.String(), "new_level", level.String())

	httpapi.Write(w, http.StatusOK, map[string]string{
		"level": level.String(),
	})
}
