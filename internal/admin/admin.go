// Package admin provides the operational endpoints of the menu API:
// health and readiness probes, runtime log level changes and metrics.
package admin

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Storage is the subset of the store the probes need.
type Storage interface {
	Ping(ctx context.Context) error
}

// Handler provides admin endpoints
type Handler struct {
	storage  Storage
	logger   *slog.Logger
	logLevel *slog.LevelVar
	gatherer prometheus.Gatherer
}

// NewHandler creates an admin handler.
// A nil logLevel gets a private LevelVar; a nil gatherer serves the default registry.
func NewHandler(storage Storage, logLevel *slog.LevelVar, gatherer prometheus.Gatherer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	return &Handler{
		storage:  storage,
		logLevel: logLevel,
		gatherer: gatherer,
		logger:   logger,
	}
}
