// Package api implements the drinks menu HTTP API.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/coffeeshop/menu-api/internal/httpapi"
	"github.com/coffeeshop/menu-api/internal/middleware"
	"github.com/coffeeshop/menu-api/internal/storage"
)

// Store defines the drink persistence operations needed by the API.
// This interface enables testing with mock implementations.
type Store interface {
	ListDrinks(ctx context.Context) ([]*storage.Drink, error)
	GetDrink(ctx context.Context, id int64) (*storage.Drink, error)
	CreateDrink(ctx context.Context, d *storage.Drink) (*storage.Drink, error)
	UpdateDrink(ctx context.Context, d *storage.Drink) (*storage.Drink, error)
	DeleteDrink(ctx context.Context, id int64) error
}

// Handler serves the drink endpoints.
type Handler struct {
	store             Store
	logger            *slog.Logger
	emptyListNotFound bool
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithEmptyListNotFound controls whether listing an empty menu answers 404
// (true, the default) or 200 with an empty drinks array.
func WithEmptyListNotFound(enabled bool) HandlerOption {
	return func(h *Handler) {
		h.emptyListNotFound = enabled
	}
}

// NewHandler creates a new drinks handler.
// If logger is nil, slog.Default() will be used.
func NewHandler(store Store, logger *slog.Logger, opts ...HandlerOption) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		store:             store,
		logger:            logger,
		emptyListNotFound: true,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// drinkRequest is the body accepted by POST /drinks and PATCH /drinks/{id}.
type drinkRequest struct {
	Title  *string        `json:"title" validate:"omitempty,max=80"`
	Recipe storage.Recipe `json:"recipe" validate:"omitempty,dive"`
}

type drinksResponse struct {
	Success bool `json:"success"`
	Drinks  any  `json:"drinks"`
}

type deleteResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

// drinkID parses the {drinkID} URL parameter. The route pattern only admits
// digits, so an error means the value overflows int64.
func drinkID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "drinkID"), 10, 64)
}

// readDrinkRequest decodes the body and answers the request itself on failure.
func (h *Handler) readDrinkRequest(w http.ResponseWriter, r *http.Request) (*drinkRequest, bool) {
	var req drinkRequest
	if err := httpapi.Read(r, &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpapi.WriteError(w, http.StatusRequestEntityTooLarge, httpapi.MsgTooLarge)
			return nil, false
		}
		middleware.Logger(r.Context(), h.logger).Info("invalid drink body", "error", err)
		httpapi.Unprocessable(w)
		return nil, false
	}
	return &req, true
}

// storeError maps a persistence failure to a response. Not-found becomes 404,
// a row that can no longer be rendered 500, anything else 422.
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log := middleware.Logger(r.Context(), h.logger)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpapi.NotFound(w)
	case errors.Is(err, storage.ErrMalformedRecipe):
		log.Error("stored drink cannot be rendered", "op", op, "error", err)
		httpapi.InternalServerError(w)
	default:
		log.Warn("drink operation failed", "op", op, "error", err)
		httpapi.Unprocessable(w)
	}
}
