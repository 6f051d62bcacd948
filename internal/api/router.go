package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/coffeeshop/menu-api/internal/auth"
	"github.com/coffeeshop/menu-api/internal/httpapi"
	"github.com/coffeeshop/menu-api/internal/metrics"
	"github.com/coffeeshop/menu-api/internal/middleware"
)

// RouterConfig holds the cross-cutting settings of the public router.
type RouterConfig struct {
	Verifier *auth.Verifier
	Logger   *slog.Logger

	// AllowedOrigins for CORS. Empty allows every origin.
	AllowedOrigins []string
	// MaxBodyBytes caps request bodies. Zero disables the limit.
	MaxBodyBytes int64
	// RateLimitPerMinute is the per-IP request budget. Zero disables it.
	RateLimitPerMinute int
}

// NewRouter creates a Chi router with all drink endpoints. Callers may mount
// further routes (health checks) on the returned router.
func NewRouter(handler *Handler, cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Recover wraps metrics so that panics are still counted as 500s
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(logger))
	r.Use(metrics.Middleware)
	r.Use(middleware.MaxBodySize(cfg.MaxBodyBytes))
	r.Use(middleware.HTTPLogging(logger, middleware.DrinkBodyAllowlist))
	r.Use(middleware.CORS(origins))
	r.Use(middleware.RateLimit(logger, cfg.RateLimitPerMinute, time.Minute))

	r.NotFound(httpapi.NotFoundHandler)
	r.MethodNotAllowed(httpapi.MethodNotAllowedHandler)

	protected := func(perm auth.Permission) chi.Router {
		return r.With(auth.RequirePermission(cfg.Verifier, logger, perm))
	}

	r.Get("/drinks", handler.HandleListDrinks)
	protected(auth.PermGetDrinksDetail).Get("/drinks-detail", handler.HandleListDrinksDetail)
	protected(auth.PermPostDrinks).Post("/drinks", handler.HandleCreateDrink)
	protected(auth.PermPatchDrinks).Patch("/drinks/{drinkID:[0-9]+}", handler.HandleUpdateDrink)
	protected(auth.PermDeleteDrinks).Delete("/drinks/{drinkID:[0-9]+}", handler.HandleDeleteDrink)

	return r
}
