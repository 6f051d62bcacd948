package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coffeeshop/menu-api/internal/httpapi"
	"github.com/coffeeshop/menu-api/internal/metrics"
	"github.com/coffeeshop/menu-api/internal/middleware"
)

// RequirePermission returns Chi-compatible middleware that only lets requests
// through whose bearer token carries perm. The verified claims are stored in
// the request context, see ClaimsFromContext.
func RequirePermission(v *Verifier, logger *slog.Logger, perm Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := v.Authorize(r, perm)
			if err != nil {
				WriteError(w, r, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// WriteError answers with the error envelope matching an Authorize failure.
func WriteError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var authErr *Error
	if !errors.As(err, &authErr) {
		authErr = classify(err)
	}

	metrics.RecordAuthFailure(authErr.Code)
	middleware.Logger(r.Context(), logger).Info("request rejected",
		"method", r.Method,
		"url", r.URL.Path,
		"status", authErr.Status,
		"reason", authErr.Code,
		"error", authErr.Err,
	)

	if authErr.Status == http.StatusForbidden {
		httpapi.Forbidden(w)
		return
	}
	httpapi.Unauthorized(w)
}

// BearerToken gets the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingHeader
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMalformedHeader
	}
	return parts[1], nil
}
