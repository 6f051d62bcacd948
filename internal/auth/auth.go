// Package auth verifies bearer tokens issued by the identity provider and
// checks the permissions they carry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// Permission is a scope string carried in a token's "permissions" claim.
type Permission string

const (
	// PermGetDrinksDetail allows reading ingredient names.
	PermGetDrinksDetail Permission = "get:drinks-detail"
	// PermPostDrinks allows creating drinks.
	PermPostDrinks Permission = "post:drinks"
	// PermPatchDrinks allows updating drinks.
	PermPatchDrinks Permission = "patch:drinks"
	// PermDeleteDrinks allows deleting drinks.
	PermDeleteDrinks Permission = "delete:drinks"
)

// Errors for authentication and authorization failures.
var (
	// ErrMissingHeader indicates no Authorization header was sent.
	ErrMissingHeader = errors.New("auth: authorization header is expected")
	// ErrMalformedHeader indicates the header is not "Bearer <token>".
	ErrMalformedHeader = errors.New("auth: authorization header must be a bearer token")
	// ErrInvalidToken indicates a bad signature, issuer, audience or format.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired indicates the token's exp is in the past.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrMissingPermissions indicates a verified token without a permissions claim.
	ErrMissingPermissions = errors.New("auth: permissions not included in token")
	// ErrForbidden indicates the token lacks the required permission.
	ErrForbidden = errors.New("auth: permission not found")
)

// Claims holds the verified contents of a bearer token.
type Claims struct {
	Subject     string
	Issuer      string
	Audience    []string
	Expiry      time.Time
	Permissions []string
}

// HasPermission reports whether perm is among the token's permissions.
func (c *Claims) HasPermission(perm Permission) bool {
	return slices.Contains(c.Permissions, string(perm))
}

// Error is an authorization failure carrying the HTTP status to answer with.
// Code is a stable machine-readable reason, also used as a metric label.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d): %v", e.Code, e.Status, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Config configures a Verifier.
type Config struct {
	// Issuer must match the token's iss claim exactly.
	Issuer string
	// Audience must be contained in the token's aud claim.
	Audience string
	// KeySet provides the RS256 public keys.
	KeySet oidc.KeySet
	// Now overrides the clock used for expiry checks.
	Now func() time.Time
}

// Verifier validates RS256 bearer tokens and checks permissions.
type Verifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates a new Verifier.
func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		verifier: oidc.NewVerifier(cfg.Issuer, cfg.KeySet, &oidc.Config{
			ClientID:             cfg.Audience,
			SupportedSigningAlgs: []string{oidc.RS256},
			Now:                  cfg.Now,
		}),
	}
}

// Verify checks the token's signature, issuer, audience and expiry and
// returns its claims. A token without a permissions claim is rejected.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var extra struct {
		Permissions *[]string `json:"permissions"`
	}
	if err := token.Claims(&extra); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if extra.Permissions == nil {
		return nil, ErrMissingPermissions
	}

	return &Claims{
		Subject:     token.Subject,
		Issuer:      token.Issuer,
		Audience:    token.Audience,
		Expiry:      token.Expiry,
		Permissions: *extra.Permissions,
	}, nil
}

// CheckPermission returns ErrForbidden unless claims include perm.
func CheckPermission(claims *Claims, perm Permission) error {
	if claims == nil || !claims.HasPermission(perm) {
		return fmt.Errorf("%w: %s", ErrForbidden, perm)
	}
	return nil
}

// Authorize runs the full pipeline for a request: header extraction, token
// verification and the permission check. Failures are returned as *Error
// with status 401 for anything wrong with the token and 403 for a missing
// permission.
func (v *Verifier) Authorize(r *http.Request, perm Permission) (*Claims, error) {
	raw, err := BearerToken(r)
	if err != nil {
		return nil, classify(err)
	}

	claims, err := v.Verify(r.Context(), raw)
	if err != nil {
		return nil, classify(err)
	}

	if err := CheckPermission(claims, perm); err != nil {
		return nil, classify(err)
	}

	return claims, nil
}

func classify(err error) *Error {
	switch {
	case errors.Is(err, ErrMissingHeader):
		return &Error{Status: http.StatusUnauthorized, Code: "missing_header", Err: err}
	case errors.Is(err, ErrMalformedHeader):
		return &Error{Status: http.StatusUnauthorized, Code: "malformed_header", Err: err}
	case errors.Is(err, ErrTokenExpired):
		return &Error{Status: http.StatusUnauthorized, Code: "token_expired", Err: err}
	case errors.Is(err, ErrMissingPermissions):
		return &Error{Status: http.StatusUnauthorized, Code: "missing_permissions", Err: err}
	case errors.Is(err, ErrForbidden):
		return &Error{Status: http.StatusForbidden, Code: "permission_denied", Err: err}
	default:
		return &Error{Status: http.StatusUnauthorized, Code: "invalid_token", Err: err}
	}
}
