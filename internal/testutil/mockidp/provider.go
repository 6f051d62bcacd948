// Package mockidp provides a mock identity provider that issues RS256 bearer
// tokens and serves the matching JSON Web Key Set, for tests and local runs.
package mockidp

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"maps"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/google/uuid"
)

// DefaultSubject is the sub claim of tokens minted without an explicit subject.
const DefaultSubject = "auth0|barista"

// Provider signs tokens for a single issuer and audience.
type Provider struct {
	Issuer   string
	Audience string

	key    *rsa.PrivateKey
	keyID  string
	signer jose.Signer
	now    func() time.Time
}

// NewProvider creates a Provider with a fresh 2048-bit RSA key.
func NewProvider(issuer, audience string) (*Provider, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, fmt.Errorf("failed to generate signing key: %w", err)
	}

	keyID := uuid.NewString()
	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.RS256, Key: jose.JSONWebKey{Key: key, KeyID: keyID}},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}

	return &Provider{
		Issuer:   issuer,
		Audience: audience,
		key:      key,
		keyID:    keyID,
		signer:   signer,
		now:      time.Now,
	}, nil
}

// KeyID returns the kid placed in every token header.
func (p *Provider) KeyID() string {
	return p.keyID
}

// JWKS returns the public key set verifying this provider's tokens.
func (p *Provider) JWKS() jose.JSONWebKeySet {
	return jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &p.key.PublicKey,
		KeyID:     p.keyID,
		Algorithm: string(jose.RS256),
		Use:       "sig",
	}}}
}

// KeySet returns an in-process key set for wiring a verifier without HTTP.
func (p *Provider) KeySet() oidc.KeySet {
	return &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&p.key.PublicKey}}
}

// Claims returns the default claim set for a token valid for one hour.
// Callers may edit the map before passing it to Sign, e.g. to drop
// "permissions" or move "exp" into the past.
func (p *Provider) Claims(permissions ...string) map[string]any {
	now := p.now()
	if permissions == nil {
		permissions = []string{}
	}
	return map[string]any{
		"iss":         p.Issuer,
		"sub":         DefaultSubject,
		"aud":         []string{p.Audience},
		"iat":         jwt.NewNumericDate(now),
		"exp":         jwt.NewNumericDate(now.Add(time.Hour)),
		"permissions": permissions,
	}
}

// Sign serializes claims into a compact RS256 JWT.
func (p *Provider) Sign(claims map[string]any) (string, error) {
	token, err := jwt.Signed(p.signer).Claims(maps.Clone(claims)).Serialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Token mints a valid token carrying the given permissions.
func (p *Provider) Token(permissions ...string) (string, error) {
	return p.Sign(p.Claims(permissions...))
}

// MustToken is like Token but panics on error. Intended for tests.
func (p *Provider) MustToken(permissions ...string) string {
	token, err := p.Token(permissions...)
	if err != nil {
		panic(err)
	}
	return token
}
