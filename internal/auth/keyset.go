package auth

import (
	"context"
	"crypto"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/go-jose/go-jose/v4"
)

// ErrNoKeySource is returned by NewKeySet when neither a URL nor a file is set.
var ErrNoKeySource = errors.New("auth: no JWKS URL or file configured")

// KeySetOptions selects where verification keys come from.
type KeySetOptions struct {
	// JWKSFile is a local JSON Web Key Set. It takes precedence over JWKSURL.
	JWKSFile string
	// JWKSURL is fetched lazily and refetched when a token names an unknown kid.
	JWKSURL string
	// Client is used for remote fetches. Defaults to http.DefaultClient.
	Client *http.Client
}

// NewKeySet builds the key provider used by the Verifier.
// ctx scopes the HTTP client of a remote key set; cancelling it does not
// stop in-flight fetches.
func NewKeySet(ctx context.Context, opts KeySetOptions) (oidc.KeySet, error) {
	switch {
	case opts.JWKSFile != "":
		data, err := os.ReadFile(opts.JWKSFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read JWKS file: %w", err)
		}
		return StaticKeySet(data)
	case opts.JWKSURL != "":
		if opts.Client != nil {
			ctx = oidc.ClientContext(ctx, opts.Client)
		}
		return oidc.NewRemoteKeySet(ctx, opts.JWKSURL), nil
	default:
		return nil, ErrNoKeySource
	}
}

// StaticKeySet parses a JSON Web Key Set document into a fixed key set.
// Private keys in the document are reduced to their public half.
func StaticKeySet(jwks []byte) (*oidc.StaticKeySet, error) {
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(jwks, &set); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	keys := make([]crypto.PublicKey, 0, len(set.Keys))
	for _, k := range set.Keys {
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		pub := k.Public()
		if !pub.Valid() {
			continue
		}
		keys = append(keys, pub.Key)
	}
	if len(keys) == 0 {
		return nil, errors.New("auth: JWKS contains no signing keys")
	}

	return &oidc.StaticKeySet{PublicKeys: keys}, nil
}
