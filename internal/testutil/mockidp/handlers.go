package mockidp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// tokenRequest is the body accepted by the token endpoint.
type tokenRequest struct {
	Subject     string   `json:"sub"`
	Permissions []string `json:"permissions"`
	ExpiresIn   int      `json:"expires_in"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Handler returns the provider's HTTP API:
//
//	GET  /.well-known/jwks.json  public key set
//	POST /oauth/token            mint a token for the requested permissions
//	GET  /health                 liveness
func (p *Provider) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/.well-known/jwks.json", p.handleJWKS)
	r.Post("/oauth/token", p.handleToken)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return r
}

func (p *Provider) handleJWKS(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, p.JWKS())
}

func (p *Provider) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	expiresIn := req.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = int(time.Hour.Seconds())
	}

	claims := p.Claims(req.Permissions...)
	if req.Subject != "" {
		claims["sub"] = req.Subject
	}
	claims["exp"] = p.now().Add(time.Duration(expiresIn) * time.Second).Unix()

	token, err := p.Sign(claims)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "server_error"})
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresIn,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Response write errors are unrecoverable
	json.NewEncoder(w).Encode(v)
}
