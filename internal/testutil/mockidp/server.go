package mockidp

import (
	"net/http/httptest"
)

// Server is a mock identity provider listening on a local port.
// Its issuer is the server URL with a trailing slash.
type Server struct {
	*httptest.Server
	*Provider
}

// NewServer starts a mock identity provider issuing tokens for audience.
func NewServer(audience string) (*Server, error) {
	srv := httptest.NewUnstartedServer(nil)

	p, err := NewProvider("http://"+srv.Listener.Addr().String()+"/", audience)
	if err != nil {
		srv.Close()
		return nil, err
	}

	srv.Config.Handler = p.Handler()
	srv.Start()
	return &Server{Server: srv, Provider: p}, nil
}

// JWKSURL returns the URL of the served key set.
func (s *Server) JWKSURL() string {
	return s.URL + "/.well-known/jwks.json"
}
