// Package main implements a standalone mock identity provider for local
// development and E2E testing. It serves a JWKS and mints RS256 tokens for
// any requested permissions.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"k8s.io/utils/env"

	"github.com/coffeeshop/menu-api/internal/testutil/mockidp"
)

// getPort returns the port from the PORT environment variable or the default.
func getPort() string {
	return env.GetString("PORT", "8081")
}

// getPortAddr formats the port into a server address.
func getPortAddr(port string) string {
	return ":" + port
}

// createProvider creates the token issuer. ISSUER defaults to the local URL
// so that tokens verify against AUTH_ISSUER=http://localhost:<port>/.
func createProvider(port string) (*mockidp.Provider, error) {
	issuer := env.GetString("ISSUER", "http://localhost:"+port+"/")
	audience := env.GetString("AUDIENCE", "coffeeshop")
	return mockidp.NewProvider(issuer, audience)
}

// writeJWKS stores the public key set at path, for use with AUTH_JWKS_FILE.
func writeJWKS(p *mockidp.Provider, path string) error {
	data, err := json.MarshalIndent(p.JWKS(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JWKS: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write JWKS: %w", err)
	}
	return nil
}

// createHTTPServer creates an http.Server with the given port and handler.
func createHTTPServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              getPortAddr(port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// setupShutdownHandler sets up graceful shutdown handling.
func setupShutdownHandler(httpServer *http.Server) <-chan bool {
	done := make(chan bool)
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Println("Shutting down mockidp server...")
		//nolint:errcheck
		httpServer.Close()
		close(done)
	}()
	return done
}

// runHealthCheck performs an HTTP health check against the local server.
// Returns 0 on success, 1 on failure. Used by container HEALTHCHECK.
func runHealthCheck() int {
	return doHealthCheck("http://localhost:" + getPort() + "/health")
}

// doHealthCheck performs the actual health check HTTP request.
func doHealthCheck(url string) int {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return 1
	}
	//nolint:errcheck // Response body close errors are unrecoverable in health check
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 1
	}
	return 0
}

func main() {
	// Handle health check subcommand for distroless container health checks
	if len(os.Args) > 1 && os.Args[1] == "health" {
		os.Exit(runHealthCheck())
	}

	port := getPort()
	provider, err := createProvider(port)
	if err != nil {
		log.Fatalf("failed to create provider: %v", err)
	}

	if path := env.GetString("JWKS_OUT", ""); path != "" {
		if err := writeJWKS(provider, path); err != nil {
			log.Fatal(err)
		}
		log.Printf("JWKS written to %s", path)
	}

	httpServer := createHTTPServer(port, provider.Handler())

	done := setupShutdownHandler(httpServer)

	log.Printf("mockidp listening on :%s (issuer %s, audience %s)", port, provider.Issuer, provider.Audience)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("HTTP server error: %v", err)
	}

	<-done
	log.Println("mockidp stopped")
}
