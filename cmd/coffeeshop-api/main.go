// Package main provides the entry point for the coffee-shop menu API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coffeeshop/menu-api/internal/admin"
	"github.com/coffeeshop/menu-api/internal/api"
	"github.com/coffeeshop/menu-api/internal/auth"
	"github.com/coffeeshop/menu-api/internal/config"
	"github.com/coffeeshop/menu-api/internal/logging"
	"github.com/coffeeshop/menu-api/internal/metrics"
	"github.com/coffeeshop/menu-api/internal/storage"
)

const version = "2026.10.1"

const (
	serverShutdownTimeout = 30 * time.Second
	jwksFetchTimeout      = 10 * time.Second
)

var errHealthCheckFailed = errors.New("health check failed")

// components holds everything the servers are built from.
type components struct {
	logger      *slog.Logger
	logLevel    *slog.LevelVar
	store       *storage.SQLiteStorage
	registry    *prometheus.Registry
	verifier    *auth.Verifier
	mainRouter  chi.Router
	adminRouter chi.Router
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()
	root := &cobra.Command{
		Use:          "coffeeshop-api",
		Short:        "Coffee-shop drinks menu API",
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve, newHealthCheckCmd(), newResetDBCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the menu API (default command)",
		Long: `Serves the drinks API on $LISTEN_ADDR (default :8080) and the
health, log level and metrics endpoints on $METRICS_LISTEN_ADDR
(default localhost:9090).

The command blocks until SIGINT or SIGTERM is received.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), os.Stdout)
		},
	}
}

func newHealthCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Exit 0 if the local server answers /health, 1 otherwise",
		Long: `Probes the /health endpoint of a server started with the same
environment. Intended as a container HEALTHCHECK for images without a shell.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if runHealthCheck() != 0 {
				return errHealthCheckFailed
			}
			return nil
		},
	}
}

func newResetDBCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-db",
		Short: "Drop all drinks, recreate the schema and seed the default drink",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			return resetDatabase(cmd.Context(), cfg.DatabasePath)
		},
	}
}

// run loads configuration, wires all components and serves until a signal arrives.
func run(ctx context.Context, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	c, err := initializeComponents(ctx, cfg, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := c.store.Close(); err != nil {
			c.logger.Error("failed to close storage", "error", err)
		}
	}()

	if cfg.ResetDBOnStart {
		c.logger.Warn("resetting database on start", "path", cfg.DatabasePath)
		if err := c.store.Reset(ctx); err != nil {
			return fmt.Errorf("database reset failed: %w", err)
		}
	}

	c.logger.Info("Coffee-shop menu API starting",
		"version", version,
		"listen_addr", cfg.ListenAddr,
		"metrics_listen_addr", cfg.MetricsListenAddr,
		"issuer", cfg.Issuer(),
		"audience", cfg.APIAudience,
	)

	return startServerAndWaitForShutdown(ctx, c.logger,
		createServer(cfg.ListenAddr, c.mainRouter),
		createServer(cfg.MetricsListenAddr, c.adminRouter),
	)
}

// initializeComponents builds the logger, storage, verifier and routers.
func initializeComponents(ctx context.Context, cfg *config.Config, out io.Writer) (*components, error) {
	logger, logLevel, err := logging.New(out, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Init(registry, version); err != nil {
		return nil, fmt.Errorf("metrics initialization failed: %w", err)
	}

	keySet, err := auth.NewKeySet(ctx, auth.KeySetOptions{
		JWKSFile: cfg.AuthJWKSFile,
		JWKSURL:  cfg.JWKSURL(),
		Client: &http.Client{
			Timeout: jwksFetchTimeout,
			Transport: &logging.LoggingTransport{
				Transport: http.DefaultTransport,
				Logger:    logger,
				Prefix:    "jwks",
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("key set initialization failed: %w", err)
	}
	verifier := auth.NewVerifier(auth.Config{
		Issuer:   cfg.Issuer(),
		Audience: cfg.APIAudience,
		KeySet:   keySet,
	})

	store, err := storage.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("storage initialization failed: %w", err)
	}

	ops := admin.NewHandler(store, logLevel, registry, logger)

	drinks := api.NewHandler(store, logger, api.WithEmptyListNotFound(cfg.EmptyListNotFound))
	mainRouter := api.NewRouter(drinks, api.RouterConfig{
		Verifier:           verifier,
		Logger:             logger,
		AllowedOrigins:     cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	mainRouter.Get("/health", ops.HandleHealth)
	mainRouter.Get("/ready", ops.HandleReady)

	return &components{
		logger:      logger,
		logLevel:    logLevel,
		store:       store,
		registry:    registry,
		verifier:    verifier,
		mainRouter:  mainRouter,
		adminRouter: ops.NewRouter(),
	}, nil
}

// createServer creates an HTTP server with the standard timeouts.
func createServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// startServerAndWaitForShutdown serves until SIGINT/SIGTERM arrives, ctx is
// cancelled or one of the servers fails, then shuts all of them down.
func startServerAndWaitForShutdown(ctx context.Context, logger *slog.Logger, servers ...*http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("Server listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error on %s: %w", srv.Addr, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			logger.Info("Received signal, shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("shutdown %s: %w", srv.Addr, err))
			}
		}
		if err := errors.Join(errs...); err != nil {
			return err
		}

		logger.Info("Server shut down gracefully")
		return nil
	})

	return g.Wait()
}

// resetDatabase drops and recreates the schema and seeds the default drink.
// A failed close is reported alongside any reset error.
func resetDatabase(ctx context.Context, dbPath string) (err error) {
	store, err := storage.New(dbPath)
	if err != nil {
		return fmt.Errorf("storage initialization failed: %w", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close storage: %w", cerr))
		}
	}()

	if err := store.Reset(ctx); err != nil {
		return fmt.Errorf("database reset failed: %w", err)
	}
	return nil
}

// healthCheckURL turns a listen address into the URL of its /health endpoint.
func healthCheckURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if err != nil {
		return "http://localhost:8080/health"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port) + "/health"
}

// runHealthCheck probes the server configured by LISTEN_ADDR.
func runHealthCheck() int {
	addr := ":8080"
	if cfg, err := config.Load(); err == nil {
		addr = cfg.ListenAddr
	}
	return doHealthCheck(healthCheckURL(addr))
}

// doHealthCheck returns 0 if url answers 200 OK, 1 otherwise.
func doHealthCheck(url string) int {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "health check failed: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "health check failed: status %s\n", strings.TrimSpace(resp.Status))
		return 1
	}
	return 0
}
