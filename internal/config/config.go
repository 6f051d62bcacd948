// Package config provides configuration loading and validation from environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"k8s.io/utils/env"
)

// Config holds all application configuration.
type Config struct {
	LogLevel          string // debug, info, warn, error
	LogFormat         string // json, text
	ListenAddr        string // Server listen address (e.g., ":8080")
	MetricsListenAddr string // Ops listener address (e.g., "localhost:9090")
	DatabasePath      string // SQLite database path

	Auth0Domain  string // e.g. "tenant.us.auth0.com"; derives issuer and JWKS URL
	APIAudience  string // Required aud claim
	AuthIssuer   string // Overrides the derived issuer
	AuthJWKSURL  string // Overrides the derived JWKS URL
	AuthJWKSFile string // Static JWKS file used instead of fetching keys

	EmptyListNotFound  bool     // Answer 404 on empty listings
	ResetDBOnStart     bool     // Drop, recreate and seed the database on start
	RateLimitPerMinute int      // Per-IP request budget, 0 disables
	MaxBodyBytes       int64    // Request body cap, 0 disables
	CORSAllowedOrigins []string // Origins allowed by CORS
}

// Load parses configuration from environment variables.
// All configuration options have sensible defaults for ease of deployment,
// except the identity provider, which Validate checks.
func Load() (*Config, error) {
	emptyListNotFound, err := env.GetBool("EMPTY_LIST_NOT_FOUND", true)
	if err != nil {
		return nil, fmt.Errorf("invalid EMPTY_LIST_NOT_FOUND: %w", err)
	}
	resetDB, err := env.GetBool("RESET_DB_ON_START", false)
	if err != nil {
		return nil, fmt.Errorf("invalid RESET_DB_ON_START: %w", err)
	}
	rateLimit, err := env.GetInt("RATE_LIMIT_PER_MINUTE", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_PER_MINUTE: %w", err)
	}
	maxBody, err := env.GetInt("MAX_BODY_BYTES", 1<<20)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_BODY_BYTES: %w", err)
	}

	cfg := &Config{
		LogLevel:          getString("LOG_LEVEL", "info"),
		LogFormat:         getString("LOG_FORMAT", "json"),
		ListenAddr:        getString("LISTEN_ADDR", ":8080"),
		MetricsListenAddr: getString("METRICS_LISTEN_ADDR", "localhost:9090"),
		DatabasePath:      getString("DATABASE_PATH", "/data/coffeeshop.db"),

		Auth0Domain:  strings.TrimSuffix(strings.TrimPrefix(env.GetString("AUTH0_DOMAIN", ""), "https://"), "/"),
		APIAudience:  getString("API_AUDIENCE", "coffeeshop"),
		AuthIssuer:   env.GetString("AUTH_ISSUER", ""),
		AuthJWKSURL:  env.GetString("AUTH_JWKS_URL", ""),
		AuthJWKSFile: env.GetString("AUTH_JWKS_FILE", ""),

		EmptyListNotFound:  emptyListNotFound,
		ResetDBOnStart:     resetDB,
		RateLimitPerMinute: rateLimit,
		MaxBodyBytes:       int64(maxBody),
		CORSAllowedOrigins: splitList(getString("CORS_ALLOWED_ORIGINS", "*")),
	}

	return cfg, nil
}

// Issuer returns the expected iss claim. AUTH_ISSUER wins over the value
// derived from AUTH0_DOMAIN.
func (c *Config) Issuer() string {
	if c.AuthIssuer != "" {
		return c.AuthIssuer
	}
	if c.Auth0Domain != "" {
		return "https://" + c.Auth0Domain + "/"
	}
	return ""
}

// JWKSURL returns the URL verification keys are fetched from.
func (c *Config) JWKSURL() string {
	if c.AuthJWKSURL != "" {
		return c.AuthJWKSURL
	}
	if c.Auth0Domain != "" {
		return "https://" + c.Auth0Domain + "/.well-known/jwks.json"
	}
	return ""
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	var errs []error

	if c.Issuer() == "" {
		errs = append(errs, errors.New("AUTH0_DOMAIN or AUTH_ISSUER environment variable is required"))
	}
	if c.JWKSURL() == "" && c.AuthJWKSFile == "" {
		errs = append(errs, errors.New("AUTH0_DOMAIN, AUTH_JWKS_URL or AUTH_JWKS_FILE environment variable is required"))
	}
	if c.APIAudience == "" {
		errs = append(errs, errors.New("API_AUDIENCE must not be empty"))
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute))
	}
	if c.MaxBodyBytes < 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must not be negative, got %d", c.MaxBodyBytes))
	}

	return errors.Join(errs...)
}

// getString is env.GetString that also treats an empty value as unset.
func getString(key, defaultValue string) string {
	if v := env.GetString(key, ""); v != "" {
		return v
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
