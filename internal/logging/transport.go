package logging

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// LoggingTransport wraps an http.RoundTripper and logs every outbound call,
// such as key set fetches from the identity provider. Credentials in headers
// are masked with MaskHeader.
type LoggingTransport struct {
	Transport http.RoundTripper
	Logger    *slog.Logger
	Prefix    string // e.g., "jwks"
}

// RoundTrip implements http.RoundTripper interface
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	ctx := req.Context()

	t.Logger.DebugContext(ctx, "outbound request",
		"prefix", t.Prefix,
		"method", req.Method,
		"url", req.URL.String(),
		"headers", maskHeaders(req.Header),
	)

	resp, err := t.transport().RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		t.Logger.WarnContext(ctx, "outbound request failed",
			"prefix", t.Prefix,
			"method", req.Method,
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	respBody, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	// Restore body for caller
	resp.Body = io.NopCloser(bytes.NewReader(respBody))

	t.Logger.DebugContext(ctx, "outbound response",
		"prefix", t.Prefix,
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"headers", maskHeaders(resp.Header),
		"body_bytes", len(respBody),
	)

	return resp, nil
}

// transport returns the underlying transport or DefaultTransport if nil
func (t *LoggingTransport) transport() http.RoundTripper {
	if t.Transport != nil {
		return t.Transport
	}
	return http.DefaultTransport
}

func maskHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = MaskHeader(k, strings.Join(v, ", "))
	}
	return out
}
