package middleware

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/coffeeshop/menu-api/internal/logging"
)

// DrinkBodyAllowlist lists the JSON keys that are logged verbatim for the
// drinks API. Everything else in a body is redacted.
var DrinkBodyAllowlist = []string{
	"success", "error", "message", "deleted",
	"id", "title", "name", "color", "parts",
}

// HTTPLogging logs requests and responses with masked headers and bodies.
// It is a pass-through unless the logger has DEBUG enabled, which can be
// toggled at runtime.
//
// allowlist selects the JSON keys kept in logged bodies (nil logs everything).
func HTTPLogging(logger *slog.Logger, allowlist []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !logger.Enabled(r.Context(), slog.LevelDebug) {
				next.ServeHTTP(w, r)
				return
			}

			log := Logger(r.Context(), logger)
			logRequest(log, r, allowlist)

			rec := &responseRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
				body:           new(bytes.Buffer),
			}

			start := time.Now()
			next.ServeHTTP(rec, r)

			log.Debug("HTTP Response",
				"method", r.Method,
				"url", r.URL.Path,
				"status_code", rec.statusCode,
				"headers", maskHeaders(rec.Header()),
				"body", maskBody(rec.body.Bytes(), allowlist),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

// maxLoggedBody caps how much of a request body is buffered for logging.
const maxLoggedBody = 64 << 10

// logRequest logs at most maxLoggedBody bytes of the body. The bytes read are
// put back in front of the unread remainder, so the handler still sees the
// full body and any error of the underlying reader.
func logRequest(log *slog.Logger, r *http.Request, allowlist []string) {
	var reqBody []byte
	truncated := false
	if r.Body != nil {
		var err error
		reqBody, err = io.ReadAll(io.LimitReader(r.Body, maxLoggedBody+1))
		if err != nil {
			log.Debug("Failed to read request body", "error", err)
		}
		if len(reqBody) > maxLoggedBody {
			truncated = true
		}
		r.Body = prefixedBody{
			Reader: io.MultiReader(bytes.NewReader(reqBody), r.Body),
			Closer: r.Body,
		}
	}

	body := maskBody(reqBody, allowlist)
	if truncated {
		body = fmt.Sprintf("[TRUNCATED: first %d bytes]", maxLoggedBody)
	}

	log.Debug("HTTP Request",
		"method", r.Method,
		"url", r.URL.Path,
		"query_params", r.URL.RawQuery,
		"headers", maskHeaders(r.Header),
		"body", body,
	)
}

// prefixedBody replays already-read bytes before the rest of a request body.
type prefixedBody struct {
	io.Reader
	io.Closer
}

func maskHeaders(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for k, v := range headers {
		if len(v) > 0 {
			result[k] = logging.MaskHeader(k, v[0])
		}
	}
	return result
}

func maskBody(body []byte, allowlist []string) string {
	if len(body) == 0 {
		return ""
	}
	if !utf8.Valid(body) {
		return fmt.Sprintf("[BINARY: %d bytes]", len(body))
	}
	return string(logging.MaskJSONBody(body, allowlist))
}

// responseRecorder captures response details for logging.
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *responseRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
