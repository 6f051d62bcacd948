package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// unmatchedPath labels requests that did not match any route. The raw URL is
// client controlled and must never become a label value.
const unmatchedPath = "unmatched"

// statusRecorder wraps http.ResponseWriter to capture the status code
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.written {
		r.statusCode = code
		r.written = true
		r.ResponseWriter.WriteHeader(code)
	}
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if !r.written {
		r.statusCode = http.StatusOK
		r.written = true
	}
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Middleware records request count and latency for every request.
// A panicking handler is counted as a 500 and the panic is re-raised for an
// outer recovery middleware to handle.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		startTime := time.Now()

		defer func() {
			rec := recover()

			statusCode := recorder.statusCode
			if rec != nil {
				statusCode = http.StatusInternalServerError
			}

			path := routePattern(r)
			status := strconv.Itoa(statusCode)
			RecordRequest(r.Method, path, status)
			RecordRequestDuration(r.Method, path, status, time.Since(startTime).Seconds())

			if rec != nil {
				panic(rec)
			}
		}()

		next.ServeHTTP(recorder, r)
	})
}

// routePattern returns the chi route pattern that served r, or unmatchedPath.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedPath
}
