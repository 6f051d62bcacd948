package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestRequestID_GeneratesUUID(t *testing.T) {
	t.Parallel()
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/drinks", nil))

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("generated ID is not a valid UUID: %q", seen)
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Errorf("response header %q does not match context ID %q", got, seen)
	}
}

func TestRequestID_PreservesExistingID(t *testing.T) {
	t.Parallel()
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := GetRequestID(r.Context()); got != "client-id_123.abc" {
			t.Errorf("expected client ID in context, got %q", got)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/drinks", nil)
	req.Header.Set(RequestIDHeader, "client-id_123.abc")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get(RequestIDHeader); got != "client-id_123.abc" {
		t.Errorf("expected preserved ID, got %q", got)
	}
}

func TestRequestID_RejectsInvalidIDs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		id   string
	}{
		{"oversized", strings.Repeat("a", 129)},
		{"newline", "abc\ndef"},
		{"control character", "abc\x00def"},
		{"space", "abc def"},
		{"slash", "../etc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			handler := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(RequestIDHeader, tt.id)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if got == tt.id {
				t.Errorf("invalid ID %q should have been replaced", tt.id)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("replacement is not a UUID: %q", got)
			}
		})
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	t.Parallel()
	handler := RequestID(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	ids := make(map[string]bool)
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		ids[rec.Header().Get(RequestIDHeader)] = true
	}
	if len(ids) != 50 {
		t.Errorf("expected 50 unique IDs, got %d", len(ids))
	}
}

func TestGetRequestID_NoID(t *testing.T) {
	t.Parallel()
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("expected empty string, got %q", id)
	}
}

func TestLogger(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	ctx := context.WithValue(context.Background(), requestIDKey, "req-42")
	Logger(ctx, base).Info("hello")
	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Errorf("expected request_id attribute, got %s", buf.String())
	}

	buf.Reset()
	Logger(context.Background(), base).Info("hello")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("expected no request_id attribute, got %s", buf.String())
	}
}
