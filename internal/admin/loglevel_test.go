package admin

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandleSetLogLevel(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantLevel  slog.Level
	}{
		{"debug", `{"level":"debug"}`, http.StatusOK, slog.LevelDebug},
		{"warn upper case", `{"level":"WARN"}`, http.StatusOK, slog.LevelWarn},
		{"error", `{"level":"error"}`, http.StatusOK, slog.LevelError},
		{"unknown level", `{"level":"verbose"}`, http.StatusBadRequest, slog.LevelInfo},
		{"invalid json", `{level`, http.StatusBadRequest, slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			levelVar := new(slog.LevelVar)
			levelVar.Set(slog.LevelInfo)
			var logs bytes.Buffer
			h := NewHandler(&mockStorage{}, levelVar, nil, slog.New(slog.NewTextHandler(&logs, nil)))

			req := httptest.NewRequest(http.MethodPost, "/loglevel", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			h.HandleSetLogLevel(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if got := levelVar.Level(); got != tt.wantLevel {
				t.Errorf("expected level %v, got %v", tt.wantLevel, got)
			}
			if tt.wantStatus == http.StatusOK && !strings.Contains(logs.String(), "log level changed") {
				t.Errorf("expected level change to be logged, got: %s", logs.String())
			}
		})
	}
}

func TestHandleGetLogLevel(t *testing.T) {
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	h := NewHandler(nil, levelVar, nil, nil)

	w := httptest.NewRecorder()
	h.HandleGetLogLevel(w, httptest.NewRequest(http.MethodGet, "/loglevel", nil))

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["level"] != "WARN" {
		t.Errorf("expected level WARN, got %s", resp["level"])
	}
}
