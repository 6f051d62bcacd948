package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseLevel("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger, level, err := New(&buf, "info", "json")
		require.NoError(t, err)

		logger.Debug("hidden")
		logger.Info("shown", "drink", "latte")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"drink":"latte"`)

		level.Set(slog.LevelDebug)
		assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		logger, _, err := New(&buf, "debug", "text")
		require.NoError(t, err)
		logger.Debug("hello")
		assert.True(t, strings.Contains(buf.String(), "msg=hello"))
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()
		_, _, err := New(&bytes.Buffer{}, "loud", "json")
		require.Error(t, err)
		_, _, err = New(&bytes.Buffer{}, "info", "xml")
		require.Error(t, err)
	})
}
