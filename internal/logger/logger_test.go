package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daylog/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelWarn,
		"verbose": slog.LevelWarn,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.Logging{Level: "info", Format: "json"}, &buf)

	log.Debug("hidden")
	log.Info("task created", "id", "task-1")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "task created", rec["msg"])
	assert.Equal(t, ServiceName, rec["service"])
	assert.Equal(t, "task-1", rec["id"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log := New(config.Logging{Level: "warn", Format: "text"}, &buf)

	log.Info("hidden")
	log.Warn("retrying")

	assert.Contains(t, buf.String(), "msg=retrying")
	assert.Contains(t, buf.String(), "service=daylog")
	assert.NotContains(t, buf.String(), "hidden")
}

func TestRequestID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))

	ctx, id := EnsureRequestID(ctx)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, RequestID(ctx))

	same, again := EnsureRequestID(ctx)
	assert.Equal(t, id, again)
	assert.Equal(t, ctx, same)

	assert.Equal(t, "req-1", RequestID(WithRequestID(ctx, "req-1")))
}
