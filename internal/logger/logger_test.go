package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONLogging(t *testing.T) {
	var buf bytes.Buffer

	config := Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "test-service",
		Version:     "1.0.0",
		Environment: "test",
		AddSource:   false,
	}

	InitLoggerWithWriter(config, &buf)

	Info("test message", "key", "value", "number", 42)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

	assert.Equal(t, "test-service", logEntry["service"])
	assert.Equal(t, "1.0.0", logEntry["version"])
	assert.Equal(t, "test", logEntry["environment"])
	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "INFO", logEntry["level"])
	assert.Equal(t, "value", logEntry["key"])
	assert.Equal(t, float64(42), logEntry["number"])
}

func TestFromContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(Config{Level: "debug", Format: "json"}, &buf)

	ctx := WithRequestID(context.Background(), "req-42")
	FromContext(ctx).Debug("bet placed")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "req-42", logEntry["request_id"])
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "test-req-123")

	assert.Equal(t, "test-req-123", GetRequestID(ctx))
	assert.NotNil(t, FromContext(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestEnsureRequestID(t *testing.T) {
	ctx := EnsureRequestID(context.Background())
	id, ok := RequestIDFromContext(ctx)
	require.True(t, ok)
	assert.Len(t, id, 36)

	// Existing IDs are preserved
	assert.Equal(t, id, GetRequestID(EnsureRequestID(ctx)))
}

func TestForEnvironment(t *testing.T) {
	tests := []struct {
		env       string
		level     slog.Level
		json      bool
		addSource bool
	}{
		{"prod", slog.LevelInfo, true, false},
		{"production", slog.LevelInfo, true, false},
		{"staging", slog.LevelInfo, true, false},
		{"test", slog.LevelWarn, false, false},
		{"dev", slog.LevelDebug, false, true},
		{"", slog.LevelDebug, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			c := ForEnvironment(tt.env)
			assert.Equal(t, tt.level, c.LogLevel())
			assert.Equal(t, tt.json, c.IsJSON())
			assert.Equal(t, tt.addSource, c.AddSource)
			assert.Equal(t, DefaultServiceName, c.ServiceName)
			assert.Equal(t, tt.env, c.Environment)
		})
	}
}

func TestConfigOverride(t *testing.T) {
	c := ForEnvironment("prod").Override("error", "")
	assert.Equal(t, slog.LevelError, c.LogLevel())
	assert.True(t, c.IsJSON(), "empty format keeps the environment default")

	c = ForEnvironment("dev").Override("", "json")
	assert.Equal(t, slog.LevelDebug, c.LogLevel())
	assert.True(t, c.IsJSON())
}
