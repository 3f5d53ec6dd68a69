package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo, Options{}))

	logger.Info("compiling project", "project", "demo")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "compiling project", record["msg"])
	assert.Equal(t, "demo", record["project"])
	assert.Equal(t, "info", record["level"])
}

func TestHandlerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelWarn, Options{}))

	logger.Info("hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestSetLevel(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(&buf, slog.LevelInfo, Options{})
	logger := slog.New(h)

	logger.Debug("before")
	assert.Zero(t, buf.Len())

	h.SetLevel(slog.LevelDebug)
	assert.Equal(t, slog.LevelDebug, h.Level())

	logger.Debug("after")
	assert.Contains(t, buf.String(), "after")
}

func TestHandlerGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo, Options{}).WithGroup("blackmagic"))

	logger.Info("ready", "mode", "lambda")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	group, ok := record["blackmagic"].(map[string]any)
	require.True(t, ok, "record = %v", record)
	assert.Equal(t, "lambda", group["mode"])
}

func TestZapLevel(t *testing.T) {
	tests := []struct {
		in   slog.Level
		want slog.Level
	}{
		{slog.LevelDebug, slog.LevelDebug},
		{slog.LevelInfo, slog.LevelInfo},
		{slog.LevelInfo + 2, slog.LevelInfo},
		{slog.LevelWarn, slog.LevelWarn},
		{slog.LevelError + 4, slog.LevelError},
	}

	for _, tt := range tests {
		h := NewHandler(&bytes.Buffer{}, tt.in, Options{})
		assert.Equal(t, tt.want, h.Level(), "level %v", tt.in)
	}
}
