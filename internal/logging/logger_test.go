package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-sync/internal/config"
)

func TestDebugEnabled(t *testing.T) {
	t.Setenv("TD_DEBUG", "")
	assert.False(t, DebugEnabled(), "DebugEnabled() should return false when TD_DEBUG is empty")

	t.Setenv("TD_DEBUG", "1")
	assert.True(t, DebugEnabled(), "DebugEnabled() should return true when TD_DEBUG is set")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		expected slog.Level
		known    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, ok := ParseLevel(tt.name)
			assert.Equal(t, tt.expected, level)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestSetup_JSONFormat(t *testing.T) {
	t.Setenv("TD_DEBUG", "")
	var buf bytes.Buffer

	logger := Setup(config.LogConfig{Level: "info", Format: "json"}, &buf)
	logger.Debug("hidden")
	logger.Info("remote update failed", "task_id", "abc")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "remote update failed", entry["msg"])
	assert.Equal(t, "abc", entry["task_id"])
}

func TestSetup_TextFormatAndDebugOverride(t *testing.T) {
	t.Setenv("TD_DEBUG", "1")
	var buf bytes.Buffer

	logger := Setup(config.LogConfig{Level: "error", Format: "text"}, &buf)
	logger.Debug("visible because TD_DEBUG is set")

	assert.Contains(t, buf.String(), "visible because TD_DEBUG is set")
}

func TestSetup_InvalidLevelWarns(t *testing.T) {
	t.Setenv("TD_DEBUG", "")
	var buf bytes.Buffer

	Setup(config.LogConfig{Level: "chatty", Format: "text"}, &buf)

	assert.Contains(t, buf.String(), "invalid log level configured")
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	require.NotNil(t, logger)
	logger.Error("goes nowhere")
}
