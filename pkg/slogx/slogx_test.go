package slogx

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewAttachesServiceAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Service: "memberhub",
		Version: "v1.2.3",
		Env:     "prod",
		Level:   "info",
		Format:  "json",
		Output:  &buf,
	})

	logger.Info("ready")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "memberhub", entry["service"])
	require.Equal(t, "v1.2.3", entry["version"])
	require.Equal(t, "prod", entry["env"])
}

func TestNewSuppressesBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "memberhub", Env: "prod", Level: "warn", Output: &buf})

	logger.Info("quiet")
	require.Zero(t, buf.Len())

	logger.Warn("loud")
	require.Contains(t, buf.String(), "loud")
}

func TestNewDevDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Service: "memberhub", Env: "dev", Output: &buf})

	// Debug is on and the output is text, not JSON.
	logger.Debug("tracing")
	out := strings.TrimSpace(buf.String())
	require.Contains(t, out, "tracing")
	require.False(t, strings.HasPrefix(out, "{"))
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("debug", false))
	require.Equal(t, slog.LevelInfo, parseLevel("info", false))
	require.Equal(t, slog.LevelWarn, parseLevel("WARNING", false))
	require.Equal(t, slog.LevelError, parseLevel("error", false))
	require.Equal(t, slog.LevelInfo, parseLevel("", false))
	require.Equal(t, slog.LevelDebug, parseLevel("", true))
}
