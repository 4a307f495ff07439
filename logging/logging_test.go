package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_JSONFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mzarray.log")

	logger, err := New(Config{Level: "debug", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Debug("spill segment created", zap.Uint32("segment", 3))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	require.Equal(t, "spill segment created", entry["message"])
	require.Equal(t, "debug", entry["level"])
	require.Contains(t, entry, "timestamp")
	require.Contains(t, entry, "caller")
	require.InDelta(t, 3, entry["segment"], 0)
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mzarray.log")

	logger, err := New(Config{Level: "warn", Encoding: "console", OutputPaths: []string{path}})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "dropped")
	require.Contains(t, string(data), "kept")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "loud"})
	require.ErrorContains(t, err, "invalid log level")
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
	require.NoError(t, Config{Level: "error", Encoding: "console"}.Validate())
	require.Error(t, Config{Level: "info", Encoding: "xml"}.Validate())
	require.Error(t, Config{Level: "chatty"}.Validate())
}

func TestNew_Development(t *testing.T) {
	logger, err := New(Config{Level: "info", Development: true, Encoding: "console", OutputPaths: []string{filepath.Join(t.TempDir(), "dev.log")}})
	require.NoError(t, err)
	require.True(t, logger.Core().Enabled(zap.InfoLevel))
	require.False(t, logger.Core().Enabled(zap.DebugLevel))
}
