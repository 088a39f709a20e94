package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/sanspareilsmyn/calcstats/internal/config"
)

func TestNewLoggerJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept")
	require.NoError(t, logger.Sync())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "WARN", entry["level"])
}

func TestNewLoggerFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger, err := newLogger(config.LogConfig{
		Level:              "info",
		Format:             "none",
		FileLoggingEnabled: true,
		Directory:          dir,
		Filename:           "calcstats.log",
		MaxSize:            1,
	}, &bytes.Buffer{})
	require.NoError(t, err)

	logger.Info("to file")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(filepath.Join(dir, "calcstats.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"to file"`)
}

func TestNewLoggerWithoutOutputs(t *testing.T) {
	_, err := newLogger(config.LogConfig{Level: "info", Format: "none"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	level, err = parseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, zapcore.InfoLevel, level)
}
