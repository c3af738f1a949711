package app

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{AppEnv: "production", LogFormat: "json"}, &buf)
	logger.Debug("hidden")
	logger.Info("fetched", "rows", 3)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "fetched", entry["msg"])
	assert.Equal(t, "production", entry["env"])
	assert.EqualValues(t, 3, entry["rows"])
}

func TestNewLoggerTextDebugInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{AppEnv: "development"}, &buf)
	logger.Debug("cache miss")
	assert.Contains(t, buf.String(), "level=DEBUG")
	assert.Contains(t, buf.String(), "cache miss")
}
