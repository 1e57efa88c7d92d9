package logging_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fivetwenty-io/apiclient/internal/logging"
	"github.com/fivetwenty-io/apiclient/pkg/apiclient"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ apiclient.Logger = (*logging.Logger)(nil)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{input: "debug", expected: zerolog.DebugLevel},
		{input: " WARN ", expected: zerolog.WarnLevel},
		{input: "error", expected: zerolog.ErrorLevel},
		{input: "", expected: zerolog.InfoLevel},
		{input: "loud", expected: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, logging.ParseLevel(tt.input))
		})
	}
}

func TestLogger_WritesFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := logging.New(&buf, "warn")
	assert.Equal(t, zerolog.WarnLevel, logger.Level())

	logger.Debug("hidden", nil)
	logger.Info("hidden", nil)
	logger.Warn("session expired", map[string]interface{}{"status_code": 401, "path": "/users"})
	logger.Error("failed to clear credentials", map[string]interface{}{"error": "disk full"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "warn", first["level"])
	assert.Equal(t, "session expired", first["message"])
	assert.InDelta(t, 401, first["status_code"], 0)
	assert.Equal(t, "/users", first["path"])
	assert.Contains(t, first, "time")

	var second map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "error", second["level"])
	assert.Equal(t, "disk full", second["error"])
}

func TestLogger_MethodLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level string
		log   func(l *logging.Logger, msg string, fields map[string]interface{})
	}{
		{level: "debug", log: (*logging.Logger).Debug},
		{level: "info", log: (*logging.Logger).Info},
		{level: "warn", log: (*logging.Logger).Warn},
		{level: "error", log: (*logging.Logger).Error},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			tt.log(logging.New(&buf, "debug"), "API Request", map[string]interface{}{"method": "GET"})

			var entry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, "API Request", entry["message"])
			assert.Equal(t, "GET", entry["method"])
		})
	}
}
