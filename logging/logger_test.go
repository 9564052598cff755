package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

// TestLoggerWritesStructuredOutput ensures messages reach the structured writers with their level and sub-logger
// context attached.
func TestLoggerWritesStructuredOutput(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, false, &buffer)
	subLogger := logger.NewSubLogger("module", "codec")

	subLogger.Info("imported document")
	output := buffer.String()
	assert.Contains(t, output, "imported document")
	assert.Contains(t, output, `"module":"codec"`)
	assert.Contains(t, output, `"level":"info"`)
}

// TestLoggerLevelFiltersEvents ensures events below the configured level are dropped.
func TestLoggerLevelFiltersEvents(t *testing.T) {
	var buffer bytes.Buffer
	logger := NewLogger(zerolog.WarnLevel, false, &buffer)

	logger.Info("dropped")
	assert.Empty(t, buffer.String())

	logger.Warn("kept")
	assert.Contains(t, buffer.String(), "kept")

	logger.SetLevel(zerolog.DebugLevel)
	logger.Debug("now visible")
	assert.Contains(t, buffer.String(), "now visible")
}

// TestLoggerAddWriter ensures later-attached writers receive subsequent events exactly once.
func TestLoggerAddWriter(t *testing.T) {
	var first, second bytes.Buffer
	logger := NewLogger(zerolog.InfoLevel, false, &first)

	logger.AddWriter(&second)
	logger.AddWriter(&second)
	logger.Info("fan out")

	assert.Contains(t, first.String(), "fan out")
	assert.Equal(t, 1, bytes.Count(second.Bytes(), []byte("fan out")))
}
