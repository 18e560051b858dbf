package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newBufferedLogger(level LogLevel) (*TurnLogger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	cfg := DefaultLoggerConfig()
	cfg.Level = level
	cfg.Output = buf
	cfg.AddSource = false
	return NewLogger(cfg), buf
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "INFO", LogLevelInfo.String())
	assert.Equal(t, "WARN", LogLevelWarn.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
}

func TestTurnLogger_LevelFiltering(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelWarn)

	logger.Debug("debug message")
	logger.Info("info message")
	assert.Empty(t, buf.String())

	logger.Warn("warn message")
	assert.Contains(t, buf.String(), "warn message")
}

func TestTurnLogger_WithTurnAttachesIdentifiers(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelInfo)

	logger.WithTurn("test", "conv-1", "turn-1").Info("processing")

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "test", entry["channel_id"])
	assert.Equal(t, "conv-1", entry["conversation_id"])
	assert.Equal(t, "turn-1", entry["turn_id"])
}

func TestTurnLogger_WithContextDoesNotMutateParent(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelInfo)

	child := logger.WithContext("request_id", "r-1")
	child.Info("child entry")
	assert.Contains(t, buf.String(), "request_id")

	buf.Reset()
	logger.Info("parent entry")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestTurnLogger_LogTurn(t *testing.T) {
	logger, buf := newBufferedLogger(LogLevelInfo)

	logger.LogTurn("message", 5*time.Millisecond, true, nil)
	assert.Contains(t, buf.String(), "Turn completed")

	buf.Reset()
	logger.LogTurn("message", 5*time.Millisecond, false, fmt.Errorf("boom"))
	assert.Contains(t, buf.String(), "Turn failed")
	assert.Contains(t, buf.String(), "boom")
}

func TestNoOpLogger_ImplementsLogger(t *testing.T) {
	var logger Logger = NoOpLogger{}
	logger.Debug("ignored")
	logger.Info("ignored")
	logger.Warn("ignored")
	logger.Error("ignored")
}
