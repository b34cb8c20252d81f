// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/okabe-dev/cartwalk/internal/config"
)

// syncBuffer adapts a bytes.Buffer into a zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func TestInitializeConsole(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "console",
		ServiceName: "cartwalk-test",
	}, buf)

	logger := GetLogger()
	require.NotNil(t, logger)

	logger.Info("hello", zap.String("target", "example.com"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "example.com")
	assert.Contains(t, out, "cartwalk-test.")
	assert.Contains(t, out, colorGreen, "info lines should be colorized on the console")
}

func TestInitializeLevelFiltering(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{
		Level:  "warn",
		Format: "json",
	}, buf)

	logger := GetLogger()
	logger.Info("should not appear")
	logger.Warn("should appear")
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "should not appear")
	assert.Contains(t, out, "should appear")
}

func TestInitializeInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{
		Level:  "nonsense",
		Format: "json",
	}, buf)

	logger := GetLogger()
	logger.Debug("debug line")
	logger.Info("info line")
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.Contains(t, out, "info line")
}

func TestInitializeOnlyOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &syncBuffer{}
	second := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, first)
	Initialize(config.LoggerConfig{Level: "info", Format: "json"}, second)

	GetLogger().Info("routed to first writer")
	require.NoError(t, GetLogger().Sync())

	assert.Contains(t, first.String(), "routed to first writer")
	assert.Empty(t, second.String())
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logger := GetLogger()
	require.NotNil(t, logger, "fallback logger must always be available")
}

func TestColorizedLevelEncoder(t *testing.T) {
	t.Parallel()

	cases := []struct {
		level zapcore.Level
		color string
	}{
		{zapcore.DebugLevel, colorCyan},
		{zapcore.InfoLevel, colorGreen},
		{zapcore.WarnLevel, colorYellow},
		{zapcore.ErrorLevel, colorRed},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.level.String(), func(t *testing.T) {
			t.Parallel()

			enc := &captureEncoder{}
			colorizedLevelEncoder(tc.level, enc)
			require.Len(t, enc.values, 1)
			assert.Contains(t, enc.values[0], tc.color)
			assert.Contains(t, enc.values[0], colorReset)
		})
	}
}

// captureEncoder records appended strings for encoder assertions.
type captureEncoder struct {
	zapcore.PrimitiveArrayEncoder
	values []string
}

func (c *captureEncoder) AppendString(s string) {
	c.values = append(c.values, s)
}
