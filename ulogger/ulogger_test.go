package ulogger_test

import (
	"bytes"
	"testing"

	"github.com/bsv-blockchain/fractionalize/ulogger"
	"github.com/ordishs/gocore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroLogger_Levels(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("test", ulogger.WithWriter(&buf), ulogger.WithLevel("WARN"))
	require.NotNil(t, logger)

	assert.Equal(t, int(gocore.WARN), logger.LogLevel())

	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")
}

func TestZeroLogger_SetLogLevel(t *testing.T) {
	var buf bytes.Buffer

	logger := ulogger.New("test", ulogger.WithWriter(&buf))
	assert.Equal(t, int(gocore.INFO), logger.LogLevel())

	logger.SetLogLevel("debug")
	assert.Equal(t, int(gocore.DEBUG), logger.LogLevel())

	logger.Debugf("debug line")
	assert.Contains(t, buf.String(), "debug line")

	logger.SetLogLevel("nonsense")
	assert.Equal(t, int(gocore.INFO), logger.LogLevel())
}

func TestZeroLogger_NewInheritsWriterAndLevel(t *testing.T) {
	var buf bytes.Buffer

	parent := ulogger.New("parent", ulogger.WithWriter(&buf), ulogger.WithLevel("ERROR"))
	child := parent.New("child")

	assert.Equal(t, int(gocore.ERROR), child.LogLevel())

	child.Warnf("dropped")
	child.Errorf("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")

	dup := parent.Duplicate(ulogger.WithLevel("INFO"))
	assert.Equal(t, int(gocore.INFO), dup.LogLevel())
}

func TestTestLogger(t *testing.T) {
	var logger ulogger.Logger = ulogger.TestLogger{}

	logger.Infof("nothing")
	logger.Errorf("nothing")
	assert.Equal(t, 0, logger.LogLevel())
	assert.NotNil(t, logger.New("x"))
	assert.NotNil(t, logger.Duplicate())
}

func TestVerboseTestLogger(t *testing.T) {
	var logger ulogger.Logger = ulogger.NewVerboseTestLogger(t)

	logger.Debugf("debug %s", "a")
	logger.Infof("info %s", "b")
	logger.Warnf("warn %s", "c")
	logger.Errorf("error %s", "d")

	assert.Equal(t, int(gocore.DEBUG), logger.LogLevel())

	child := logger.New("other")
	assert.NotSame(t, logger, child)
	child.Infof("tagged")

	// level is shared with children
	child.SetLogLevel("WARN")
	assert.Equal(t, int(gocore.WARN), logger.LogLevel())
	assert.Same(t, logger, logger.Duplicate())

	quiet := ulogger.NewVerboseTestLogger(t, ulogger.WithLevel("ERROR"))
	assert.Equal(t, int(gocore.ERROR), quiet.LogLevel())
	quiet.Infof("dropped")
}

func TestVerboseTestLoggerAfterTestEnds(t *testing.T) {
	var logger ulogger.Logger

	t.Run("inner", func(t *testing.T) {
		logger = ulogger.NewVerboseTestLogger(t)
	})

	// must not panic once the inner test is complete
	assert.NotPanics(t, func() { logger.Infof("late") })
}
