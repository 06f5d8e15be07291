package system

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// NewTestLogger returns a sugared logger bound to tb. Output only shows up for
// failing tests, and stacktraces are limited to fatal logs so the expected
// Error entries of failure-path tests stay readable.
func NewTestLogger(tb testing.TB) *zap.SugaredLogger {
	return NewTestZapLogger(tb).Sugar()
}

// NewTestZapLogger is NewTestLogger for callers that need a plain *zap.Logger,
// such as the HTTP server's ginzap middleware.
func NewTestZapLogger(tb testing.TB) *zap.Logger {
	return zaptest.NewLogger(tb,
		zaptest.Level(zap.DebugLevel),
		zaptest.WrapOptions(zap.AddStacktrace(zap.FatalLevel)),
	)
}
