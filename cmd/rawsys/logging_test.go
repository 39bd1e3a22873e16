package main

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlogManager_FanOut(t *testing.T) {
	t.Parallel()

	var debugBuf, warnBuf bytes.Buffer

	m := NewSlogManager()
	m.AddHandler("debug", newTintHandler(&debugBuf, slog.LevelDebug, true))
	m.AddHandler("warn", newTintHandler(&warnBuf, slog.LevelWarn, true))

	logger := slog.New(m).With("watch", "raw").WithGroup("stats")
	logger.Debug("Low level message.", "reads", 3)
	logger.Warn("High level message.", "overflows", 1)

	assert.Contains(t, debugBuf.String(), "Low level message.")
	assert.Contains(t, debugBuf.String(), "stats.reads=3")
	assert.Contains(t, debugBuf.String(), "watch=raw")
	assert.Contains(t, debugBuf.String(), "High level message.")

	assert.NotContains(t, warnBuf.String(), "Low level message.")
	assert.Contains(t, warnBuf.String(), "stats.overflows=1")
}

func TestSlogManager_SwapHandlers(t *testing.T) {
	t.Parallel()

	var termBuf, uiBuf bytes.Buffer

	m := NewSlogManager()
	m.AddHandler(handlerTerminal, newTintHandler(&termBuf, slog.LevelInfo, true))

	logger := slog.New(m)
	logger.Info("before")

	m.AddHandler(handlerUI, newTintHandler(&uiBuf, slog.LevelInfo, true))
	m.RemoveHandler(handlerTerminal)
	logger.Info("during")

	m.AddHandler(handlerTerminal, newTintHandler(&termBuf, slog.LevelInfo, true))
	m.RemoveHandler(handlerUI)
	logger.Info("after")

	assert.Contains(t, termBuf.String(), "before")
	assert.NotContains(t, termBuf.String(), "during")
	assert.Contains(t, termBuf.String(), "after")
	assert.Equal(t, 1, bytes.Count(uiBuf.Bytes(), []byte("during")))
	assert.NotContains(t, uiBuf.String(), "after")

	m.RemoveHandler(handlerTerminal)
	assert.False(t, m.Enabled(t.Context(), slog.LevelError))
}

func TestSlogManager_AddHandlerAfterWith(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	m := NewSlogManager()
	child, ok := m.WithAttrs([]slog.Attr{slog.String("cmd", "ls")}).(*SlogManager)
	assert.True(t, ok)

	child.AddHandler("late", newTintHandler(&buf, slog.LevelInfo, true))
	slog.New(child).Info("listed")

	assert.Contains(t, buf.String(), "cmd=ls")
}
