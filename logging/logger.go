// Package logging wraps log/slog with the field names and helpers used across
// the Morse pipeline.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// LevelTrace sits below slog.LevelDebug and is used for per-candidate decisions
// inside the cancellation loop.
const LevelTrace = slog.Level(-8)

// Logger wraps slog.Logger with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler writing to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger writing human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}))
}

// NewJSONLogger creates a Logger writing JSON records to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: replaceLevel,
	}))
}

// NoopLogger discards everything.
func NoopLogger() *Logger {
	return NewLogger(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
		a.Value = slog.StringValue("TRACE")
	}
	return a
}

// ParseLevel accepts trace, debug, info, warn and error, case insensitive.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("logging: unknown level %q", s)
}

// With returns a Logger carrying the given attributes.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Trace logs at LevelTrace.
func (l *Logger) Trace(ctx context.Context, msg string, args ...any) {
	l.Log(ctx, LevelTrace, msg, args...)
}

// LogPhase logs the completion of a pipeline phase.
func (l *Logger) LogPhase(ctx context.Context, phase string, elapsed time.Duration, args ...any) {
	args = append([]any{"phase", phase, "elapsed", elapsed}, args...)
	l.InfoContext(ctx, "phase completed", args...)
}

// LogCancel logs an executed cancellation.
func (l *Logger) LogCancel(ctx context.Context, order, lower, upper int, persistence float64) {
	l.DebugContext(ctx, "cancelled pair",
		"order", order,
		"lower", lower,
		"upper", upper,
		"persistence", persistence,
	)
}

// LogSkip logs a discarded cancellation candidate.
func (l *Logger) LogSkip(ctx context.Context, reason error, lower, upper int, persistence float64) {
	l.Trace(ctx, "skipped candidate",
		"reason", reason,
		"lower", lower,
		"upper", upper,
		"persistence", persistence,
	)
}

// Badger adapts the Logger to the printf-style interface expected by badger.
func (l *Logger) Badger() *BadgerLogger {
	return &BadgerLogger{l: l.With("component", "badger")}
}

// BadgerLogger implements badger.Logger on top of slog.
type BadgerLogger struct {
	l *Logger
}

func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Log(context.Background(), LevelTrace, strings.TrimSpace(fmt.Sprintf(format, args...)))
}
