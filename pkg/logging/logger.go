// Package logging provides the explicit logger handle passed through the
// orchestration layer. The codec and interpolator packages never receive
// one; verbosity only controls per-file detail.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Verbosity levels, matching the CLI's 1-3 range.
const (
	LevelError = 1
	LevelInfo  = 2
	LevelDebug = 3
)

// Logger writes leveled lines to a single sink. Safe for concurrent use by
// the worker pool.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level int
}

// New returns a logger filtering below the given verbosity. Levels outside
// 1-3 are clamped.
func New(out io.Writer, verbosity int) *Logger {
	if out == nil {
		out = os.Stdout
	}
	if verbosity < LevelError {
		verbosity = LevelError
	}
	if verbosity > LevelDebug {
		verbosity = LevelDebug
	}
	return &Logger{out: out, level: verbosity}
}

func (l *Logger) line(level int, name, format string, args ...any) {
	if level > l.level {
		return
	}
	text := fmt.Sprintf(format, args...)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s\t%s\n", name, text)
}

// Error logs at ERROR level (always shown).
func (l *Logger) Error(format string, args ...any) {
	l.line(LevelError, "ERROR", format, args...)
}

// Info logs at INFO level.
func (l *Logger) Info(format string, args ...any) {
	l.line(LevelInfo, "INFO", format, args...)
}

// Debug logs at DEBUG level.
func (l *Logger) Debug(format string, args ...any) {
	l.line(LevelDebug, "DEBUG", format, args...)
}
