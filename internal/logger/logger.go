// Package logger writes the diagnostic trail of an analysis run to stderr.
//
// Warnings always print. --verbose adds the per-column decisions (Info,
// Section) and --debug adds per-cell detail (Debug).
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is the most detailed kind of line that gets printed.
type Level int

const (
	LevelWarn Level = iota
	LevelInfo
	LevelDebug
)

var (
	mu    sync.Mutex
	level = LevelWarn
	out   io.Writer = os.Stderr
)

// SetLevel sets the output threshold.
func SetLevel(l Level) {
	mu.Lock()
	level = l
	mu.Unlock()
}

// Enabled reports whether lines at l are printed.
func Enabled(l Level) bool {
	mu.Lock()
	defer mu.Unlock()
	return l <= level
}

// SetOutput redirects log lines; tests use it to capture them.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

func emit(l Level, prefix, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if l > level {
		return
	}
	fmt.Fprintf(out, prefix+format+"\n", args...)
}

// Debug logs per-cell and per-file detail.
func Debug(format string, args ...any) { emit(LevelDebug, "[DEBUG] ", format, args) }

// Info logs a per-column decision.
func Info(format string, args ...any) { emit(LevelInfo, "[INFO] ", format, args) }

// Section opens the block of lines for one column.
func Section(column string) { emit(LevelInfo, "", "\n--- %s ---", []any{column}) }

func Warn(format string, args ...any) { emit(LevelWarn, "⚠ Warning: ", format, args) }
