// Package logger provides the leveled console logger used for diagnostics.
//
// All diagnostic output goes to a single writer (stderr in production) so
// the primary results stream on stdout is never polluted. The logger is
// thread-safe and colors level tags when the writer is a terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// ConsoleLogger writes timestamped, level-tagged diagnostic messages.
// Format: "[HH:MM:SS] [LEVEL] message".
type ConsoleLogger struct {
	writer   io.Writer
	level    int
	mu       sync.Mutex
	colorize bool
}

// New creates a ConsoleLogger writing to w at the given level. Valid levels
// are debug, info, warn and error (case-insensitive); anything else falls
// back to info. A nil writer discards all messages.
func New(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:   w,
		level:    parseLevel(level),
		colorize: isTerminal(w),
	}
}

// isTerminal reports whether w is a TTY that supports color. fatih/color's
// NoColor already accounts for the NO_COLOR convention.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Debugf logs a debug-level message.
func (l *ConsoleLogger) Debugf(format string, args ...any) {
	l.logf(levelDebug, "DEBUG", format, args...)
}

// Infof logs an info-level message.
func (l *ConsoleLogger) Infof(format string, args ...any) {
	l.logf(levelInfo, "INFO", format, args...)
}

// Warnf logs a warning-level message.
func (l *ConsoleLogger) Warnf(format string, args ...any) {
	l.logf(levelWarn, "WARN", format, args...)
}

// Errorf logs an error-level message.
func (l *ConsoleLogger) Errorf(format string, args ...any) {
	l.logf(levelError, "ERROR", format, args...)
}

func (l *ConsoleLogger) logf(level int, tag, format string, args ...any) {
	if l.writer == nil || level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := time.Now().Format("15:04:05")
	msg := fmt.Sprintf(format, args...)
	if l.colorize {
		tag = colorForTag(tag).Sprint(tag)
	}
	fmt.Fprintf(l.writer, "[%s] [%s] %s\n", ts, tag, msg)
}

func colorForTag(tag string) *color.Color {
	switch tag {
	case "DEBUG":
		return color.New(color.FgCyan)
	case "INFO":
		return color.New(color.FgBlue)
	case "WARN":
		return color.New(color.FgYellow)
	case "ERROR":
		return color.New(color.FgRed)
	default:
		return color.New(color.Reset)
	}
}
