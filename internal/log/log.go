package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level is the minimum severity a Logger writes
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

// String returns the lowercase level name
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "silent", "off", "none":
		return LevelSilent, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level: %s", s)
	}
}

// Logger writes colored, leveled messages to a writer.
// A nil *Logger is valid and discards everything, so components can accept
// an optional logger without nil checks.
type Logger struct {
	mu    sync.Mutex
	out   io.Writer
	level Level
}

// New creates a Logger writing to w at the given level
func New(w io.Writer, level Level) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{out: w, level: level}
}

// Discard returns a Logger that drops all messages
func Discard() *Logger {
	return New(io.Discard, LevelSilent)
}

// Level returns the configured level
func (l *Logger) Level() Level {
	if l == nil {
		return LevelSilent
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetLevel changes the minimum level
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// IsDebug reports whether debug messages are written
func (l *Logger) IsDebug() bool {
	return l.Level() <= LevelDebug
}

func (l *Logger) printf(level Level, c *color.Color, prefix, format string, args ...interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level {
		return
	}
	if c == nil {
		fmt.Fprintf(l.out, prefix+format+"\n", args...)
		return
	}
	c.Fprintf(l.out, prefix+format+"\n", args...)
}

// Debug prints debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.printf(LevelDebug, color.New(color.FgHiBlack), "[DEBUG] ", format, args...)
}

// Info prints informational messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.printf(LevelInfo, nil, "", format, args...)
}

// Warn prints warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.printf(LevelWarn, color.New(color.FgYellow), "Warning: ", format, args...)
}

// Error prints error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.printf(LevelError, color.New(color.FgRed), "Error: ", format, args...)
}

// DebugConfig prints a value as indented JSON in debug mode
func (l *Logger) DebugConfig(label string, v interface{}) {
	if !l.IsDebug() {
		return
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		l.Debug("%s: (failed to serialize: %v)", label, err)
		return
	}
	l.Debug("%s:\n%s", label, string(data))
}

// DebugTokenUsage logs token usage in debug mode
func (l *Logger) DebugTokenUsage(promptTokens, completionTokens, totalTokens int) {
	l.printf(LevelDebug, color.New(color.FgMagenta), "[DEBUG] ", "Token Usage: prompt=%d, completion=%d, total=%d",
		promptTokens, completionTokens, totalTokens)
}

// DebugDuration logs execution duration in debug mode
func (l *Logger) DebugDuration(operation string, duration time.Duration) {
	l.printf(LevelDebug, color.New(color.FgBlue), "[DEBUG] ", "%s took %v", operation, duration)
}

var std = New(os.Stderr, LevelInfo)

// Default returns the process-wide logger used by the CLI
func Default() *Logger {
	return std
}

// SetDebugMode enables or disables debug output on the default logger
func SetDebugMode(enabled bool) {
	if enabled {
		std.SetLevel(LevelDebug)
		return
	}
	if std.Level() == LevelDebug {
		std.SetLevel(LevelInfo)
	}
}

// IsDebugMode returns whether debug mode is enabled on the default logger
func IsDebugMode() bool {
	return std.IsDebug()
}

// SetOutput sets the output writer of the default logger
func SetOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	std.mu.Lock()
	std.out = w
	std.mu.Unlock()
}

// Debug prints debug messages on the default logger
func Debug(format string, args ...interface{}) {
	std.Debug(format, args...)
}

// Info prints informational messages on the default logger
func Info(format string, args ...interface{}) {
	std.Info(format, args...)
}

// Warn prints warning messages on the default logger
func Warn(format string, args ...interface{}) {
	std.Warn(format, args...)
}

// Error prints error messages on the default logger
func Error(format string, args ...interface{}) {
	std.Error(format, args...)
}
