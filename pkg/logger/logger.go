// Package logger provides the levelled logger used by the FHIR client and CLI.
//
// A line carries the time, the level, the message and any fields attached
// with With:
//
//	14:02:11.508 WARN  http: failed after 12ms: 503 Service Unavailable op=read request_id=5f0c...
//
// Loggers derived with With share the level and output of their parent.
package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Level represents the logging level.
type Level int

// Log levels.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelNone
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return ""
	}
}

// ParseLevel parses a level name such as "debug" or "WARN". "off" and
// "none" disable logging.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "none", "off":
		return LevelNone, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Field is a key/value pair appended to every line of a logger.
type Field struct {
	Key   string
	Value any
}

type sink struct {
	mu     sync.Mutex
	level  Level
	output io.Writer
}

// Logger writes levelled lines to an output.
type Logger struct {
	sink   *sink
	fields []Field
}

var defaultLogger = New(os.Stderr, LevelWarn)

// Default returns the default logger.
func Default() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}

// New creates a new logger.
func New(output io.Writer, level Level) *Logger {
	return &Logger{sink: &sink{level: level, output: output}}
}

// With returns a logger that appends key=value to every line. The parent
// is not modified.
func (l *Logger) With(key string, value any) *Logger {
	fields := make([]Field, len(l.fields), len(l.fields)+1)
	copy(fields, l.fields)
	return &Logger{sink: l.sink, fields: append(fields, Field{Key: key, Value: value})}
}

// Fields returns the fields attached with With, oldest first.
func (l *Logger) Fields() []Field {
	return append([]Field(nil), l.fields...)
}

// SetLevel sets the logging level.
func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return level >= l.Level() && level != LevelNone
}

func (l *Logger) log(level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("15:04:05.000"))
	fmt.Fprintf(&b, " %-5s ", level)
	fmt.Fprintf(&b, format, args...)
	for _, f := range l.fields {
		b.WriteByte(' ')
		b.WriteString(f.Key)
		b.WriteByte('=')
		b.WriteString(formatValue(f.Value))
	}
	b.WriteByte('\n')

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	_, _ = io.WriteString(l.sink.output, b.String())
}

// formatValue quotes values that would otherwise break the key=value layout.
func formatValue(v any) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...any) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.log(LevelError, format, args...)
}
