// Package logging provides the leveled logger used by the bring-up
// sequence. Hardware step banners go through Info; register-level detail is
// Debug and off by default.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Level represents a logging severity.
type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) String() string {
	switch l {
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a string to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, nil
	case "info", "":
		return Info, nil
	case "warn", "warning":
		return Warn, nil
	case "error":
		return Error, nil
	default:
		return Level(0), fmt.Errorf("unsupported log level %q", s)
	}
}

// Logger is a leveled printf-style logger.
type Logger struct {
	level      Level
	underlying *log.Logger
}

// New constructs a Logger writing at or above the given level to out.
func New(level Level, out io.Writer) *Logger {
	return &Logger{level: level, underlying: log.New(out, "", log.LstdFlags)}
}

// Discard returns a logger that drops everything; handy default for
// library code when the caller passes nil.
func Discard() *Logger {
	return &Logger{level: Error + 1, underlying: log.New(io.Discard, "", 0)}
}

func (l *Logger) Debugf(format string, args ...any) { l.logf(Debug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.logf(Info, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.logf(Warn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.logf(Error, format, args...) }

func (l *Logger) logf(level Level, format string, args ...any) {
	if level < l.level {
		return
	}
	l.underlying.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}
