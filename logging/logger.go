// Package logging - Leveled logging for benchmark runs.
package logging

import "strings"

// Level represents the severity level of a log message.
type Level int

const (
	// LevelDebug is for per-stage runner details.
	LevelDebug Level = iota
	// LevelInfo is for run-level progress.
	LevelInfo
	// LevelWarn is for recoverable problems.
	LevelWarn
	// LevelError is for failures that end a run.
	LevelError
	// LevelQuiet suppresses all output.
	LevelQuiet
)

// String returns the string representation of the log level.
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
	case LevelQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseLevel parses a level name. Unknown names fall back to LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "quiet":
		return LevelQuiet
	default:
		return LevelInfo
	}
}

// Logger abstracts logging so the runner never depends on a concrete sink.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	// WithComponent returns a Logger that prefixes messages with the component
	// name, e.g. "[ort]".
	WithComponent(component string) Logger
}
