package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// Console writes log lines to stdout (debug, info) and stderr (warn, error).
type Console struct {
	level     Level
	component string
	color     bool
	out       io.Writer
	err       io.Writer
	// mu is shared by every component copy of the logger.
	mu *sync.Mutex
}

// NewConsole creates a console logger. Color is enabled when stderr is a
// terminal, since that is where progress and diagnostics end up.
func NewConsole(level Level) *Console {
	return &Console{
		level: level,
		color: isTerminal(os.Stderr),
		out:   os.Stdout,
		err:   os.Stderr,
		mu:    &sync.Mutex{},
	}
}

// NewWriterConsole creates a console logger writing every level to w. Color
// is enabled only when w is a terminal.
func NewWriterConsole(level Level, w io.Writer) *Console {
	return &Console{level: level, color: isTerminal(w), out: w, err: w, mu: &sync.Mutex{}}
}

// WithColor returns a copy of the logger with color forced on or off.
func (l *Console) WithColor(on bool) *Console {
	c := *l
	c.color = on
	return &c
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Debug logs a debug message.
func (l *Console) Debug(msg string, args ...interface{}) {
	l.log(LevelDebug, msg, args...)
}

// Info logs an informational message.
func (l *Console) Info(msg string, args ...interface{}) {
	l.log(LevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Console) Warn(msg string, args ...interface{}) {
	l.log(LevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Console) Error(msg string, args ...interface{}) {
	l.log(LevelError, msg, args...)
}

// WithComponent returns a copy of the logger bound to component.
func (l *Console) WithComponent(component string) Logger {
	c := *l
	c.component = component
	return &c
}

func (l *Console) log(level Level, msg string, args ...interface{}) {
	if level < l.level || l.level == LevelQuiet {
		return
	}

	line := msg
	if len(args) > 0 {
		line = fmt.Sprintf(msg, args...)
	}

	if l.component != "" {
		if l.color {
			line = fmt.Sprintf("%s[%s]%s %s", colorCyan, l.component, colorReset, line)
		} else {
			line = fmt.Sprintf("[%s] %s", l.component, line)
		}
	}

	if l.color {
		switch level {
		case LevelDebug:
			line = colorGray + line + colorReset
		case LevelWarn:
			line = colorYellow + line + colorReset
		case LevelError:
			line = colorRed + line + colorReset
		}
	}

	w := l.out
	if level >= LevelWarn {
		w = l.err
	}
	l.mu.Lock()
	fmt.Fprintln(w, line)
	l.mu.Unlock()
}
