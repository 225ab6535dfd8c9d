package compiler

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarning
	LogLevelError
	LogLevelSilent
)

var levelNames = map[string]LogLevel{
	"debug":  LogLevelDebug,
	"info":   LogLevelInfo,
	"warn":   LogLevelWarning,
	"error":  LogLevelError,
	"silent": LogLevelSilent,
}

// ParseLogLevel maps a level name from configuration to a LogLevel.
func ParseLogLevel(name string) (LogLevel, error) {
	lvl, ok := levelNames[strings.ToLower(name)]
	if !ok {
		return 0, fmt.Errorf("unknown log level %q", name)
	}
	return lvl, nil
}

func (l LogLevel) tag() (string, string) {
	switch l {
	case LogLevelDebug:
		return "DEBUG", "\x1b[90m"
	case LogLevelInfo:
		return "INFO", "\x1b[36m"
	case LogLevelWarning:
		return "WARN", "\x1b[33m"
	}
	return "ERROR", "\x1b[31m"
}

// Logger provides centralized logging for the compiler
type Logger struct {
	mu         sync.Mutex
	prefix     string
	out        io.Writer
	level      LogLevel
	color      bool
	errorCount int
	warnCount  int
}

// NewLogger creates a logger writing to stderr with a custom prefix
func NewLogger(prefix string) *Logger {
	return NewLoggerTo(os.Stderr, prefix, LogLevelInfo, ColorAuto)
}

// NewLoggerTo creates a logger writing to out. Color escapes are only used
// when mode allows it and, for ColorAuto, out is a terminal.
func NewLoggerTo(out io.Writer, prefix string, level LogLevel, mode ColorMode) *Logger {
	return &Logger{
		prefix: prefix,
		out:    out,
		level:  level,
		color:  useColor(out, mode),
	}
}

func useColor(out io.Writer, mode ColorMode) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, format, args...)
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch level {
	case LogLevelWarning:
		l.warnCount++
	case LogLevelError:
		l.errorCount++
	}
	if level < l.level {
		return
	}

	levelStr, esc := level.tag()
	if l.color {
		levelStr = esc + levelStr + "\x1b[0m"
	}
	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.out, "%s [%s] %s\n", l.prefix, levelStr, message)
}

// HasErrors returns true if any errors were logged
func (l *Logger) HasErrors() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorCount > 0
}

// ErrorCount returns the number of errors logged
func (l *Logger) ErrorCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.errorCount
}

// WarningCount returns the number of warnings logged
func (l *Logger) WarningCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warnCount
}

// Reset resets all counters
func (l *Logger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorCount = 0
	l.warnCount = 0
}

// PrintSummary prints a summary of logged messages
func (l *Logger) PrintSummary() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.errorCount > 0 || l.warnCount > 0 {
		fmt.Fprintf(l.out, "\n%s Compilation Summary:\n", l.prefix)
		if l.errorCount > 0 {
			fmt.Fprintf(l.out, "  Errors: %d\n", l.errorCount)
		}
		if l.warnCount > 0 {
			fmt.Fprintf(l.out, "  Warnings: %d\n", l.warnCount)
		}
	}
}
