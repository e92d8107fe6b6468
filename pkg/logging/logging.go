package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
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
		return "UNKNOWN"
	}
}

func (l LogLevel) ZerologLevel() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// ParseLevel maps a config string to a LogLevel, defaulting to info
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu            sync.RWMutex
	defaultLogger = newLogger(LevelInfo, zerolog.ConsoleWriter{Out: os.Stderr})
	logFile       *os.File
)

func newLogger(level LogLevel, output io.Writer) zerolog.Logger {
	return zerolog.New(output).With().Timestamp().Logger().Level(level.ZerologLevel())
}

// Init points the package logger at output. Entries are JSON lines.
func Init(level LogLevel, output io.Writer) {
	logger := newLogger(level, output)
	mu.Lock()
	defaultLogger = logger
	mu.Unlock()
}

// InitFile logs to path, creating its directory. The terminal belongs to
// the TUI while it runs, so this is the mode the application uses.
func InitFile(level LogLevel, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	mu.Lock()
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	defaultLogger = newLogger(level, f)
	mu.Unlock()
	return nil
}

// Close releases the log file opened by InitFile, if any, and goes back to
// the console.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		logFile.Close()
		logFile = nil
		defaultLogger = newLogger(LevelInfo, zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func logInternal(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	mu.RLock()
	logger := defaultLogger
	mu.RUnlock()

	event := logger.WithLevel(level.ZerologLevel())
	if event == nil {
		return
	}
	event = event.Str("subsystem", subsystem)
	if err != nil {
		event = event.Err(err)
	}
	if len(args) > 0 {
		event.Msgf(messageFmt, args...)
		return
	}
	event.Msg(messageFmt)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}
