// Package log provides structured logging for toolasset.
// Entries carry a level, a category and key=value fields, and logging is
// conditionally enabled via --debug, log.debug in the config, or TOOLASSET_DEBUG.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

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
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatDB       Category = "db"       // Database and migrations
	CatConfig   Category = "config"   // Configuration loading/saving
	CatParts    Category = "parts"    // Part registry
	CatAssembly Category = "assembly" // Assembly composer
	CatTooling  Category = "tooling"  // Tooling list manager
	CatAudit    Category = "audit"    // Operation log writes
	CatWeb      Category = "web"      // HTTP front end
	CatCache    Category = "cache"    // cache operations
	CatTrace    Category = "trace"    // Tracing provider lifecycle
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	file     *os.File
	writers  []io.Writer
	enabled  bool
	minLevel Level
}

var (
	defaultLogger *Logger
	mu            sync.Mutex
)

// Init initializes the global logger writing to path. Extra writers (stderr
// under `serve`) receive the same lines.
// Returns a cleanup function to close the log file.
func Init(path string, extra ...io.Writer) (func(), error) {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec // G304: path comes from user config
	if err != nil {
		return nil, err
	}

	defaultLogger = &Logger{
		file:     f,
		writers:  append([]io.Writer{f}, extra...),
		enabled:  true,
		minLevel: LevelDebug,
	}

	return func() {
		mu.Lock()
		defer mu.Unlock()
		if defaultLogger != nil && defaultLogger.file != nil {
			_ = defaultLogger.file.Close()
			defaultLogger = nil
		}
	}, nil
}

// InitWriter initializes the global logger on an arbitrary writer.
// Used by tests and by `serve` when no log file is configured.
func InitWriter(w io.Writer, minLevel Level) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = &Logger{
		writers:  []io.Writer{w},
		enabled:  true,
		minLevel: minLevel,
	}
}

// Reset drops the global logger. Logging becomes a no-op until the next Init.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = nil
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func current() *Logger {
	mu.Lock()
	defer mu.Unlock()
	return defaultLogger
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel {
		return
	}

	// Format: 2025-12-06T10:45:00 [ERROR] [parts] message key=value key2=value2
	timestamp := time.Now().Format("2006-01-02T15:04:05")
	entry := fmt.Sprintf("%s [%s] [%s] %s", timestamp, level, cat, msg)

	for i := 0; i+1 < len(fields); i += 2 {
		entry += fmt.Sprintf(" %v=%v", fields[i], fields[i+1])
	}
	// Handle odd field count - append orphan key with no value
	if len(fields)%2 != 0 {
		entry += fmt.Sprintf(" %v=<missing>", fields[len(fields)-1])
	}
	entry += "\n"

	for _, w := range l.writers {
		_, _ = w.Write([]byte(entry))
	}
}
