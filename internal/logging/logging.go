package logging

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

var (
	currentLevel LogLevel
	levelOnce    sync.Once
)

// initLevel initializes the log level from environment variables
func initLevel() {
	levelOnce.Do(func() {
		// DEBUG=true forces debug logging regardless of LOG_LEVEL
		if debug := os.Getenv("DEBUG"); debug != "" {
			switch strings.ToLower(debug) {
			case "1", "true", "yes", "on":
				currentLevel = LevelDebug
				return
			}
		}

		switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
		case "debug":
			currentLevel = LevelDebug
		case "info":
			currentLevel = LevelInfo
		case "warn", "warning":
			currentLevel = LevelWarn
		case "error":
			currentLevel = LevelError
		default:
			currentLevel = LevelInfo
		}
	})
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	return currentLevel
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

// Logger writes level-filtered messages tagged with a component name,
// so interleaved output from the scanner, watcher and catalog can be
// told apart.
type Logger struct {
	tag string
}

// ForComponent returns a Logger whose lines carry the component name:
// "[INFO] [scanner] ...".
func ForComponent(name string) *Logger {
	return &Logger{tag: "[" + name + "] "}
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func (l *Logger) Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		log.Printf("[DEBUG] "+l.tag+format, args...)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		log.Printf("[INFO] "+l.tag+format, args...)
	}
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		log.Printf("[WARN] "+l.tag+format, args...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		log.Printf("[ERROR] "+l.tag+format, args...)
	}
}

// Fatal logs an error message and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	log.Fatalf("[FATAL] "+l.tag+format, args...)
}

// root serves the untagged package-level functions used by main and the
// HTTP layer.
var root = &Logger{}

// Debug logs an untagged debug message.
func Debug(format string, args ...interface{}) { root.Debug(format, args...) }

// Info logs an untagged info message.
func Info(format string, args ...interface{}) { root.Info(format, args...) }

// Warn logs an untagged warning message.
func Warn(format string, args ...interface{}) { root.Warn(format, args...) }

// Error logs an untagged error message.
func Error(format string, args ...interface{}) { root.Error(format, args...) }

// Fatal logs an untagged error message and exits.
func Fatal(format string, args ...interface{}) { root.Fatal(format, args...) }

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
