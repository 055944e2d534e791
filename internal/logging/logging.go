// Package logging is a levelled wrapper over the standard logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Level represents logging severity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var (
	mu           sync.RWMutex
	currentLevel = LevelWarn
	logFile      *os.File
	console      = true
)

func init() {
	log.SetFlags(log.LstdFlags | log.Lmsgprefix)
}

// SetVerbosity maps a count of -v flags to a level (0 warn, 1 info, 2+ debug).
func SetVerbosity(count int) {
	level := LevelWarn
	switch {
	case count <= 0:
		level = LevelWarn
	case count == 1:
		level = LevelInfo
	default:
		level = LevelDebug
	}
	SetLevel(level)
}

// SetLevel sets the minimum level that is written.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	currentLevel = level
}

// CurrentLevel returns the active level.
func CurrentLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// ParseLevel converts a level name to a Level.
func ParseLevel(value string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	default:
		return LevelWarn, fmt.Errorf("unknown log level %q", value)
	}
}

func (level Level) String() string {
	switch level {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// SetOutput appends log lines to path in addition to the console.
// An empty path restores console-only output.
func SetOutput(path string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	if strings.TrimSpace(path) != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			applyWriterLocked()
			return fmt.Errorf("create log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			applyWriterLocked()
			return fmt.Errorf("open log file: %w", err)
		}
		logFile = file
	}
	applyWriterLocked()
	return nil
}

// SetConsole toggles writing to stderr. Full-screen terminal UIs turn it off.
func SetConsole(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	console = enabled
	applyWriterLocked()
}

func applyWriterLocked() {
	writers := make([]io.Writer, 0, 2)
	if console {
		writers = append(writers, os.Stderr)
	}
	if logFile != nil {
		writers = append(writers, logFile)
	}
	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
}

// Close releases the log file, if any.
func Close() error {
	return SetOutput("")
}

func logf(level Level, prefix, format string, args ...any) {
	if level > CurrentLevel() {
		return
	}
	log.Printf("[%s] %s", prefix, fmt.Sprintf(format, args...))
}

// Errorf logs at error level.
func Errorf(format string, args ...any) {
	logf(LevelError, "ERR", format, args...)
}

func Warnf(format string, args ...any) {
	logf(LevelWarn, "WARN", format, args...)
}

func Infof(format string, args ...any) {
	logf(LevelInfo, "INFO", format, args...)
}

func Debugf(format string, args ...any) {
	logf(LevelDebug, "DBG", format, args...)
}
