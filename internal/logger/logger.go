// Package logger holds the process-wide structured logger. Log records never
// share a stream with traversal output: they go to stderr, a named file, or
// a dated file under the log directory.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

// L is the global logger instance. It discards all output until Init enables it.
var L = slog.New(slog.DiscardHandler)

var logFile *os.File

const (
	logPrefix     = "regwalk-"
	logSuffix     = ".log"
	retentionDays = 30
)

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	Level   slog.Level // Minimum log level
	File    string     // Explicit log file; "~" is expanded
	LogDir  string     // Directory for dated log files when File is empty and ToDir is set
	ToDir   bool       // Write dated files under LogDir (default ~/.regwalk/logs)
	Stderr  io.Writer  // Destination when neither File nor ToDir is set. Default: os.Stderr
}

// Init configures logging. Call before any log calls. Calling it again
// replaces the previous configuration and closes a previously opened file.
func Init(opts Options) error {
	_ = Close()
	if !opts.Enabled {
		L = slog.New(slog.DiscardHandler)
		return nil
	}
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}

	switch {
	case opts.File != "":
		path, err := homedir.Expand(opts.File)
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = f
		L = slog.New(slog.NewJSONHandler(f, handlerOpts))
	case opts.ToDir:
		dir := opts.LogDir
		if dir == "" {
			home, err := homedir.Dir()
			if err != nil {
				return err
			}
			dir = filepath.Join(home, ".regwalk", "logs")
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		cleanOldLogs(dir, time.Now())
		name := filepath.Join(dir, logPrefix+time.Now().Format("2006-01-02")+logSuffix)
		f, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		logFile = f
		L = slog.New(slog.NewJSONHandler(f, handlerOpts))
	default:
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		L = slog.New(slog.NewTextHandler(w, handlerOpts))
	}
	return nil
}

// Close closes the log file opened by Init, if any, and resets L to discard.
func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	L = slog.New(slog.DiscardHandler)
	return err
}

// ParseLevel maps a level name (debug, info, warn, error) to a slog.Level.
// The empty string means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", s)
	}
	return level, nil
}

// cleanOldLogs removes dated log files older than retentionDays.
func cleanOldLogs(dir string, now time.Time) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, logPrefix) || !strings.HasSuffix(name, logSuffix) {
			continue
		}
		// regwalk-2024-01-05.log
		dateStr := strings.TrimPrefix(strings.TrimSuffix(name, logSuffix), logPrefix)
		logDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}
		if logDate.Before(cutoff) {
			os.Remove(filepath.Join(dir, name))
		}
	}
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }
