// Package logging provides file-based logging for crewboard.
// Every entry goes to .git/crewboard/logs/crewboard.log; entries that carry a
// task key are also appended to .git/crewboard/logs/task-<display id>.log.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/runoshun/crewboard/internal/domain"
)

// Ensure Logger implements domain.Logger interface.
var _ domain.Logger = (*Logger)(nil)

// Attribute keys understood by the line handler.
const (
	attrTask     = "task"
	attrCategory = "category"
)

// globalKey names the global log in the file table.
const globalKey = ""

// Logger routes domain log calls through log/slog into per-task log files.
// Fields are ordered to minimize memory padding.
type Logger struct {
	slog    *slog.Logger
	files   map[string]*os.File // keyed by task key; globalKey is the global log
	dataDir string
	mu      sync.Mutex
	level   slog.Level
}

// New creates a new Logger that writes to the data directory.
// If dataDir is empty, logging is disabled.
func New(dataDir string, level slog.Level) *Logger {
	l := &Logger{
		dataDir: dataDir,
		level:   level,
		files:   make(map[string]*os.File),
	}
	l.slog = slog.New(&lineHandler{logger: l})
	return l
}

// Slog returns the underlying slog.Logger. Records logged through it may set
// the "task" and "category" attributes.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// ParseLevel parses a log level string into slog.Level.
// Unknown values fall back to info.
func ParseLevel(levelStr string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(levelStr))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Debug logs a debug message.
func (l *Logger) Debug(taskKey, category, msg string) {
	l.emit(slog.LevelDebug, taskKey, category, msg)
}

// Info logs an info message.
func (l *Logger) Info(taskKey, category, msg string) {
	l.emit(slog.LevelInfo, taskKey, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(taskKey, category, msg string) {
	l.emit(slog.LevelWarn, taskKey, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(taskKey, category, msg string) {
	l.emit(slog.LevelError, taskKey, category, msg)
}

func (l *Logger) emit(level slog.Level, taskKey, category, msg string) {
	l.slog.LogAttrs(context.Background(), level, msg,
		slog.String(attrTask, taskKey),
		slog.String(attrCategory, category),
	)
}

// Close closes all open log files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for key, f := range l.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.files, key)
	}
	return lastErr
}

// write appends line to the global log and, for a task entry, to the task log.
// Files that cannot be opened are skipped; logging never fails a command.
func (l *Logger) write(taskKey, line string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if f, err := l.file(globalKey); err == nil {
		_, _ = io.WriteString(f, line)
	}
	if taskKey == "" {
		return
	}
	if f, err := l.file(taskKey); err == nil {
		_, _ = io.WriteString(f, line)
	}
}

// file returns the open log file for key. Callers hold l.mu.
func (l *Logger) file(key string) (*os.File, error) {
	if f, ok := l.files[key]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Join(l.dataDir, "logs"), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}

	path := domain.GlobalLogPath(l.dataDir)
	if key != globalKey {
		path = domain.TaskLogPath(l.dataDir, key)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.files[key] = f
	return f, nil
}

// lineHandler is a slog.Handler that renders one line per record:
// [2025-12-30 09:32:51] [INFO] [WRK-1] [category] message
type lineHandler struct {
	logger   *Logger
	task     string
	category string
	extra    []slog.Attr
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.dataDir != "" && level >= h.logger.level
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	task, category := h.task, h.category
	extra := slices.Clip(h.extra)
	r.Attrs(func(a slog.Attr) bool {
		switch a.Key {
		case attrTask:
			task = a.Value.String()
		case attrCategory:
			category = a.Value.String()
		default:
			extra = append(extra, a)
		}
		return true
	})

	var b strings.Builder
	taskStr := task
	if taskStr == "" {
		taskStr = "global"
	}
	fmt.Fprintf(&b, "[%s] [%s] [%s] [%s] %s",
		r.Time.Format("2006-01-02 15:04:05"), r.Level, taskStr, category, r.Message)
	for _, a := range extra {
		fmt.Fprintf(&b, " %s=%s", a.Key, a.Value)
	}
	b.WriteByte('\n')

	h.logger.write(task, b.String())
	return nil
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.extra = append([]slog.Attr(nil), h.extra...)
	for _, a := range attrs {
		switch a.Key {
		case attrTask:
			next.task = a.Value.String()
		case attrCategory:
			next.category = a.Value.String()
		default:
			next.extra = append(next.extra, a)
		}
	}
	return &next
}

// WithGroup is not supported; attributes stay flat.
func (h *lineHandler) WithGroup(_ string) slog.Handler {
	return h
}
