// Package logging provides config-driven categorized file-based logging for
// pddl-solver. Logs are written to .pddl-solver/logs/ with one file per
// category. Logging is a silent no-op until Initialize is called with debug
// mode enabled; callers that never initialize it pay only the cost of a map
// lookup per call.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category names a logical subsystem within the planner.
type Category string

const (
	CategoryBoot      Category = "boot"
	CategoryGrounder  Category = "grounder"
	CategoryRPG       Category = "rpg"
	CategoryLandmarks Category = "landmarks"
	CategorySearch    Category = "search"
	CategorySAT       Category = "sat"
	CategoryCLI       Category = "cli"
	CategoryQuery     Category = "query"
)

// Logger wraps a standard library logger scoped to one category.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	debugMode bool
	runID     string
)

// Initialize sets up the logging directory under workspace/.pddl-solver/logs.
// It is a no-op (returns nil, leaves logging disabled) unless debug is true.
func Initialize(workspace string, debug bool, id string) error {
	debugMode = debug
	runID = id
	if !debug {
		return nil
	}
	if workspace == "" {
		var err error
		workspace, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("logging: resolve workspace: %w", err)
		}
	}
	logsDir = filepath.Join(workspace, ".pddl-solver", "logs")
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("logging: create log directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== pddl-solver logging initialized (run %s) ===", runID)
	boot.Info("logs directory: %s", logsDir)
	return nil
}

// Get returns (or lazily creates) the logger for category. When logging is
// disabled it returns a no-op logger whose methods do nothing.
func Get(category Category) *Logger {
	if !debugMode || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open %s: %v\n", path, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) { l.printf("DEBUG", format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.printf("INFO", format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.printf("WARN", format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.printf("ERROR", format, args...) }

func (l *Logger) printf(level, format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if runID != "" {
		l.logger.Printf("[%s] [%s] %s", level, runID, msg)
		return
	}
	l.logger.Printf("[%s] %s", level, msg)
}

// CloseAll flushes and closes every category's log file. Call once at
// process exit.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			_ = l.file.Close()
		}
		delete(loggers, cat)
	}
}
