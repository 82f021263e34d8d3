// Package logger writes diagnostics to a file under the memory directory.
// Hook processes must keep stdout clean for the host protocol, so nothing
// here ever writes to stdout.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Logger struct {
	component string
	debug     bool
	file      *os.File
	logger    *log.Logger
	logPath   string
	mu        sync.Mutex
	closeOnce sync.Once
}

// New opens an append-mode daily log file under dir. Multiple hook
// processes may append to the same file concurrently.
//
// If the directory or file cannot be created, it returns a fallback
// logger that writes to stderr along with the error, so callers always
// get a usable logger.
func New(dir, component string, debug bool) (*Logger, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		wrapped := fmt.Errorf("create log directory: %w", err)
		return newFallbackLogger(component, debug, wrapped), wrapped
	}

	name := fmt.Sprintf("hindsight-%s.log", time.Now().Format("2006-01-02"))
	logPath := filepath.Join(dir, name)

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		wrapped := fmt.Errorf("open log file: %w", err)
		return newFallbackLogger(component, debug, wrapped), wrapped
	}

	return &Logger{
		component: component,
		debug:     debug,
		file:      file,
		logger:    log.New(file, "", 0),
		logPath:   logPath,
	}, nil
}

func newFallbackLogger(component string, debug bool, err error) *Logger {
	l := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	l.Printf("WARNING: file logging unavailable: %v", err)

	return &Logger{
		component: component,
		debug:     debug,
		logger:    l,
	}
}

func (l *Logger) formatEntry(level, message string) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	return fmt.Sprintf("[%s] [%s] [%s] %s", timestamp, l.component, level, message)
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Println(l.formatEntry(level, fmt.Sprintf(format, v...)))
}

// Debugf logs only when debug mode is enabled in the settings.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if !l.debug {
		return
	}
	l.write("DEBUG", format, v...)
}

func (l *Logger) Infof(format string, v ...interface{}) {
	l.write("INFO", format, v...)
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	l.write("WARN", format, v...)
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write("ERROR", format, v...)
}

// LogPath returns the path of the active log file, empty in fallback mode.
func (l *Logger) LogPath() string {
	return l.logPath
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
