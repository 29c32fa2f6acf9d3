package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TimeLayout is the timestamp format of every log line.
const TimeLayout = "2006-01-02 15:04:05"

type implLogger struct {
	mu    sync.Mutex
	out   io.Writer
	level string
	now   func() time.Time
}

// New creates a Logger writing to stdout.
func New(level string) Logger {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter creates a Logger writing lines to w.
func NewWithWriter(level string, w io.Writer) Logger {
	return &implLogger{
		out:   w,
		level: strings.ToLower(level),
		now:   time.Now,
	}
}

// Open creates a Logger that appends to the file at path and mirrors every
// line to stdout. The returned closer releases the file.
func Open(level, path string) (Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return NewWithWriter(level, io.MultiWriter(f, os.Stdout)), f, nil
}

var levels = map[string]int{
	"debug": 0,
	"info":  1,
	"warn":  2,
	"error": 3,
}

func (l *implLogger) shouldLog(level string) bool {
	currentLevel, ok := levels[l.level]
	if !ok {
		currentLevel = 1 // default to info
	}

	targetLevel, ok := levels[level]
	if !ok {
		return true
	}

	return targetLevel >= currentLevel
}

// write emits "[2006-01-02 15:04:05] [LEVEL] message" as a single line.
func (l *implLogger) write(tag, msg string, args ...interface{}) {
	text := msg
	if len(args) > 0 {
		text = fmt.Sprintf(msg, args...)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	line := "[" + l.now().Format(TimeLayout) + "] [" + tag + "] " + text + "\n"
	_, _ = io.WriteString(l.out, line)
}

func (l *implLogger) Debug(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("debug") {
		l.write("DEBUG", msg, args...)
	}
}

func (l *implLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("info") {
		l.write("INFO", msg, args...)
	}
}

func (l *implLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("warn") {
		l.write("WARN", msg, args...)
	}
}

func (l *implLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.shouldLog("error") {
		l.write("ERROR", msg, args...)
	}
}

// Discard returns a Logger that drops everything.
func Discard() Logger {
	return NewWithWriter("error", io.Discard)
}
