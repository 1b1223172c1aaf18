package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func ParseLevel(s string) (Level, error) {
	switch s {
	case "debug", "DEBUG":
		return DebugLevel, nil
	case "info", "INFO":
		return InfoLevel, nil
	case "warn", "WARN":
		return WarnLevel, nil
	case "error", "ERROR":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("unknown log level: %s", s)
	}
}

// Sink is a logging destination.
type Sink interface {
	Write(level Level, timestamp time.Time, message string) error
	Close() error
}

// ConsoleSink writes to stdout, warnings and errors to stderr.
type ConsoleSink struct {
	colorize bool
}

func NewConsoleSink(colorize bool) *ConsoleSink {
	return &ConsoleSink{colorize: colorize}
}

var levelColors = map[Level]string{
	DebugLevel: "\033[36m",
	InfoLevel:  "\033[32m",
	WarnLevel:  "\033[33m",
	ErrorLevel: "\033[31m",
}

func (s *ConsoleSink) Write(level Level, timestamp time.Time, message string) error {
	out := os.Stdout
	if level >= WarnLevel {
		out = os.Stderr
	}
	tag := level.String()
	if s.colorize {
		tag = levelColors[level] + tag + "\033[0m"
	}
	_, err := fmt.Fprintf(out, "[%s] %s: %s\n", timestamp.Format("15:04:05"), tag, message)
	return err
}

func (s *ConsoleSink) Close() error { return nil }

// FileSink appends to a log file.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
}

func NewFileSink(filename string) (*FileSink, error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &FileSink{file: file}, nil
}

func (s *FileSink) Write(level Level, timestamp time.Time, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.file, "[%s] %s: %s\n",
		timestamp.Format("2006-01-02 15:04:05"), level.String(), message)
	return err
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// Logger fans formatted messages out to its sinks, filtered by level.
type Logger struct {
	mu    sync.RWMutex
	level Level
	sinks []Sink
}

func New(sinks ...Sink) *Logger {
	if len(sinks) == 0 {
		sinks = []Sink{NewConsoleSink(true)}
	}
	return &Logger{level: InfoLevel, sinks: sinks}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if level < l.level {
		return
	}
	message := fmt.Sprintf(format, args...)
	now := time.Now()
	for _, sink := range l.sinks {
		// A broken sink must not take the build down with it.
		_ = sink.Write(level, now, message)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) { l.log(DebugLevel, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(InfoLevel, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WarnLevel, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ErrorLevel, format, args...) }

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var firstErr error
	for _, sink := range l.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var (
	defaultLogger *Logger
	defaultMu     sync.Mutex
)

// Initialize replaces the package-level logger.
func Initialize(sinks ...Sink) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = New(sinks...)
}

func Default() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultLogger == nil {
		defaultLogger = New()
	}
	return defaultLogger
}

func Debug(format string, args ...interface{}) { Default().Debug(format, args...) }
func Info(format string, args ...interface{})  { Default().Info(format, args...) }
func Warn(format string, args ...interface{})  { Default().Warn(format, args...) }
func Error(format string, args ...interface{}) { Default().Error(format, args...) }
func SetLevel(level Level)                     { Default().SetLevel(level) }
