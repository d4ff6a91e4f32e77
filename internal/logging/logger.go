package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

// Level names as they appear in the level= field.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// FileName is the log file inside the data directory.
const FileName = "couchsplit.log"

const timeLayout = "2006-01-02 15:04:05"

// Logger writes leveled key=value lines. Loggers derived with the With*
// methods share the parent's output; closing any of them closes it.
// It is safe for concurrent use.
type Logger struct {
	slog *slog.Logger
	out  *sink
}

type sink struct {
	mu sync.Mutex
	w  *RotatingWriter
}

func (s *sink) close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return nil
	}
	err := s.w.Close()
	s.w = nil
	return err
}

// NewLogger opens {dataDir}/couchsplit.log for appending, rotating it when
// it grows past the default size. Lines look like:
//
//	time="2025-03-01 18:22:10" level=INFO msg="script loaded" script=splitscreen
//
// An empty dataDir logs to stderr instead.
func NewLogger(dataDir, level string) (*Logger, error) {
	if dataDir == "" {
		return NewWriterLogger(os.Stderr, level), nil
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	w, err := NewRotatingWriter(filepath.Join(dataDir, FileName), DefaultRotationConfig())
	if err != nil {
		return nil, err
	}
	l := NewWriterLogger(w, level)
	l.out = &sink{w: w}
	return l, nil
}

// NewWriterLogger logs to w. Close leaves w open.
func NewWriterLogger(w io.Writer, level string) *Logger {
	opts := &slog.HandlerOptions{
		Level: levelOf(level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.String(slog.TimeKey, a.Value.Time().Format(timeLayout))
			}
			return a
		},
	}
	return &Logger{slog: slog.New(slog.NewTextHandler(w, opts))}
}

// NopLogger discards everything.
func NopLogger() *Logger {
	return &Logger{slog: slog.New(slog.DiscardHandler)}
}

// levelOf maps a case-insensitive level name to a slog level, INFO when
// unknown.
func levelOf(name string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	if !slices.Contains([]slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}, l) {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel normalizes a level name to one of the Level constants.
func ParseLevel(name string) string {
	return levelOf(name).String()
}

func (l *Logger) derive(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...), out: l.out}
}

// WithSession tags lines with the session id.
func (l *Logger) WithSession(id string) *Logger { return l.derive("session_id", id) }

// WithGame tags lines with the game id.
func (l *Logger) WithGame(id string) *Logger { return l.derive("game", id) }

// WithPlayer tags lines with a 0-based slot index.
func (l *Logger) WithPlayer(index int) *Logger { return l.derive("player", index) }

// WithComponent tags lines with the emitting subsystem.
func (l *Logger) WithComponent(name string) *Logger { return l.derive("component", name) }

// With adds key/value pairs. Pairs whose key is not a string are dropped.
func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}
	kept := make([]any, 0, len(args))
	for i := 0; i+1 < len(args); i += 2 {
		if _, ok := args[i].(string); ok {
			kept = append(kept, args[i], args[i+1])
		}
	}
	return l.derive(kept...)
}

func (l *Logger) Debug(msg string, args ...any) { l.slog.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.slog.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.slog.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.slog.Error(msg, args...) }

// Close flushes and closes the log file, if there is one.
func (l *Logger) Close() error {
	return l.out.close()
}
