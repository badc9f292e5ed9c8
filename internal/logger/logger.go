// Package logger wraps zerolog behind the small convenience surface
// the rest of this repository expects: a logger tagged per component,
// with Debug/Info/Warn/Error and formatted variants, plus an in-memory
// ring buffer of recent entries for an external status reader to page
// through. The public API shape follows the project's original
// hand-rolled logger; the backing implementation is zerolog, the way
// bsv-blockchain-teranode's util.ZLoggerWrapper wraps it.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
)

// LogEntry is a single buffered, component-tagged log line.
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
}

// Logger is a zerolog.Logger with a component tag and a bounded
// ring buffer of recent entries.
type Logger struct {
	base      zerolog.Logger
	component string

	entries   []LogEntry
	entriesMu sync.RWMutex
	maxBuffer int

	// OnNewEntry, when set, is invoked after every buffered entry —
	// e.g. to push a line to a TUI.
	OnNewEntry func(LogEntry)
}

// New builds a root Logger writing to stdout (colorized when the
// terminal supports it), filtered at level.
func New(level string) *Logger {
	return newWithWriter(colorable.NewColorableStdout(), level, "")
}

func newWithWriter(w io.Writer, level, component string) *Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	base := zerolog.New(w).With().Timestamp().Logger().Level(parseLevel(level))
	return &Logger{
		base:      base,
		component: component,
		entries:   make([]LogEntry, 0, 1000),
		maxBuffer: 1000,
	}
}

func parseLevel(s string) zerolog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// SetLevel adjusts the minimum level logged.
func (l *Logger) SetLevel(level string) {
	l.base = l.base.Level(parseLevel(level))
}

// For returns a Logger tagged with component, sharing this Logger's
// buffer and backing writer.
func (l *Logger) For(component string) *Logger {
	return &Logger{
		base:       l.base,
		component:  component,
		entries:    l.entries,
		maxBuffer:  l.maxBuffer,
		OnNewEntry: l.OnNewEntry,
	}
}

func (l *Logger) record(levelName, component, msg string) {
	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339),
		Level:     levelName,
		Component: component,
		Message:   msg,
	}
	l.entriesMu.Lock()
	if len(l.entries) >= l.maxBuffer {
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)
	l.entriesMu.Unlock()

	if l.OnNewEntry != nil {
		l.OnNewEntry(entry)
	}
}

func (l *Logger) Debug(component, msg string) {
	l.base.Debug().Str("component", component).Msg(msg)
	l.record("debug", component, msg)
}
func (l *Logger) Info(component, msg string) {
	l.base.Info().Str("component", component).Msg(msg)
	l.record("info", component, msg)
}
func (l *Logger) Warn(component, msg string) {
	l.base.Warn().Str("component", component).Msg(msg)
	l.record("warn", component, msg)
}
func (l *Logger) Error(component, msg string) {
	l.base.Error().Str("component", component).Msg(msg)
	l.record("error", component, msg)
}

func (l *Logger) Debugf(component, format string, a ...any) { l.Debug(component, fmt.Sprintf(format, a...)) }
func (l *Logger) Infof(component, format string, a ...any)  { l.Info(component, fmt.Sprintf(format, a...)) }
func (l *Logger) Warnf(component, format string, a ...any)  { l.Warn(component, fmt.Sprintf(format, a...)) }
func (l *Logger) Errorf(component, format string, a ...any) { l.Error(component, fmt.Sprintf(format, a...)) }

// GetEntries returns the most recent count buffered entries (all of
// them if count <= 0 or exceeds the buffer length).
func (l *Logger) GetEntries(count int) []LogEntry {
	l.entriesMu.RLock()
	defer l.entriesMu.RUnlock()

	total := len(l.entries)
	if count <= 0 || count > total {
		count = total
	}
	start := total - count
	result := make([]LogEntry, count)
	copy(result, l.entries[start:])
	return result
}
