// Package logging provides leveled logging and event tracing for dda.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - An EventLog for structured JSONL traces of simulation events
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LevelTrace is a custom slog level below Debug for per-tick output.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "warn", "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "warn", "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w. Format "json" selects
// the JSON handler; anything else uses text.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))
}

// EventKind names a simulation event.
type EventKind string

const (
	EventRunStarted  EventKind = "run_started"
	EventActivation  EventKind = "activation"
	EventExit        EventKind = "exit"
	EventRunFinished EventKind = "run_finished"
	EventRunAborted  EventKind = "run_aborted"
)

// Event is one line of the event trace.
type Event struct {
	Kind  EventKind      `json:"kind"`
	RunID string         `json:"run_id,omitempty"`
	Tick  int            `json:"tick"`
	Attrs map[string]any `json:"attrs,omitempty"`
	Time  time.Time      `json:"time"`
}

// EventLog writes simulation events as JSONL. It is safe for concurrent use.
// A nil EventLog is safe to use; all methods are no-ops on nil receiver.
type EventLog struct {
	mu     sync.Mutex
	w      io.Writer
	closer io.Closer
}

// NewEventLog creates an event log writing to w.
func NewEventLog(w io.Writer) *EventLog {
	return &EventLog{w: w}
}

// OpenEventLog creates an event log appending to the file at path, creating
// parent directories as needed. An empty path returns a nil EventLog.
func OpenEventLog(path string) (*EventLog, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &EventLog{w: f, closer: f}, nil
}

// Log writes an event as a single JSONL line, stamping Time when unset.
// Safe to call on nil receiver.
func (el *EventLog) Log(e Event) {
	if el == nil {
		return
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		return
	}
	data = append(data, '\n')

	el.mu.Lock()
	defer el.mu.Unlock()
	if el.w == nil {
		return
	}
	_, _ = el.w.Write(data)
}

// Close closes the underlying file, if any. Later calls to Log are no-ops.
// Safe to call on nil receiver.
func (el *EventLog) Close() error {
	if el == nil {
		return nil
	}

	el.mu.Lock()
	defer el.mu.Unlock()

	el.w = nil
	if el.closer == nil {
		return nil
	}
	err := el.closer.Close()
	el.closer = nil
	return err
}
