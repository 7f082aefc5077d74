package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  slog.Level
	}{
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"debug", "debug", slog.LevelDebug},
		{"trace", "trace", LevelTrace},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Trace", "Trace", LevelTrace},
		{"unknown defaults to info", "unknown", slog.LevelInfo},
		{"empty defaults to info", "", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name       string
		level      string
		logAtTrace bool
		logAtDebug bool
		logAtInfo  bool
	}{
		{"info filters debug", "info", false, false, true},
		{"debug passes debug", "debug", false, true, true},
		{"trace passes everything", "trace", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(tt.level, "text", &buf)

			logger.Log(context.Background(), LevelTrace, "trace message")
			if got := strings.Contains(buf.String(), "trace message"); got != tt.logAtTrace {
				t.Errorf("trace message visible = %v, want %v (buf: %q)", got, tt.logAtTrace, buf.String())
			}

			buf.Reset()
			logger.Debug("debug message")
			if got := strings.Contains(buf.String(), "debug message"); got != tt.logAtDebug {
				t.Errorf("debug message visible = %v, want %v (buf: %q)", got, tt.logAtDebug, buf.String())
			}

			buf.Reset()
			logger.Info("info message")
			if got := strings.Contains(buf.String(), "info message"); got != tt.logAtInfo {
				t.Errorf("info message visible = %v, want %v (buf: %q)", got, tt.logAtInfo, buf.String())
			}
		})
	}
}

func TestNewLogger_TraceLabel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("trace", "text", &buf)
	logger.Log(context.Background(), LevelTrace, "iteration", "tick", 3)
	if !strings.Contains(buf.String(), "level=TRACE") {
		t.Errorf("expected level=TRACE, got %q", buf.String())
	}
}

func TestNewLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("info", "json", &buf)
	logger.Info("run finished", "steps", 10)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "run finished" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["steps"] != float64(10) {
		t.Errorf("steps = %v", entry["steps"])
	}
}

func TestLevelTrace(t *testing.T) {
	if LevelTrace >= slog.LevelDebug {
		t.Errorf("LevelTrace (%d) should be less than LevelDebug (%d)", LevelTrace, slog.LevelDebug)
	}
}

func TestDiscard(t *testing.T) {
	// Must not panic and must not be enabled for errors.
	l := Discard()
	l.Error("ignored")
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard logger should not be enabled at error level")
	}
}

func TestEventLog_Writer(t *testing.T) {
	var buf bytes.Buffer
	el := NewEventLog(&buf)

	el.Log(Event{Kind: EventActivation, RunID: "r1", Tick: 60, Attrs: map[string]any{"activated": 5}})
	el.Log(Event{Kind: EventExit, Tick: 71})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}

	var first Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("failed to parse JSONL entry: %v", err)
	}
	if first.Kind != EventActivation || first.RunID != "r1" || first.Tick != 60 {
		t.Errorf("first = %+v", first)
	}
	if first.Attrs["activated"] != float64(5) {
		t.Errorf("activated = %v", first.Attrs["activated"])
	}
	if first.Time.IsZero() {
		t.Error("expected time to be stamped")
	}
}

func TestOpenEventLog_EmptyPath(t *testing.T) {
	el, err := OpenEventLog("")
	if err != nil {
		t.Fatalf("OpenEventLog(\"\") error: %v", err)
	}
	if el != nil {
		t.Error("expected nil EventLog for empty path")
	}
	// Nil log is still safe to use.
	el.Log(Event{Kind: EventRunStarted})
	if err := el.Close(); err != nil {
		t.Errorf("Close on nil returned %v", err)
	}
}

func TestOpenEventLog_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "events.jsonl")
	el, err := OpenEventLog(path)
	if err != nil {
		t.Fatalf("OpenEventLog failed: %v", err)
	}

	el.Log(Event{Kind: EventRunStarted})
	if err := el.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// No-op after close.
	el.Log(Event{Kind: EventRunFinished})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read event log: %v", err)
	}
	if strings.Count(string(data), "\n") != 1 {
		t.Errorf("expected one line after close, got %q", string(data))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permissions = %o, want 0600", perm)
	}
}

func TestOpenEventLog_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	for i := 0; i < 2; i++ {
		el, err := OpenEventLog(path)
		if err != nil {
			t.Fatalf("OpenEventLog failed: %v", err)
		}
		el.Log(Event{Kind: EventRunStarted, Tick: i})
		el.Close()
	}
	data, _ := os.ReadFile(path)
	if got := strings.Count(string(data), "\n"); got != 2 {
		t.Errorf("expected 2 lines across opens, got %d", got)
	}
}
