// Package logging provides leveled logging and run tracing for planetzero.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A TraceLogger that appends per-month step records to a JSONL trace file
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pzlab/planetzero/internal/model"
)

// LevelTrace is a custom slog level below Debug for full content logging.
// At this level, per-month step records are written to the trace file.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// StepTrace is one line of the run trace: which policy resolved the month and
// the full step record it produced.
type StepTrace struct {
	Time   string           `json:"time"`
	Policy string           `json:"policy"`
	Record model.StepRecord `json:"record"`
}

// TraceLogger appends step records to a JSONL trace file so a full run can be
// replayed or inspected month by month. It is safe for concurrent use, and a
// nil TraceLogger is safe to use: all methods are no-ops on a nil receiver.
type TraceLogger struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// NewTraceLogger creates a trace logger appending to dir/trace.jsonl.
// At "info" level (the default) it returns nil and no file is created; at
// "debug" or "trace" the file is opened for append. Open failures also
// return nil: tracing is best-effort and never blocks a run.
func NewTraceLogger(dir string, level string) *TraceLogger {
	if ParseLevel(level) > slog.LevelDebug {
		return nil
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "trace.jsonl"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil
	}
	return &TraceLogger{f: f, enc: json.NewEncoder(f)}
}

// LogStep writes one step record as a single JSONL line.
// Safe to call on a nil receiver.
func (tl *TraceLogger) LogStep(policyKey string, rec model.StepRecord) {
	if tl == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.enc == nil {
		return
	}
	_ = tl.enc.Encode(StepTrace{
		Time:   time.Now().UTC().Format(time.RFC3339Nano),
		Policy: policyKey,
		Record: rec,
	})
}

// Close closes the underlying file. Safe to call on a nil receiver.
func (tl *TraceLogger) Close() {
	if tl == nil {
		return
	}

	tl.mu.Lock()
	defer tl.mu.Unlock()
	if tl.f == nil {
		return
	}
	tl.f.Close()
	tl.f = nil
	tl.enc = nil
}
