package testsupport

import (
	"context"
	"maps"
	"sync"

	"github.com/goliatone/go-webedit/pkg/interfaces"
)

// LogEntry is one call captured by RecordingLogger.
type LogEntry struct {
	Level  string
	Msg    string
	Args   []any
	Fields map[string]any
}

// RecordingLogger captures log calls for assertions. Loggers derived with
// WithFields share the parent's entry list.
type RecordingLogger struct {
	sink   *logSink
	fields map[string]any
}

type logSink struct {
	mu      sync.Mutex
	entries []LogEntry
}

// NewRecordingLogger constructs an empty recorder.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{sink: &logSink{}, fields: map[string]any{}}
}

var (
	_ interfaces.Logger       = (*RecordingLogger)(nil)
	_ interfaces.FieldsLogger = (*RecordingLogger)(nil)
)

func (l *RecordingLogger) Trace(msg string, args ...any) { l.record("trace", msg, args) }
func (l *RecordingLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.record("error", msg, args) }
func (l *RecordingLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args) }

func (l *RecordingLogger) WithContext(context.Context) interfaces.Logger { return l }

func (l *RecordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)
	return &RecordingLogger{sink: l.sink, fields: merged}
}

// Entries returns a snapshot of captured entries.
func (l *RecordingLogger) Entries() []LogEntry {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	out := make([]LogEntry, len(l.sink.entries))
	copy(out, l.sink.entries)
	return out
}

// Find returns the first entry with msg.
func (l *RecordingLogger) Find(msg string) (LogEntry, bool) {
	for _, entry := range l.Entries() {
		if entry.Msg == msg {
			return entry, true
		}
	}
	return LogEntry{}, false
}

func (l *RecordingLogger) record(level, msg string, args []any) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.entries = append(l.sink.entries, LogEntry{
		Level:  level,
		Msg:    msg,
		Args:   append([]any(nil), args...),
		Fields: maps.Clone(l.fields),
	})
}
