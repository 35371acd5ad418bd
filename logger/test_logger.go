package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestCtxLogger records entries in memory so tests can assert on them.
// Pass TestCtxLogger.CtxZapLogger to the component under test.
//
//	tl := logger.NewTestCtxLogger()
//	mgr := session.NewManager(store, session.WithLogger(tl.CtxZapLogger))
//	assert.True(t, tl.HasLog("WARN", "persist token failed"))
type TestCtxLogger struct {
	*CtxZapLogger
	logs *observer.ObservedLogs
}

// NewTestCtxLogger records every level from debug up.
func NewTestCtxLogger() *TestCtxLogger {
	core, logs := observer.New(zapcore.DebugLevel)
	cfg := DefaultManagerConfig()
	cfg.AppName = ""
	cfg.EnableStacktrace = false
	return &TestCtxLogger{
		CtxZapLogger: &CtxZapLogger{base: zap.New(core), module: "test", config: &cfg},
		logs:         logs,
	}
}

// LogEntry is a recorded entry with its context fields flattened.
type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]any
}

// Logs returns a snapshot of the recorded entries.
func (t *TestCtxLogger) Logs() []LogEntry {
	all := t.logs.All()
	out := make([]LogEntry, 0, len(all))
	for _, e := range all {
		out = append(out, LogEntry{
			Level:   e.Level.CapitalString(),
			Message: e.Message,
			Fields:  e.ContextMap(),
		})
	}
	return out
}

// HasLog reports whether an entry with level (e.g. "WARN") and message exists.
func (t *TestCtxLogger) HasLog(level, message string) bool {
	for _, e := range t.Logs() {
		if e.Level == level && e.Message == message {
			return true
		}
	}
	return false
}

// HasLogWithField additionally matches a single context field.
func (t *TestCtxLogger) HasLogWithField(level, message, key string, value any) bool {
	for _, e := range t.Logs() {
		if e.Level == level && e.Message == message && e.Fields[key] == value {
			return true
		}
	}
	return false
}

// CountLogs counts entries at level.
func (t *TestCtxLogger) CountLogs(level string) int {
	n := 0
	for _, e := range t.Logs() {
		if e.Level == level {
			n++
		}
	}
	return n
}

// Clear drops recorded entries.
func (t *TestCtxLogger) Clear() {
	t.logs.TakeAll()
}
