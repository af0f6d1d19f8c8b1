package logging

import (
	"context"
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so callers need only this package.
type Attr = slog.Attr

func Bool(key string, value bool) Attr { return slog.Bool(key, value) }

func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }

func Int(key string, value int) Attr { return slog.Int(key, value) }

func Int64(key string, value int64) Attr { return slog.Int64(key, value) }

func String(key string, value string) Attr { return slog.String(key, value) }

func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// Rows describes the half-open row range [start, end) of a segment.
func Rows(start, end int) []Attr {
	return []Attr{Int("start_row", start), Int("end_row", end), Int("rows", end-start)}
}

func attrsToArgs(attrs []Attr) []any {
	args := make([]any, 0, len(attrs))
	for _, attr := range attrs {
		args = append(args, attr)
	}
	return args
}

func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger creates a logger with a standardized component attribute.
// If logger is nil, a no-op logger is used as the base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

func hasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// withDefault appends key=value unless attrs already carries key.
func withDefault(attrs []Attr, key, value string) []Attr {
	if hasAttrKey(attrs, key) {
		return attrs
	}
	return append(attrs, String(key, value))
}

// WarnWithContext logs a warning that always carries event_type, error_hint
// and impact, so every WARN line says what broke, what it costs and what to
// try next.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "check logs for details")
	attrs = withDefault(attrs, FieldImpact, "run continues with warnings")
	logger.Warn(msg, attrsToArgs(attrs)...)
}

// ErrorWithContext logs an error that always carries event_type and
// error_hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefault(attrs, FieldEventType, eventType)
	attrs = withDefault(attrs, FieldErrorHint, "check logs for details")
	logger.Error(msg, attrsToArgs(attrs)...)
}

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool { return false }

func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }

func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler { return NoopHandler{} }

func (NoopHandler) WithGroup(string) slog.Handler { return NoopHandler{} }
