package logging

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID identifies one invocation of the slice command.
	FieldRunID = "run_id"
	// FieldGroup names the output group (one image, or one folder in folder mode).
	FieldGroup = "group"
	// FieldFile is the source image currently being read.
	FieldFile = "file"
	// FieldEventType classifies warnings and errors for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
)

type contextKey int

const (
	groupKey contextKey = iota
	fileKey
)

// WithGroupName returns a context tagged with the output group being processed.
func WithGroupName(ctx context.Context, group string) context.Context {
	return context.WithValue(ctx, groupKey, strings.TrimSpace(group))
}

// WithFile returns a context tagged with the source file being processed.
func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, fileKey, strings.TrimSpace(path))
}

// GroupFromContext returns the group stored by WithGroupName.
func GroupFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(groupKey).(string)
	return v, ok && v != ""
}

// FileFromContext returns the file stored by WithFile.
func FileFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	v, ok := ctx.Value(fileKey).(string)
	return v, ok && v != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if group, ok := GroupFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldGroup, group))
	}
	if file, ok := FileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldFile, file))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
