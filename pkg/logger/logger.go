// Package logger defines the structured logger used by the console parser and
// the workflow, with adapters for zerolog and slog.
package logger

import (
	"context"
	"log/slog"

	"github.com/rs/zerolog"
)

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// Attr creates a Field with the given key and value.
func Attr(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Err creates a Field for an error under the "err_msg" key.
func Err(err error) Field {
	var errMsg string
	if err != nil {
		errMsg = err.Error()
	}
	return Field{Key: "err_msg", Value: errMsg}
}

// Logger supports leveled, structured logging.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
}

// NewFromZerolog wraps a zerolog.Logger, typically the host's enhanced logger.
// A nil logger yields Nop.
func NewFromZerolog(zl *zerolog.Logger) Logger {
	if zl == nil {
		return Nop()
	}
	return &zerologAdapter{zl: zl}
}

type zerologAdapter struct {
	zl *zerolog.Logger
}

func (z *zerologAdapter) Info(ctx context.Context, msg string, fields ...Field) {
	z.emit(ctx, z.zl.Info(), msg, fields)
}

func (z *zerologAdapter) Debug(ctx context.Context, msg string, fields ...Field) {
	z.emit(ctx, z.zl.Debug(), msg, fields)
}

func (z *zerologAdapter) Warn(ctx context.Context, msg string, fields ...Field) {
	z.emit(ctx, z.zl.Warn(), msg, fields)
}

func (z *zerologAdapter) Error(ctx context.Context, msg string, fields ...Field) {
	z.emit(ctx, z.zl.Error(), msg, fields)
}

func (z *zerologAdapter) emit(ctx context.Context, e *zerolog.Event, msg string, fields []Field) {
	// disabled levels return a nil event
	if e == nil {
		return
	}
	e = e.Ctx(ctx)
	for _, f := range fields {
		e = e.Any(f.Key, f.Value)
	}
	e.Msg(msg)
}

// NewFromSlog wraps a slog.Logger. A nil logger yields Nop.
func NewFromSlog(sl *slog.Logger) Logger {
	if sl == nil {
		return Nop()
	}
	return &slogAdapter{sl: sl}
}

type slogAdapter struct {
	sl *slog.Logger
}

func (s *slogAdapter) Info(ctx context.Context, msg string, fields ...Field) {
	s.sl.InfoContext(ctx, msg, fieldsToSlogAttrs(fields)...)
}

func (s *slogAdapter) Debug(ctx context.Context, msg string, fields ...Field) {
	s.sl.DebugContext(ctx, msg, fieldsToSlogAttrs(fields)...)
}

func (s *slogAdapter) Warn(ctx context.Context, msg string, fields ...Field) {
	s.sl.WarnContext(ctx, msg, fieldsToSlogAttrs(fields)...)
}

func (s *slogAdapter) Error(ctx context.Context, msg string, fields ...Field) {
	s.sl.ErrorContext(ctx, msg, fieldsToSlogAttrs(fields)...)
}

func fieldsToSlogAttrs(fields []Field) []any {
	attrs := make([]any, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	return attrs
}

// Nop returns a logger that discards all output.
func Nop() Logger {
	return &nopLogger{}
}

type nopLogger struct{}

func (n *nopLogger) Info(_ context.Context, _ string, _ ...Field)  {}
func (n *nopLogger) Debug(_ context.Context, _ string, _ ...Field) {}
func (n *nopLogger) Warn(_ context.Context, _ string, _ ...Field)  {}
func (n *nopLogger) Error(_ context.Context, _ string, _ ...Field) {}
