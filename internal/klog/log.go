// Package klog is the kernel's console logger. It mirrors go.uber.org/zap's
// SugaredLogger shape (leveled methods, chained structured fields) without
// importing zap: see DESIGN.md's ambient-stack entry for why — zap's
// encoders and sync machinery assume a process and an io.Writer backed by
// a real fd, neither of which exist in a freestanding kernel. What does
// exist is exactly the interface zap itself is built on: an io.Writer.
// Here that writer is the VGA terminal (console.go's klogInit); the
// hosted cmd/diskimage tool does not use this package.
package klog

import (
	"fmt"
	"io"
)

// Level mirrors zapcore.Level's ordering.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	PanicLevel
)

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	case PanicLevel:
		return "panic"
	default:
		return "unknown"
	}
}

// Field is a structured key/value pair, the same shape as zap.Field but
// carrying a plain interface{} value instead of zap's tagged union (no
// encoder to special-case int64 vs string vs duration here).
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

// Logger writes leveled, optionally-fielded lines to an io.Writer. The
// zero value is not usable; construct with New.
type Logger struct {
	out    io.Writer
	level  Level
	fields []Field
}

// New creates a Logger writing to w at the given minimum level. Matches
// zap's zapcore.AddSync(w) + level-enabler pattern, collapsed into one
// constructor since this kernel has exactly one sink.
func New(w io.Writer, level Level) *Logger {
	return &Logger{out: w, level: level}
}

// With returns a child logger that always includes the given fields,
// matching zap's SugaredLogger.With.
func (l *Logger) With(fields ...Field) *Logger {
	merged := make([]Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{out: l.out, level: l.level, fields: merged}
}

func (l *Logger) log(level Level, msg string, fields ...Field) {
	if level < l.level {
		return
	}
	fmt.Fprintf(l.out, "[%s] %s", level, msg)
	for _, f := range l.fields {
		fmt.Fprintf(l.out, " %s=%v", f.Key, f.Value)
	}
	for _, f := range fields {
		fmt.Fprintf(l.out, " %s=%v", f.Key, f.Value)
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields...) }

// Panic logs at PanicLevel and then calls panic(msg). The kernel's own
// exception path (exceptions.go) does not use this — CPU exceptions
// print and halt directly — Panic exists for Go-level invariant
// violations inside task-context code (e.g. a corrupted heap free list)
// where unwinding to a recover() at the shell loop is meaningful.
func (l *Logger) Panic(msg string, fields ...Field) {
	l.log(PanicLevel, msg, fields...)
	panic(msg)
}
