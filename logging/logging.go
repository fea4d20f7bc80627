// Package logging defines the small structured logger used across the module
// and adapters for zap and logr.
package logging

import (
	"github.com/go-logr/logr"
	"go.uber.org/zap"
)

// Logger is an optional logging interface accepted by the driver and parser.
// This allows integration with any logging framework.
//
// Example with standard log package:
//
//	type StdLogger struct{}
//	func (l *StdLogger) Debug(msg string, kv ...interface{}) { log.Println(msg, kv) }
//	func (l *StdLogger) Info(msg string, kv ...interface{})  { log.Println(msg, kv) }
//	func (l *StdLogger) Error(msg string, kv ...interface{}) { log.Println(msg, kv) }
type Logger interface {
	// Debug logs a debug message with optional key-value pairs
	Debug(msg string, keysAndValues ...interface{})

	// Info logs an info message with optional key-value pairs
	Info(msg string, keysAndValues ...interface{})

	// Error logs an error message with optional key-value pairs
	Error(msg string, keysAndValues ...interface{})
}

type nop struct{}

func (nop) Debug(string, ...interface{}) {}
func (nop) Info(string, ...interface{})  {}
func (nop) Error(string, ...interface{}) {}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZap adapts a zap logger.
//
// Example:
//
//	z, _ := zap.NewDevelopment()
//	ctrl, err := ichspi.New(regs, gen, ichspi.WithLogger(logging.NewZap(z)))
func NewZap(l *zap.Logger) Logger {
	if l == nil {
		return Nop()
	}
	return &zapLogger{s: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

func (z *zapLogger) Debug(msg string, kv ...interface{}) { z.s.Debugw(msg, kv...) }
func (z *zapLogger) Info(msg string, kv ...interface{})  { z.s.Infow(msg, kv...) }
func (z *zapLogger) Error(msg string, kv ...interface{}) { z.s.Errorw(msg, kv...) }

type logrLogger struct {
	l logr.Logger
}

// NewLogr adapts a logr logger. Debug messages are emitted at V(1).
func NewLogr(l logr.Logger) Logger {
	return &logrLogger{l: l.WithCallDepth(1)}
}

func (r *logrLogger) Debug(msg string, kv ...interface{}) { r.l.V(1).Info(msg, kv...) }
func (r *logrLogger) Info(msg string, kv ...interface{})  { r.l.Info(msg, kv...) }
func (r *logrLogger) Error(msg string, kv ...interface{}) { r.l.Error(nil, msg, kv...) }

// OrNop returns l, or a discarding logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
