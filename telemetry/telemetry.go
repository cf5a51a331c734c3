// Package telemetry provides the logging seam used across the bridge.
// Components log through the Logger interface so embedders can plug in their
// own logging stack; the default is the no-op logger and a Clue-backed
// implementation ships for applications already using goa.design/clue.
package telemetry

import "context"

// Logger emits structured log entries. Keyvals are alternating key/value
// pairs; non-string keys and trailing unpaired values are dropped.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

type noopLogger struct{}

// Noop returns a Logger that discards everything.
func Noop() Logger { return noopLogger{} }

func (noopLogger) Debug(context.Context, string, ...any) {}
func (noopLogger) Info(context.Context, string, ...any)  {}
func (noopLogger) Error(context.Context, string, ...any) {}
