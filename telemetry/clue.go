package telemetry

import (
	"context"

	"goa.design/clue/log"
)

// ClueLogger delegates to goa.design/clue/log. Formatting and debug settings
// are read from the context (set via log.Context, log.WithFormat and
// log.WithDebug).
type ClueLogger struct{}

// NewClueLogger constructs a Clue-backed Logger.
func NewClueLogger() Logger { return ClueLogger{} }

// Debug implements Logger.
func (ClueLogger) Debug(ctx context.Context, msg string, keyvals ...any) {
	log.Debug(ctx, fielders(msg, keyvals)...)
}

// Info implements Logger.
func (ClueLogger) Info(ctx context.Context, msg string, keyvals ...any) {
	log.Info(ctx, fielders(msg, keyvals)...)
}

// Error implements Logger.
func (ClueLogger) Error(ctx context.Context, msg string, keyvals ...any) {
	log.Error(ctx, nil, fielders(msg, keyvals)...)
}

// fielders converts a message plus alternating key/value pairs into Clue's
// log.Fielder slice. Non-string keys are skipped; a trailing unpaired key is
// paired with nil.
func fielders(msg string, keyvals []any) []log.Fielder {
	fs := []log.Fielder{log.KV{K: "msg", V: msg}}
	for i := 0; i < len(keyvals); i += 2 {
		k, ok := keyvals[i].(string)
		if !ok {
			continue
		}
		var v any
		if i+1 < len(keyvals) {
			v = keyvals[i+1]
		}
		fs = append(fs, log.KV{K: k, V: v})
	}
	return fs
}
