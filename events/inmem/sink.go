// Package inmem provides an in-memory events.Sink that records the lifecycle
// stream it receives. It backs tests and embedded consumers that want to
// inspect the ordered event sequence after a turn completes.
package inmem

import (
	"context"
	"sync"

	"github.com/agentwire/threadbridge/events"
)

// Sink records every lifecycle event delivered to it. Safe for concurrent
// use, although the bridge itself produces events sequentially.
type Sink struct {
	mu          sync.Mutex
	events      []events.Event
	completions int
}

// New returns an empty recording sink.
func New() *Sink {
	return &Sink{}
}

// Stream implements events.Sink.
func (s *Sink) Stream(ctx context.Context, fn func(ctx context.Context, em events.Emitter) error) error {
	return fn(ctx, events.EmitterFunc(s.record))
}

func (s *Sink) record(evt events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if evt == nil {
		s.completions++
		return
	}
	s.events = append(s.events, evt)
}

// Events returns a copy of the recorded events in emission order.
func (s *Sink) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Completions reports how many times Complete was signalled.
func (s *Sink) Completions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.completions
}

// Types returns the recorded event types in emission order. Convenient for
// asserting ordering invariants in tests.
func (s *Sink) Types() []events.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]events.EventType, len(s.events))
	for i, evt := range s.events {
		out[i] = evt.Type()
	}
	return out
}
