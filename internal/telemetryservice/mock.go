package telemetryservice

import (
	"context"
	"sync"
)

// NoopSink discards every event. Used where telemetry is not under test.
type NoopSink struct{}

func (NoopSink) Emit(ctx context.Context, e Event) {}

// CaptureSink records emitted events for assertions.
type CaptureSink struct {
	mu     sync.Mutex
	Events []Event
}

func (s *CaptureSink) Emit(ctx context.Context, e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, e)
}

func (s *CaptureSink) Emitted() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.Events))
	copy(out, s.Events)
	return out
}
