package events

import (
	"context"
	"sync"
)

// PublishedEvent pairs a topic with the event sent to it.
type PublishedEvent struct {
	Topic string
	Event Event
}

// MemorySink records published events in memory. Used in tests and available
// as a building block for buffering sinks.
type MemorySink struct {
	mu     sync.Mutex
	events []PublishedEvent
	err    error
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

var _ Sink = (*MemorySink)(nil)

// Publish implements Sink.Publish
func (s *MemorySink) Publish(_ context.Context, topic string, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}

	s.events = append(s.events, PublishedEvent{Topic: topic, Event: event})
	return nil
}

// Events returns a copy of everything published so far.
func (s *MemorySink) Events() []PublishedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PublishedEvent, len(s.events))
	copy(out, s.events)
	return out
}

// ByTopic returns the published events for one topic, in publish order.
func (s *MemorySink) ByTopic(topic string) []PublishedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []PublishedEvent
	for _, e := range s.events {
		if e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}

// FailWith makes every subsequent Publish return err.
func (s *MemorySink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}
