// Package events defines the domain event contract shared by all bounded
// contexts and the outbound publisher port.
package events

import (
	"context"
	"sync"
	"time"
)

// Event is the base interface for all domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateWithEvents is implemented by aggregates that track domain events.
type AggregateWithEvents interface {
	Events() []Event
	ClearEvents()
}

// Recorder is embedded by aggregates to buffer events until they are published.
type Recorder struct {
	pending []Event
}

// Record buffers an event.
func (r *Recorder) Record(e Event) {
	r.pending = append(r.pending, e)
}

// Events returns the buffered events.
func (r *Recorder) Events() []Event {
	return append([]Event(nil), r.pending...)
}

// ClearEvents drops the buffered events.
func (r *Recorder) ClearEvents() {
	r.pending = nil
}

// Publisher delivers domain events to downstream consumers. key groups events
// of the same aggregate so consumers see them in order.
type Publisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// Discard is a Publisher that drops everything.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(context.Context, string, Event) error { return nil }

// MemoryPublisher keeps published events in memory for tests and local runs.
type MemoryPublisher struct {
	mu        sync.Mutex
	published []Published
}

// Published is one event captured by MemoryPublisher.
type Published struct {
	Key   string
	Event Event
}

// NewMemoryPublisher returns an empty in-memory publisher.
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish records the event.
func (m *MemoryPublisher) Publish(_ context.Context, key string, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, Published{Key: key, Event: event})
	return nil
}

// Published returns a copy of everything published so far.
func (m *MemoryPublisher) Published() []Published {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Published(nil), m.published...)
}

// Names returns the event names in publish order.
func (m *MemoryPublisher) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.published))
	for _, p := range m.published {
		names = append(names, p.Event.EventName())
	}
	return names
}

// PublishAll drains the aggregate's buffered events through p and returns the
// first publish error. The buffer is cleared either way.
func PublishAll(ctx context.Context, p Publisher, key string, agg AggregateWithEvents) error {
	if agg == nil {
		return nil
	}
	pending := agg.Events()
	agg.ClearEvents()
	if p == nil {
		return nil
	}
	var firstErr error
	for _, e := range pending {
		if err := p.Publish(ctx, key, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
