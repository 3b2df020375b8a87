package statsdproxy

import (
	"context"
	"sync"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// Observer receives the lifecycle events published by the Server
// (started and stopped); the stages publish no events. ObserverID lets a Subject de-duplicate repeat
// registrations, the same contract the teacher framework's Observer
// interface uses for its module lifecycle events.
type Observer interface {
	OnEvent(ctx context.Context, event cloudevents.Event) error
	ObserverID() string
}

// Subject is anything that can fan a CloudEvents stream out to registered
// observers. Production wiring uses NewEventBus; a no-op implementation is
// the zero-effort default so nothing upstream is required to exist for
// the Server to run.
type Subject interface {
	RegisterObserver(o Observer) error
	UnregisterObserver(o Observer) error
	NotifyObservers(ctx context.Context, event cloudevents.Event)
}

// Event type constants, reverse-domain-named to match the CloudEvents
// convention the observer bus uses elsewhere in this ecosystem. The Server
// publishes EventTypeServerStarted and EventTypeServerStopped; nothing in
// this module publishes the other three.
const (
	EventTypeServerStarted      = "com.statsdproxy.server.started"
	EventTypeServerStopped      = "com.statsdproxy.server.stopped"
	EventTypeDatagramParseError = "com.statsdproxy.server.datagram_parse_error"
	EventTypeMetricDropped      = "com.statsdproxy.pipeline.metric_dropped"
	EventTypeUpstreamFlushed    = "com.statsdproxy.upstream.flushed"
)

// EventBus is the in-process Subject implementation: observers are called
// synchronously, in registration order, on the publishing goroutine. The
// data path never blocks on this — events are an operational side channel,
// not a delivery guarantee.
type EventBus struct {
	mu        sync.Mutex
	observers []Observer
}

// NewEventBus returns an empty EventBus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

func (b *EventBus) RegisterObserver(o Observer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.observers {
		if existing.ObserverID() == o.ObserverID() {
			return nil
		}
	}
	b.observers = append(b.observers, o)
	return nil
}

func (b *EventBus) UnregisterObserver(o Observer) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.observers {
		if existing.ObserverID() == o.ObserverID() {
			b.observers = append(b.observers[:i], b.observers[i+1:]...)
			return nil
		}
	}
	return nil
}

func (b *EventBus) NotifyObservers(ctx context.Context, event cloudevents.Event) {
	b.mu.Lock()
	observers := make([]Observer, len(b.observers))
	copy(observers, b.observers)
	b.mu.Unlock()

	for _, o := range observers {
		_ = o.OnEvent(ctx, event)
	}
}

// nopSubject discards every event; the default when no Subject is wired.
type nopSubject struct{}

func (nopSubject) RegisterObserver(Observer) error   { return nil }
func (nopSubject) UnregisterObserver(Observer) error { return nil }
func (nopSubject) NotifyObservers(context.Context, cloudevents.Event) {}

// NoopSubject is a Subject that discards everything, for components built
// without an event bus.
var NoopSubject Subject = nopSubject{}
