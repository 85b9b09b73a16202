package service

import "sync"

// Event resources and actions published on the bus.
const (
	ResourceSelection = "selection"
	ResourceMap       = "map"

	ActionSelected = "selected"
	ActionStyle    = "style"
	ActionLine     = "line"
	ActionMarker   = "marker"
	ActionCamera   = "camera"
)

// Event is a dashboard change pushed to stream subscribers.
type Event struct {
	Resource string // "selection" or "map"
	Action   string // "selected", "style", "line", "marker", "camera"
	ID       string // facility id, when the event concerns one
	Payload  any
}

// EventBus is a simple fan-out pub/sub for dashboard events.
type EventBus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all subscribers (non-blocking).
// A subscriber whose buffer is full misses the event; streams resync on reconnect.
func (b *EventBus) Publish(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe returns a buffered channel that receives events.
func (b *EventBus) Subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (b *EventBus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
	close(ch)
}
