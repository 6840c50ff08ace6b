package viewer

import (
	"sync"
)

// Event names dispatched by the viewer
const (
	EventPageRendered = "pagerendered"
	EventPagesLoaded  = "pagesloaded"
)

// Event is the payload passed to listeners
type Event struct {
	Name       string
	PageNumber int
	PagesCount int
	Err        error
}

// EventBus delivers viewer events to registered listeners, synchronously and in registration order
type EventBus struct {
	mu        sync.RWMutex
	listeners map[string][]func(Event)
}

// NewEventBus creates an event bus with no listeners
func NewEventBus() *EventBus {
	return &EventBus{listeners: make(map[string][]func(Event))}
}

// On registers fn for events named name
func (b *EventBus) On(name string, fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[name] = append(b.listeners[name], fn)
}

// Dispatch calls every listener of name with ev
func (b *EventBus) Dispatch(name string, ev Event) {
	b.mu.RLock()
	listeners := append([]func(Event){}, b.listeners[name]...)
	b.mu.RUnlock()

	ev.Name = name
	for _, fn := range listeners {
		fn(ev)
	}
}
