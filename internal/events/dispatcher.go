// Package events is the input-listener registry a controller mounts on.
// Listeners are acquired with Subscribe and released with Subscription.Release.
package events

import (
	"slices"
	"sync"

	"github.com/caps24escola/pixel-world/internal/domain"
)

// Kind selects which listeners an event reaches.
type Kind string

const (
	KindKeyDown Kind = "keydown"
	KindMessage Kind = "message"
)

// Event is an input event. Key is set for KindKeyDown, Data for KindMessage.
type Event struct {
	Kind Kind
	Key  domain.KeyEvent
	Data []byte
}

// Listener handles one event.
type Listener func(Event)

// Dispatcher fans events out to the listeners subscribed to their kind.
type Dispatcher struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[Kind]map[uint64]Listener
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[Kind]map[uint64]Listener)}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	d    *Dispatcher
	kind Kind
	id   uint64
	once sync.Once
}

// Subscribe registers l for events of kind.
func (d *Dispatcher) Subscribe(kind Kind, l Listener) *Subscription {
	if l == nil {
		panic("events: nil listener")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	if d.listeners[kind] == nil {
		d.listeners[kind] = make(map[uint64]Listener)
	}
	d.listeners[kind][d.nextID] = l
	return &Subscription{d: d, kind: kind, id: d.nextID}
}

// Release removes the listener. Calling it more than once is a no-op.
func (s *Subscription) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.d.mu.Lock()
		defer s.d.mu.Unlock()
		delete(s.d.listeners[s.kind], s.id)
		if len(s.d.listeners[s.kind]) == 0 {
			delete(s.d.listeners, s.kind)
		}
	})
}

// Dispatch delivers ev to every listener of its kind, in subscription order.
// Listeners run on the caller's goroutine.
func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.Lock()
	set := d.listeners[ev.Kind]
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	targets := make([]Listener, 0, len(ids))
	for _, id := range ids {
		targets = append(targets, set[id])
	}
	d.mu.Unlock()

	for _, l := range targets {
		l(ev)
	}
}

// Count returns the number of listeners registered for kind.
func (d *Dispatcher) Count(kind Kind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[kind])
}

