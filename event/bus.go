package event

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/vplay-cli/vplay/log"
)

type listener struct {
	id      ListenerID
	fn      Handler
	removed atomic.Bool
}

// Bus is a typed publish/subscribe channel. Handlers of one type run in registration
// order, synchronously, on the goroutine that emits.
type Bus struct {
	mu        sync.Mutex
	next      ListenerID
	listeners map[Type][]*listener
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{listeners: make(map[Type][]*listener)}
}

// On registers fn for events of type t.
func (b *Bus) On(t Type, fn Handler) ListenerID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.next++
	b.listeners[t] = append(b.listeners[t], &listener{id: b.next, fn: fn})
	return b.next
}

// Off removes a registration. A handler removed before an event is delivered to it
// never receives that event, even when the emission is already under way.
func (b *Bus) Off(t Type, id ListenerID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ls := b.listeners[t]
	for i, l := range ls {
		if l.id == id {
			l.removed.Store(true)
			b.listeners[t] = append(ls[:i:i], ls[i+1:]...)
			return
		}
	}
}

// Emit delivers an event to every handler currently registered for its type.
// A panicking handler is logged and skipped; the remaining handlers still run.
func (b *Bus) Emit(t Type, payload any) {
	b.mu.Lock()
	snapshot := append([]*listener(nil), b.listeners[t]...)
	b.mu.Unlock()

	ev := Event{Type: t, Payload: payload}
	for _, l := range snapshot {
		if l.removed.Load() {
			continue
		}
		b.deliver(l, ev)
	}
}

func (b *Bus) deliver(l *listener, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("event handler for %s panicked: %v", ev.Type, r)
		}
	}()
	l.fn(ev)
}

// Len returns how many handlers are registered for t.
func (b *Bus) Len(t Type) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[t])
}

// Clear removes every registration.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ls := range b.listeners {
		for _, l := range ls {
			l.removed.Store(true)
		}
	}
	b.listeners = make(map[Type][]*listener)
}

func (b *Bus) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, ls := range b.listeners {
		n += len(ls)
	}
	return fmt.Sprintf("event.Bus(%d listeners)", n)
}
