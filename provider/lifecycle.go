package provider

import (
	"sync"

	"github.com/vplay-cli/vplay/media"
)

// Lifecycle tracks the init-once and destroy-once rules shared by every adapter, along
// with the listeners registered on the backend during initialization.
type Lifecycle struct {
	mu          sync.Mutex
	initialized bool
	ready       bool
	destroyed   bool
	offs        []func()
}

// Begin marks the adapter as initializing. It fails when called twice or after Destroy.
func (l *Lifecycle) Begin(kind media.Kind) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.destroyed {
		return media.InvalidState(string(kind)+" initialize", "adapter destroyed")
	}
	if l.initialized {
		return media.InvalidState(string(kind)+" initialize", "adapter already initialized")
	}
	l.initialized = true
	return nil
}

// MarkReady records that the backend reported readiness.
func (l *Lifecycle) MarkReady() {
	l.mu.Lock()
	l.ready = true
	l.mu.Unlock()
}

// Check returns an ErrInvalidState error unless the backend is ready and not destroyed.
func (l *Lifecycle) Check(kind media.Kind, op string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.destroyed:
		return media.InvalidState(string(kind)+" "+op, "adapter destroyed")
	case !l.ready:
		return media.InvalidState(string(kind)+" "+op, "backend not ready")
	}
	return nil
}

// Track registers a function that removes a backend listener.
func (l *Lifecycle) Track(off func()) {
	if off == nil {
		return
	}
	l.mu.Lock()
	l.offs = append(l.offs, off)
	l.mu.Unlock()
}

// End marks the adapter destroyed and removes every tracked listener. It reports false
// when the adapter was already destroyed.
func (l *Lifecycle) End() bool {
	l.mu.Lock()
	if l.destroyed {
		l.mu.Unlock()
		return false
	}
	l.destroyed = true
	l.ready = false
	offs := l.offs
	l.offs = nil
	l.mu.Unlock()

	for i := len(offs) - 1; i >= 0; i-- {
		offs[i]()
	}
	return true
}

// Listeners returns how many backend listeners are still registered.
func (l *Lifecycle) Listeners() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.offs)
}
