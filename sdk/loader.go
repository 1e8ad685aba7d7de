// Package sdk bootstraps the remote scripts that embedded players depend on.
//
// A Loader owns one load state per provider kind for the life of the process.
// The first player that needs a script triggers a single injection; every player,
// including those that arrive after the script settled, is notified through its waiter.
package sdk

import (
	"errors"
	"fmt"
	"sync"

	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/media"
)

// State is the load state of one remote script.
type State int

const (
	NotRequested State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case NotRequested:
		return "not requested"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Script describes the remote SDK of one provider kind.
type Script struct {
	Kind media.Kind `json:"kind"`
	URL  string     `json:"url"`
	// Callback is the global hook the SDK calls once its API is usable.
	// Empty means the script load itself is the readiness signal.
	Callback string `json:"callback,omitempty"`
}

// Waiter is notified once the script settles; err is nil on success.
type Waiter func(err error)

// Signal is the sink an Injector reports settlement through.
type Signal interface {
	Loaded()
	Failed(err error)
}

// Injector requests a script. It must not block; completion is reported through sig,
// from any goroutine.
type Injector interface {
	Inject(script Script, sig Signal)
}

// InjectorFunc adapts a function to the Injector interface.
type InjectorFunc func(script Script, sig Signal)

func (f InjectorFunc) Inject(script Script, sig Signal) { f(script, sig) }

type entry struct {
	script     Script
	state      State
	gen        uint64
	waiters    []Waiter
	injections int
}

// Loader keeps the load state of every registered script.
type Loader struct {
	mu       sync.Mutex
	injector Injector
	entries  map[media.Kind]*entry
}

// NewLoader returns a loader that requests scripts through inj.
func NewLoader(inj Injector, scripts ...Script) *Loader {
	l := &Loader{
		injector: inj,
		entries:  make(map[media.Kind]*entry),
	}
	for _, s := range scripts {
		l.Register(s)
	}
	return l
}

// Register declares the script for a kind. Re-registering only updates a script that
// has not been requested yet.
func (l *Loader) Register(s Script) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[s.Kind]; ok {
		if e.state == NotRequested {
			e.script = s
		}
		return
	}
	l.entries[s.Kind] = &entry{script: s}
}

// Ensure registers w as a waiter for the script of kind. The script is injected when it
// has never been requested, or again when the previous attempt failed. When the script is
// already loaded, w runs before Ensure returns.
func (l *Loader) Ensure(kind media.Kind, w Waiter) error {
	l.mu.Lock()
	e, ok := l.entries[kind]
	if !ok {
		l.mu.Unlock()
		return &media.Error{Kind: media.ErrConfig, Op: "ensure sdk", Err: fmt.Errorf("no script registered for %s", kind)}
	}

	switch e.state {
	case Loaded:
		l.mu.Unlock()
		w(nil)
		return nil
	case Loading:
		e.waiters = append(e.waiters, w)
		l.mu.Unlock()
		return nil
	}

	// NotRequested or Failed: start a new attempt.
	e.state = Loading
	e.gen++
	e.injections++
	e.waiters = append(e.waiters, w)
	script, sig := e.script, &signal{loader: l, kind: kind, gen: e.gen}
	l.mu.Unlock()

	log.Infof("sdk: requesting %s script %s", kind, script.URL)
	l.injector.Inject(script, sig)
	return nil
}

// State returns the load state of kind's script.
func (l *Loader) State(kind media.Kind) State {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[kind]; ok {
		return e.state
	}
	return NotRequested
}

// Requires reports whether kind has a registered script.
func (l *Loader) Requires(kind media.Kind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.entries[kind]
	return ok
}

// Injections returns how many times kind's script has been injected.
func (l *Loader) Injections(kind media.Kind) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[kind]; ok {
		return e.injections
	}
	return 0
}

// Script returns the registered script of kind.
func (l *Loader) Script(kind media.Kind) (Script, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[kind]; ok {
		return e.script, true
	}
	return Script{}, false
}

// Callback is the global callback sink: a host calls it with the name of the hook an
// SDK invoked. It reports whether a loading script was waiting on that hook.
func (l *Loader) Callback(name string) bool {
	l.mu.Lock()
	var (
		kind  media.Kind
		gen   uint64
		found bool
	)
	for k, e := range l.entries {
		if e.script.Callback == name && e.state == Loading {
			kind, gen, found = k, e.gen, true
			break
		}
	}
	l.mu.Unlock()

	if !found {
		return false
	}
	l.settle(kind, gen, nil)
	return true
}

// settle moves kind's script out of Loading and fans the outcome out to the waiters in
// registration order. Signals from superseded attempts are ignored.
func (l *Loader) settle(kind media.Kind, gen uint64, err error) {
	l.mu.Lock()
	e := l.entries[kind]
	if e == nil || e.gen != gen || e.state != Loading {
		l.mu.Unlock()
		return
	}

	if err != nil {
		e.state = Failed
		err = &media.Error{Kind: media.ErrSDKLoad, Op: string(kind), Err: err}
	} else {
		e.state = Loaded
	}
	waiters := e.waiters
	e.waiters = nil
	l.mu.Unlock()

	if err != nil {
		log.Warnf("sdk: %s script failed: %v", kind, err)
	} else {
		log.Infof("sdk: %s script loaded, notifying %d waiters", kind, len(waiters))
	}

	for _, w := range waiters {
		w(err)
	}
}

type signal struct {
	loader *Loader
	kind   media.Kind
	gen    uint64
}

// Loaded settles scripts whose load is their readiness signal. Scripts with a callback
// stay Loading until Callback is invoked with their hook name.
func (s *signal) Loaded() {
	if script, ok := s.loader.Script(s.kind); ok && script.Callback != "" {
		log.Debugf("sdk: %s script arrived, waiting for %s", s.kind, script.Callback)
		return
	}
	s.loader.settle(s.kind, s.gen, nil)
}

func (s *signal) Failed(err error) {
	if err == nil {
		err = errors.New("script failed to load")
	}
	s.loader.settle(s.kind, s.gen, err)
}
