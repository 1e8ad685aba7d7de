// Package provider defines the adapter contract every playback backend implements and
// the registry the player core selects adapters from.
package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/sdk"
)

// Emit pushes a normalized event onto the player's bus.
type Emit func(t event.Type, payload any)

// Adapter wraps one concrete backend behind the common control surface.
//
// Initialize blocks until the backend reports readiness or fails. It must be called
// at most once; a second call returns an ErrInvalidState error. Destroy is idempotent.
type Adapter interface {
	Initialize(ctx context.Context, el *media.Element, opts media.Options, emit Emit) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Seek(ctx context.Context, seconds float64) error
	SetVolume(ctx context.Context, level float64) error
	Mute(ctx context.Context) error
	Unmute(ctx context.Context) error
	CurrentTime(ctx context.Context) (float64, error)
	Duration(ctx context.Context) (float64, error)
	Destroy(ctx context.Context) error
}

// TrackLister is implemented by adapters that expose the media's text tracks.
type TrackLister interface {
	Tracks() []media.Track
}

// Provider describes one backend: how to build its adapter and which remote script
// it needs before initialization.
type Provider struct {
	Kind   media.Kind
	Name   string
	Types  []media.Type
	Script mo.Option[sdk.Script]
	New    func() Adapter
}

func (p *Provider) String() string {
	return p.Name
}

// Supports reports whether the provider can play media of type t.
func (p *Provider) Supports(t media.Type) bool {
	return lo.Contains(p.Types, t)
}

// Registry is an in-memory set of providers keyed by kind.
type Registry struct {
	mu        sync.RWMutex
	providers map[media.Kind]*Provider
}

// NewRegistry returns a registry holding the given providers.
func NewRegistry(providers ...*Provider) (*Registry, error) {
	r := &Registry{providers: make(map[media.Kind]*Provider)}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register stores a provider. Kinds can only be registered once.
func (r *Registry) Register(p *Provider) error {
	if p == nil {
		return fmt.Errorf("provider is nil")
	}
	if p.New == nil {
		return fmt.Errorf("provider %q has no adapter constructor", p.Kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.Kind]; exists {
		return fmt.Errorf("provider for %q already registered", p.Kind)
	}
	r.providers[p.Kind] = p
	return nil
}

// Get returns the provider of kind.
func (r *Registry) Get(kind media.Kind) (*Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[kind]
	return p, ok
}

// All returns the registered providers ordered by kind.
func (r *Registry) All() []*Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := lo.Values(r.providers)
	sort.Slice(all, func(i, j int) bool { return all[i].Kind < all[j].Kind })
	return all
}

// Scripts returns the remote scripts required by the registered providers.
func (r *Registry) Scripts() []sdk.Script {
	return lo.FilterMap(r.All(), func(p *Provider, _ int) (sdk.Script, bool) {
		return p.Script.Get()
	})
}
