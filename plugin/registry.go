package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/media"
)

// Registry is an in-memory set of plugin descriptors keyed by name.
type Registry struct {
	mu          sync.RWMutex
	descriptors map[string]*Descriptor
}

// NewRegistry returns a registry holding the given descriptors.
func NewRegistry(descriptors ...*Descriptor) (*Registry, error) {
	r := &Registry{descriptors: make(map[string]*Descriptor)}
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register stores a descriptor. Names can only be registered once.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil {
		return fmt.Errorf("plugin descriptor is nil")
	}
	if d.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if d.New == nil {
		return fmt.Errorf("plugin %q has no factory", d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.descriptors[d.Name]; exists {
		return fmt.Errorf("plugin %q already registered", d.Name)
	}
	r.descriptors[d.Name] = d
	return nil
}

// Get returns the descriptor registered under name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.descriptors[name]
	return d, ok
}

// All returns the registered descriptors ordered by name.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := lo.Values(r.descriptors)
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all
}

// Matches reports whether d supports the provider kind and media type.
func (d *Descriptor) Matches(kind media.Kind, typ media.Type) bool {
	if len(d.Providers) > 0 && !lo.Contains(d.Providers, kind) {
		return false
	}
	if len(d.Types) > 0 && !lo.Contains(d.Types, typ) {
		return false
	}
	return true
}

// Resolved is a configured plugin that matches a player.
type Resolved struct {
	Descriptor *Descriptor
	Options    map[string]any
}

// Resolve filters the configured plugins against a player's kind and type, keeping
// their order. Plugins that do not match are skipped. Unknown names are a config error.
func (r *Registry) Resolve(specs []media.PluginSpec, kind media.Kind, typ media.Type) ([]Resolved, error) {
	var resolved []Resolved
	for _, spec := range specs {
		d, ok := r.Get(spec.Name)
		if !ok {
			return nil, &media.Error{Kind: media.ErrConfig, Op: "resolve plugins", Err: fmt.Errorf("unknown plugin %q", spec.Name)}
		}
		if !d.Matches(kind, typ) {
			log.Debugf("plugin %s skipped: does not support %s %s", d.Name, kind, typ)
			continue
		}
		resolved = append(resolved, Resolved{Descriptor: d, Options: spec.Options})
	}
	return resolved, nil
}

// Instance is a plugin built for one player.
type Instance struct {
	Name   string
	Plugin Plugin
}

// Build instantiates every resolved plugin for core. A factory that fails or panics only
// drops its own plugin.
func Build(core Core, resolved []Resolved) []Instance {
	var instances []Instance
	for _, r := range resolved {
		var p Plugin
		err := Hook(r.Descriptor.Name, "new", func() error {
			var err error
			p, err = r.Descriptor.New(core, r.Options)
			return err
		})
		if err != nil {
			log.Errorf("%v", err)
			continue
		}
		if p == nil {
			log.Warnf("plugin %s: factory returned nil", r.Descriptor.Name)
			continue
		}
		instances = append(instances, Instance{Name: r.Descriptor.Name, Plugin: p})
	}
	return instances
}
