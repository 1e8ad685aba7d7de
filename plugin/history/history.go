// Package history is a plugin that saves the playback position while media plays and
// resumes from it on the next session.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/spf13/viper"
	"github.com/vplay-cli/vplay/event"
	store "github.com/vplay-cli/vplay/history"
	"github.com/vplay-cli/vplay/key"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/plugin"
)

const Name = "history"

// Options configure the plugin.
type Options struct {
	// Key overrides the identifier positions are saved under.
	Key string `option:"key"`
	// Interval is the minimum time between two saves.
	Interval time.Duration `option:"interval"`
	// Threshold is the minimum saved position, in seconds, worth resuming from.
	Threshold float64 `option:"threshold"`
	Save      bool    `option:"save"`
	Resume    bool    `option:"resume"`
}

// Descriptor declares the plugin for every provider and media type.
func Descriptor() *plugin.Descriptor {
	return &plugin.Descriptor{
		Name:        Name,
		Description: "Save playback position and resume from it",
		New:         New,
	}
}

// Plugin tracks one player.
type Plugin struct {
	plugin.Base

	core      plugin.Core
	opts      Options
	key       string
	listeners []func()

	mu       sync.Mutex
	lastSave time.Time
}

// New builds the plugin with defaults taken from the configuration.
func New(core plugin.Core, raw map[string]any) (plugin.Plugin, error) {
	opts := Options{
		Interval:  5 * time.Second,
		Threshold: viper.GetFloat64(key.HistoryResumeThreshold),
		Save:      viper.GetBool(key.HistorySave),
		Resume:    viper.GetBool(key.HistoryResume),
	}
	if err := plugin.Decode(Name, raw, &opts); err != nil {
		return nil, err
	}

	k := opts.Key
	if k == "" {
		k = store.Key(core.Kind(), core.Element())
	}
	return &Plugin{core: core, opts: opts, key: k}, nil
}

func (p *Plugin) Init(context.Context) error {
	if !p.opts.Save {
		return nil
	}

	on := func(t event.Type, fn event.Handler) {
		id := p.core.On(t, fn)
		p.listeners = append(p.listeners, func() { p.core.Off(t, id) })
	}

	on(event.TimeUpdate, func(e event.Event) {
		tp, ok := e.Payload.(event.TimePayload)
		if !ok {
			return
		}
		p.mu.Lock()
		due := time.Since(p.lastSave) >= p.opts.Interval
		if due {
			p.lastSave = time.Now()
		}
		p.mu.Unlock()

		if due {
			if err := store.Save(p.key, p.core.Kind(), tp.CurrentTime, tp.Duration); err != nil {
				log.Warnf("history: saving %s: %v", p.key, err)
			}
		}
	})

	on(event.Ended, func(event.Event) {
		if err := store.Remove(p.key); err != nil {
			log.Warnf("history: removing %s: %v", p.key, err)
		}
	})

	return nil
}

// OnReady seeks to the saved position.
func (p *Plugin) OnReady(context.Context) error {
	if !p.opts.Resume {
		return nil
	}

	entry, ok, err := store.Lookup(p.key)
	if err != nil || !ok {
		return err
	}
	if entry.Position < p.opts.Threshold {
		return nil
	}

	log.Infof("history: resuming %s at %.1fs", p.key, entry.Position)
	p.core.Seek(entry.Position)
	return nil
}

func (p *Plugin) Destroy(context.Context) error {
	for _, off := range p.listeners {
		off()
	}
	p.listeners = nil
	return nil
}
