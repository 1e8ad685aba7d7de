// Package skip is a plugin that jumps over configured intervals, such as intros and
// outros, when playback enters them.
package skip

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/plugin"
)

const Name = "skip"

// Interval is a span of the media, in seconds, that playback skips.
type Interval struct {
	Title string  `option:"title"`
	Start float64 `option:"start"`
	End   float64 `option:"end"`
}

// Contains reports whether pos falls inside the interval.
func (i Interval) Contains(pos float64) bool {
	return pos >= i.Start && pos < i.End
}

// Options configure the plugin.
type Options struct {
	Intervals []Interval `option:"intervals"`
}

func Descriptor() *plugin.Descriptor {
	return &plugin.Descriptor{
		Name:        Name,
		Description: "Skip intros, outros and other intervals",
		New:         New,
	}
}

// Plugin watches the playhead of one player.
type Plugin struct {
	plugin.Base

	core      plugin.Core
	intervals []Interval
	listener  event.ListenerID

	mu      sync.Mutex
	skipped map[int]bool
}

func New(core plugin.Core, raw map[string]any) (plugin.Plugin, error) {
	var opts Options
	if err := plugin.Decode(Name, raw, &opts); err != nil {
		return nil, err
	}

	for _, i := range opts.Intervals {
		if i.End <= i.Start {
			return nil, fmt.Errorf("interval %q ends before it starts", i.Title)
		}
	}
	sort.Slice(opts.Intervals, func(a, b int) bool { return opts.Intervals[a].Start < opts.Intervals[b].Start })

	return &Plugin{core: core, intervals: opts.Intervals, skipped: make(map[int]bool)}, nil
}

func (p *Plugin) Init(context.Context) error {
	if len(p.intervals) == 0 {
		return nil
	}
	p.listener = p.core.On(event.TimeUpdate, func(e event.Event) {
		if tp, ok := e.Payload.(event.TimePayload); ok {
			p.Check(tp.CurrentTime)
		}
	})
	return nil
}

// Check seeks past the interval pos falls in, once per interval. It reports whether
// a skip was performed.
func (p *Plugin) Check(pos float64) bool {
	for idx, i := range p.intervals {
		if !i.Contains(pos) {
			continue
		}

		p.mu.Lock()
		done := p.skipped[idx]
		p.skipped[idx] = true
		p.mu.Unlock()
		if done {
			return false
		}

		log.Infof("skip: skipping %s: %v -> %v", i.Title, pos, i.End)
		if _, err := p.core.Seek(i.End).Collect(); err != nil {
			log.Warnf("skip: seek: %v", err)
			return false
		}
		return true
	}
	return false
}

func (p *Plugin) Destroy(context.Context) error {
	if p.listener != 0 {
		p.core.Off(event.TimeUpdate, p.listener)
	}
	return nil
}
