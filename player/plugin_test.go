package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/plugin"
)

type journal struct {
	mu      sync.Mutex
	entries []string
}

func (j *journal) add(s string) {
	j.mu.Lock()
	j.entries = append(j.entries, s)
	j.mu.Unlock()
}

func (j *journal) list() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.entries...)
}

type recordingPlugin struct {
	name  string
	core  plugin.Core
	j     *journal
	panic bool
	gate  chan struct{}
}

func (r *recordingPlugin) Init(context.Context) error {
	r.j.add(r.name + ".init:" + r.core.(*Player).State().String())
	if r.panic {
		panic("broken plugin")
	}
	if r.gate != nil {
		<-r.gate
	}
	return nil
}

func (r *recordingPlugin) OnReady(context.Context) error {
	r.j.add(r.name + ".ready")
	return nil
}

func (r *recordingPlugin) Destroy(context.Context) error {
	r.j.add(r.name + ".destroy")
	return errors.New("ignored")
}

func descriptor(name string, j *journal, kinds []media.Kind, broken bool) *plugin.Descriptor {
	return &plugin.Descriptor{
		Name:      name,
		Providers: kinds,
		New: func(core plugin.Core, _ map[string]any) (plugin.Plugin, error) {
			return &recordingPlugin{name: name, core: core, j: j, panic: broken}, nil
		},
	}
}

func TestPlugins(t *testing.T) {
	Convey("Given plugins configured on an html5 player", t, func() {
		j := &journal{}
		f := newFixture(
			descriptor("a", j, nil, false),
			descriptor("broken", j, nil, true),
			descriptor("vimeo-only", j, []media.Kind{media.Vimeo}, false),
			descriptor("b", j, []media.Kind{media.HTML5}, false),
			&plugin.Descriptor{
				Name: "failing-factory",
				New: func(plugin.Core, map[string]any) (plugin.Plugin, error) {
					return nil, errors.New("bad options")
				},
			},
		)

		opts := media.Options{Plugins: []media.PluginSpec{
			{Name: "a"}, {Name: "broken"}, {Name: "vimeo-only"}, {Name: "failing-factory"}, {Name: "b"},
		}}
		p, err := New(f.env, media.HTML5, videoElement, opts)
		So(err, ShouldBeNil)
		So(waitReady(p), ShouldBeNil)

		Convey("Matching plugins activate after ready in configured order", func() {
			So(destroy(p), ShouldBeNil)
			So(j.list(), ShouldResemble, []string{
				"a.init:ready", "a.ready",
				"broken.init:ready",
				"b.init:ready", "b.ready",
				"b.destroy", "broken.destroy", "a.destroy",
			})
			So(f.adapter(0).destroyed, ShouldEqual, 1)
		})
	})
}

func TestDestroyDuringActivation(t *testing.T) {
	Convey("Given a plugin whose init is still running", t, func() {
		j := &journal{}
		gate := make(chan struct{})
		f := newFixture(
			&plugin.Descriptor{
				Name: "slow",
				New: func(core plugin.Core, _ map[string]any) (plugin.Plugin, error) {
					return &recordingPlugin{name: "slow", core: core, j: j, gate: gate}, nil
				},
			},
			descriptor("next", j, nil, false),
		)

		opts := media.Options{Plugins: []media.PluginSpec{{Name: "slow"}, {Name: "next"}}}
		p, err := New(f.env, media.HTML5, videoElement, opts)
		So(err, ShouldBeNil)

		for len(j.list()) == 0 {
			time.Sleep(time.Millisecond)
		}

		done := make(chan error, 1)
		go func() { done <- destroy(p) }()
		for !p.stopping() {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(20 * time.Millisecond)

		Convey("Teardown waits for the hook and skips the rest of activation", func() {
			So(p.State(), ShouldEqual, Ready)
			So(j.list(), ShouldResemble, []string{"slow.init:ready"})
			So(f.adapter(0).destroyed, ShouldEqual, 0)

			close(gate)
			So(<-done, ShouldBeNil)
			So(j.list(), ShouldResemble, []string{"slow.init:ready", "slow.destroy"})
			So(f.adapter(0).destroyed, ShouldEqual, 1)
			So(errors.Is(waitReady(p), media.ErrInvalidState), ShouldBeTrue)
		})
	})
}
