// Package lua loads user plugins written in Lua from the plugins directory.
//
// A script declares the providers and types it supports and may define init, on_ready
// and destroy functions. It reaches the player through the "player" module. Every player
// gets its own Lua state; event callbacks run on a dedicated goroutine in arrival order.
package lua

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	libs "github.com/metafates/mangal-lua-libs"
	"github.com/samber/lo"
	"github.com/vplay-cli/vplay/constant"
	"github.com/vplay-cli/vplay/filesystem"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/plugin"
	"github.com/vplay-cli/vplay/util"
	"github.com/vplay-cli/vplay/where"
	lua "github.com/yuin/gopher-lua"
)

// Load reads the script at path and returns its descriptor. The script runs once in a
// throwaway state to read its declarations.
func Load(path string) (*plugin.Descriptor, error) {
	proto, err := compile(path)
	if err != nil {
		return nil, err
	}

	L := lua.NewState()
	defer L.Close()
	libs.Preload(L)
	L.PreloadModule(ModuleName, func(L *lua.LState) int {
		L.Push(L.NewTable())
		return 1
	})

	if err := run(L, proto); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	name := util.FileStem(path)
	providers, err := parseList(L, constant.PluginProvidersField, media.ParseKind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	types, err := parseList(L, constant.PluginTypesField, media.ParseType)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	description := name + " (lua)"
	if v := L.GetGlobal(constant.PluginDescriptionField); v.Type() == lua.LTString {
		description = v.String()
	}

	return &plugin.Descriptor{
		Name:        name,
		Description: description,
		Providers:   providers,
		Types:       types,
		New: func(core plugin.Core, opts map[string]any) (plugin.Plugin, error) {
			p, err := newPlugin(name, proto, core, opts)
			if err != nil {
				return nil, err
			}
			return p, nil
		},
	}, nil
}

// LoadAll loads every script in the plugins directory. Broken scripts are logged and skipped.
func LoadAll() ([]*plugin.Descriptor, error) {
	dir := where.Plugins()
	entries, err := filesystem.API().ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var descriptors []*plugin.Descriptor
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".lua") {
			continue
		}
		d, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			log.Warnf("lua: skipping plugin: %v", err)
			continue
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, nil
}

func parseList[T any](L *lua.LState, field string, parse func(string) (T, error)) ([]T, error) {
	var (
		out []T
		err error
	)
	for _, s := range stringList(L.GetGlobal(field)) {
		v, perr := parse(s)
		if perr != nil {
			err = fmt.Errorf("%s: %w", field, perr)
			break
		}
		out = append(out, v)
	}
	return out, err
}

func stringList(v lua.LValue) []string {
	switch v.Type() {
	case lua.LTString:
		return lo.Compact(lo.Map(strings.Split(v.String(), ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		}))
	case lua.LTTable:
		var list []string
		v.(*lua.LTable).ForEach(func(_, item lua.LValue) {
			if item.Type() == lua.LTString {
				list = append(list, item.String())
			}
		})
		return list
	}
	return nil
}

// Plugin runs one script against one player.
type Plugin struct {
	name string
	core plugin.Core
	opts map[string]any

	mu     sync.Mutex
	L      *lua.LState
	closed bool

	queue     *queue
	listeners []func()
}

func newPlugin(name string, proto *lua.FunctionProto, core plugin.Core, opts map[string]any) (*Plugin, error) {
	p := &Plugin{name: name, core: core, opts: opts, queue: newQueue()}

	L := lua.NewState()
	libs.Preload(L)
	L.PreloadModule(ModuleName, p.module)
	if err := run(L, proto); err != nil {
		L.Close()
		return nil, err
	}
	p.L = L
	return p, nil
}

func (p *Plugin) Init(context.Context) error {
	p.queue.start()
	return p.call(constant.PluginInitFn, p.opts)
}

func (p *Plugin) OnReady(context.Context) error {
	return p.call(constant.PluginOnReadyFn)
}

func (p *Plugin) Destroy(context.Context) error {
	p.mu.Lock()
	listeners := p.listeners
	p.listeners = nil
	p.mu.Unlock()

	for _, off := range listeners {
		off()
	}
	p.queue.stop()

	err := p.call(constant.PluginDestroyFn)

	p.mu.Lock()
	p.closed = true
	p.L.Close()
	p.mu.Unlock()
	return err
}

// call runs an optional global function. Missing functions are not an error.
func (p *Plugin) call(fn string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	f := p.L.GetGlobal(fn)
	if f.Type() != lua.LTFunction {
		return nil
	}
	return p.L.CallByParam(lua.P{Fn: f, NRet: 0, Protect: true}, p.values(args)...)
}

func (p *Plugin) callback(fn *lua.LFunction, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	if err := p.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, p.values(args)...); err != nil {
		log.Warnf("lua: %s: callback: %v", p.name, err)
	}
}

func (p *Plugin) values(args []any) []lua.LValue {
	return lo.Map(args, func(a any, _ int) lua.LValue { return toLua(p.L, a) })
}

// queue serializes callback execution off the emitting goroutine.
type queue struct {
	mu      sync.Mutex
	started bool
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
}

func newQueue() *queue {
	return &queue{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (q *queue) push(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *queue) start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.started {
		q.started = true
		go q.run()
	}
}

func (q *queue) run() {
	defer close(q.stopped)
	for {
		select {
		case <-q.done:
			return
		case <-q.wake:
		}

		for {
			q.mu.Lock()
			if len(q.pending) == 0 {
				q.mu.Unlock()
				break
			}
			fn := q.pending[0]
			q.pending = q.pending[1:]
			q.mu.Unlock()
			fn()
		}
	}
}

// stop ends the worker and waits for it. Pending callbacks are dropped.
func (q *queue) stop() {
	q.mu.Lock()
	started := q.started
	q.started = false
	q.mu.Unlock()

	if !started {
		return
	}
	close(q.done)
	<-q.stopped
}
