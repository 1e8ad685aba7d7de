// Package player implements the player core: one consistent control and event surface
// over a provider adapter, whatever backend it wraps.
//
// A player boots asynchronously. Control calls issued before it is ready are queued and
// replayed in issue order exactly once when the adapter becomes ready. Calls issued
// while destroyed are rejected with an ErrInvalidState error.
package player

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/plugin"
	"github.com/vplay-cli/vplay/provider"
	"github.com/vplay-cli/vplay/sdk"
	"github.com/vplay-cli/vplay/util"
)

// Env holds the collaborators shared by players.
type Env struct {
	Providers *provider.Registry
	// Loader tracks remote SDK scripts. It is usually process-wide.
	Loader *sdk.Loader
	// Plugins may be nil when no plugin is configured.
	Plugins *plugin.Registry
	// InitTimeout bounds adapter initialization. Zero means no bound.
	InitTimeout time.Duration
}

type subscription = lo.Tuple2[event.Type, event.ListenerID]

// Player is a player core bound to one provider kind and one adapter for its lifetime.
type Player struct {
	id       string
	log      *log.Entry
	kind     media.Kind
	el       *media.Element
	opts     media.Options
	provider *provider.Provider
	adapter  provider.Adapter
	bus      *event.Bus
	loader   *sdk.Loader
	timeout  time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      State
	queue      []*call
	destroying bool
	err        error
	plugins    util.Stack[plugin.Instance]
	pending    []plugin.Instance
	tracks     []media.Track
	paused     bool
	muted      bool
	loading    bool
	listeners  []subscription

	abort    chan struct{}
	bootDone chan struct{}
	ready    chan struct{}
	closed   chan struct{}
	stop     sync.Once
}

// New validates the options, binds the adapter of kind and starts the boot sequence in
// the background. It returns in the Constructing state; configuration problems are
// reported synchronously as ErrConfig errors.
func New(env Env, kind media.Kind, el *media.Element, opts media.Options) (*Player, error) {
	if env.Providers == nil {
		return nil, &media.Error{Kind: media.ErrConfig, Op: "new player", Err: fmt.Errorf("no provider registry")}
	}
	if el == nil {
		return nil, &media.Error{Kind: media.ErrConfig, Op: "new player", Err: fmt.Errorf("no media element")}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	prov, ok := env.Providers.Get(kind)
	if !ok {
		return nil, &media.Error{Kind: media.ErrConfig, Op: "new player", Err: fmt.Errorf("unsupported provider %q", kind)}
	}
	if !prov.Supports(el.Type()) {
		return nil, &media.Error{Kind: media.ErrConfig, Op: "new player", Err: fmt.Errorf("%s can not play %s", prov.Name, el.Type())}
	}

	var resolved []plugin.Resolved
	if len(opts.Plugins) > 0 {
		if env.Plugins == nil {
			return nil, &media.Error{Kind: media.ErrConfig, Op: "new player", Err: fmt.Errorf("plugins configured without a plugin registry")}
		}
		var err error
		if resolved, err = env.Plugins.Resolve(opts.Plugins, kind, el.Type()); err != nil {
			return nil, err
		}
	}

	script, needsScript := prov.Script.Get()
	if needsScript && env.Loader == nil {
		return nil, &media.Error{Kind: media.ErrConfig, Op: "new player", Err: fmt.Errorf("%s needs an sdk loader", prov.Name)}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Player{
		id:       uuid.NewString(),
		kind:     kind,
		el:       el,
		opts:     opts.Clone(),
		provider: prov,
		adapter:  prov.New(),
		bus:      event.NewBus(),
		loader:   env.Loader,
		timeout:  env.InitTimeout,
		ctx:      ctx,
		cancel:   cancel,
		state:    Constructing,
		paused:   true,
		abort:    make(chan struct{}),
		bootDone: make(chan struct{}),
		ready:    make(chan struct{}),
		closed:   make(chan struct{}),
	}

	p.log = log.With("player", p.id).With("kind", kind)
	p.observe()

	// Initial options obey the same queue as application calls.
	if p.opts.Muted {
		p.Mute()
	}
	if p.opts.Autoplay {
		p.Play()
	}

	p.pending = plugin.Build(p, resolved)

	p.log.Infof("constructing %s player", kind)
	go p.boot(script, needsScript)
	return p, nil
}

// boot walks the player from Constructing to Ready, or to Destroyed on failure. bootDone
// closes once no boot step touches the adapter or a plugin anymore.
func (p *Player) boot(script sdk.Script, needsScript bool) {
	defer close(p.bootDone)

	if needsScript {
		if !p.loader.Requires(p.kind) {
			p.loader.Register(script)
		}
		if err := p.waitSDK(); err != nil {
			if err != errAborted {
				p.fail(err)
			}
			return
		}
	}

	if !p.transition(Initializing) {
		return
	}

	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.log.Debugf("initializing %s adapter", p.kind)
	err := p.adapter.Initialize(ctx, p.el, p.opts, p.emit)
	if err != nil {
		p.fail(media.Wrap(media.ErrAdapterInit, "initialize", err))
		return
	}

	if tl, ok := p.adapter.(provider.TrackLister); ok {
		tracks := tl.Tracks()
		p.mu.Lock()
		p.tracks = tracks
		p.mu.Unlock()
	}

	if !p.flush() {
		return
	}

	p.log.Infof("ready")
	p.bus.Emit(event.Ready, nil)
	if p.activate() {
		close(p.ready)
	}
}

// stopping reports whether a destroy is pending.
func (p *Player) stopping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.destroying
}

// waitSDK blocks until the provider script settles or the player is destroyed.
func (p *Player) waitSDK() error {
	settled := make(chan error, 1)

	if p.loader.State(p.kind) != sdk.Loaded && !p.transition(WaitingForSDK) {
		return errAborted
	}

	if err := p.loader.Ensure(p.kind, func(err error) { settled <- err }); err != nil {
		return err
	}

	select {
	case err := <-settled:
		return err
	case <-p.abort:
		return errAborted
	}
}

// transition moves the player forward unless a destroy is pending.
func (p *Player) transition(to State) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.destroying || p.state == Destroyed {
		return false
	}
	p.log.Debugf("%s -> %s", p.state, to)
	p.state = to
	return true
}

// flush replays the queued calls in issue order. Calls queued while flushing form a new
// segment replayed after the current one. The player turns Ready only once the queue is
// observed empty, so the queue is drained exactly once.
func (p *Player) flush() bool {
	for {
		p.mu.Lock()
		if p.destroying {
			p.mu.Unlock()
			return false
		}
		batch := p.queue
		p.queue = nil
		if len(batch) == 0 {
			p.state = Ready
			p.mu.Unlock()
			return true
		}
		p.mu.Unlock()

		p.log.Debugf("flushing %d queued calls", len(batch))
		for i, c := range batch {
			if p.stopping() {
				for _, rest := range batch[i:] {
					rest.reject(media.InvalidState(rest.name, "player destroyed before it was ready"))
				}
				return false
			}
			c.execute(p.ctx, p.adapter)
		}
	}
}

// activate runs the plugin hooks in configured order. A failing plugin is logged and
// does not prevent the others from activating. It stops at the first hook boundary
// after a destroy was requested and reports whether every plugin got its turn.
func (p *Player) activate() bool {
	for _, inst := range p.pending {
		p.mu.Lock()
		if p.destroying {
			p.mu.Unlock()
			return false
		}
		p.plugins.Push(inst)
		p.mu.Unlock()

		if err := plugin.Hook(inst.Name, "init", func() error { return inst.Plugin.Init(p.ctx) }); err != nil {
			p.log.Errorf("%v", err)
			continue
		}
		if p.stopping() {
			return false
		}
		if err := plugin.Hook(inst.Name, "on ready", func() error { return inst.Plugin.OnReady(p.ctx) }); err != nil {
			p.log.Errorf("%v", err)
		}
	}
	return !p.stopping()
}

// fail surfaces a fatal boot error as an error event and tears the player down.
func (p *Player) fail(err error) {
	p.mu.Lock()
	if p.destroying {
		p.mu.Unlock()
		return
	}
	p.destroying = true
	p.err = err
	pending := p.queue
	p.queue = nil
	p.mu.Unlock()

	p.log.Errorf("%v", err)
	p.bus.Emit(event.Error, err)

	for _, c := range pending {
		c.reject(err)
	}
	p.teardown()
}

// Destroy tears the player down: core listeners are removed, plugins are destroyed in
// reverse activation order, then the adapter is destroyed. A boot step in flight, such
// as adapter initialization, a queued call or a plugin hook, is awaited first. Queued
// calls that have not started are rejected. Calling Destroy again is a no-op. Event
// handlers must not call Destroy while the player boots.
func (p *Player) Destroy(ctx context.Context) error {
	p.mu.Lock()
	if p.destroying {
		p.mu.Unlock()
		return nil
	}
	p.destroying = true
	pending := p.queue
	p.queue = nil
	p.mu.Unlock()

	close(p.abort)
	for _, c := range pending {
		c.reject(media.InvalidState(c.name, "player destroyed before it was ready"))
	}

	go func() {
		<-p.bootDone
		p.teardown()
	}()

	select {
	case <-p.closed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Player) teardown() {
	p.stop.Do(func() {
		p.mu.Lock()
		listeners := p.listeners
		p.listeners = nil
		p.mu.Unlock()

		for _, l := range listeners {
			p.bus.Off(l.A, l.B)
		}

		for {
			p.mu.Lock()
			inst, ok := p.plugins.Pop()
			p.mu.Unlock()
			if !ok {
				break
			}

			if err := plugin.Hook(inst.Name, "destroy", func() error { return inst.Plugin.Destroy(context.Background()) }); err != nil {
				p.log.Errorf("%v", err)
			}
		}

		if err := p.adapter.Destroy(context.Background()); err != nil {
			p.log.Warnf("destroying adapter: %v", err)
		}

		p.mu.Lock()
		p.state = Destroyed
		p.mu.Unlock()

		p.bus.Clear()
		p.cancel()
		close(p.closed)
		p.log.Infof("destroyed")
	})
}

// WaitReady blocks until the player is ready and its plugins are activated. It returns the fatal error when the
// player failed, or an ErrInvalidState error when it was destroyed first.
func (p *Player) WaitReady(ctx context.Context) error {
	select {
	case <-p.ready:
		return nil
	case <-p.closed:
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.err != nil {
			return p.err
		}
		return media.InvalidState("wait ready", "player destroyed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed once the player is destroyed.
func (p *Player) Done() <-chan struct{} {
	return p.closed
}

// Err returns the fatal error that destroyed the player, if any.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Player) emit(t event.Type, payload any) {
	p.mu.Lock()
	dead := p.state == Destroyed
	p.mu.Unlock()

	if !dead {
		p.bus.Emit(t, payload)
	}
}

// observe subscribes the core listeners that derive the paused, loading and muted flags.
func (p *Player) observe() {
	set := func(fn func()) event.Handler {
		return func(event.Event) {
			p.mu.Lock()
			fn()
			p.mu.Unlock()
		}
	}

	subscribe := func(t event.Type, fn event.Handler) {
		p.listeners = append(p.listeners, lo.T2(t, p.bus.On(t, fn)))
	}

	subscribe(event.Play, set(func() { p.paused = false }))
	subscribe(event.Playing, set(func() { p.paused, p.loading = false, false }))
	subscribe(event.Pause, set(func() { p.paused = true }))
	subscribe(event.Waiting, set(func() { p.loading = true }))
	subscribe(event.Seeking, set(func() { p.loading = true }))
	subscribe(event.Seeked, set(func() { p.loading = false }))
	subscribe(event.VolumeChange, func(e event.Event) {
		if v, ok := e.Payload.(event.VolumePayload); ok {
			p.mu.Lock()
			p.muted = v.Muted
			p.mu.Unlock()
		}
	})
	subscribe(event.Ended, func(event.Event) {
		p.mu.Lock()
		p.paused = true
		loop := p.opts.Loop
		p.mu.Unlock()

		if loop {
			go func() {
				if _, err := p.Seek(0).Collect(); err != nil {
					p.log.Warnf("loop: %v", err)
					return
				}
				if _, err := p.Play().Collect(); err != nil {
					p.log.Warnf("loop: %v", err)
				}
			}()
		}
	})
}

func (p *Player) ID() string              { return p.id }
func (p *Player) Kind() media.Kind        { return p.kind }
func (p *Player) Type() media.Type        { return p.el.Type() }
func (p *Player) Element() *media.Element { return p.el }
func (p *Player) Options() media.Options  { return p.opts.Clone() }

// State returns the current lifecycle state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Tracks returns the text tracks captured when the adapter initialized.
func (p *Player) Tracks() []media.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]media.Track(nil), p.tracks...)
}

func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

func (p *Player) Muted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.muted
}

// Loading reports whether the backend is buffering or seeking.
func (p *Player) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// On subscribes fn to events of type t.
func (p *Player) On(t event.Type, fn event.Handler) event.ListenerID {
	return p.bus.On(t, fn)
}

// Off removes a listener registered with On.
func (p *Player) Off(t event.Type, id event.ListenerID) {
	p.bus.Off(t, id)
}

// Dispatch emits an event of the common vocabulary on the player's bus.
func (p *Player) Dispatch(t event.Type, payload any) error {
	if !t.Valid() {
		return &media.Error{Kind: media.ErrConfig, Op: "dispatch", Err: fmt.Errorf("unknown event %q", t)}
	}
	if p.State() == Destroyed {
		return media.InvalidState("dispatch", "player destroyed")
	}
	p.bus.Emit(t, payload)
	return nil
}

var _ plugin.Core = (*Player)(nil)

// rejected returns a future that fails with err.
func rejected(err error) *mo.Future[float64] {
	return mo.NewFuture(func(_ func(float64), reject func(error)) { reject(err) })
}

// resolved returns a settled future.
func resolved(v float64, err error) *mo.Future[float64] {
	return mo.NewFuture(func(resolve func(float64), reject func(error)) {
		if err != nil {
			reject(err)
			return
		}
		resolve(v)
	})
}
