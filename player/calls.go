package player

import (
	"context"

	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/provider"
)

type outcome struct {
	value float64
	err   error
}

// call is a control method invocation waiting for the adapter to become ready.
type call struct {
	name string
	args []any
	run  func(ctx context.Context, a provider.Adapter) (float64, error)
	done chan outcome
}

func (c *call) execute(ctx context.Context, a provider.Adapter) {
	v, err := c.run(ctx, a)
	c.done <- outcome{value: v, err: err}
}

func (c *call) reject(err error) {
	c.done <- outcome{err: err}
}

// submit runs fn now when the player is ready, queues it when it is still booting and
// rejects it once the player is destroyed or being destroyed.
func (p *Player) submit(name string, fn func(ctx context.Context, a provider.Adapter) (float64, error), args ...any) *mo.Future[float64] {
	p.mu.Lock()
	switch {
	case p.destroying || p.state == Destroyed:
		p.mu.Unlock()
		return rejected(media.InvalidState(name, "player destroyed"))
	case p.state == Ready:
		p.mu.Unlock()
		return resolved(fn(p.ctx, p.adapter))
	}

	c := &call{name: name, args: args, run: fn, done: make(chan outcome, 1)}
	p.queue = append(p.queue, c)
	p.mu.Unlock()

	p.log.Tracef("queued %s%v", name, args)
	return mo.NewFuture(func(resolve func(float64), reject func(error)) {
		o := <-c.done
		if o.err != nil {
			reject(o.err)
			return
		}
		resolve(o.value)
	})
}

func void(err error) (float64, error) {
	return 0, err
}

// Play starts playback.
func (p *Player) Play() *mo.Future[float64] {
	return p.submit("play", func(ctx context.Context, a provider.Adapter) (float64, error) {
		return void(a.Play(ctx))
	})
}

// Pause pauses playback.
func (p *Player) Pause() *mo.Future[float64] {
	return p.submit("pause", func(ctx context.Context, a provider.Adapter) (float64, error) {
		return void(a.Pause(ctx))
	})
}

// Seek moves the playhead to seconds.
func (p *Player) Seek(seconds float64) *mo.Future[float64] {
	return p.submit("seek", func(ctx context.Context, a provider.Adapter) (float64, error) {
		return void(a.Seek(ctx, seconds))
	}, seconds)
}

// SetVolume sets the volume, from 0 to 1.
func (p *Player) SetVolume(level float64) *mo.Future[float64] {
	if level < 0 || level > 1 {
		return rejected(&media.Error{Kind: media.ErrConfig, Op: "set volume", Err: errVolumeRange})
	}
	return p.submit("set volume", func(ctx context.Context, a provider.Adapter) (float64, error) {
		return void(a.SetVolume(ctx, level))
	}, level)
}

// Mute silences playback.
func (p *Player) Mute() *mo.Future[float64] {
	return p.submit("mute", func(ctx context.Context, a provider.Adapter) (float64, error) {
		if err := a.Mute(ctx); err != nil {
			return 0, err
		}
		p.setMuted(true)
		return 0, nil
	})
}

// Unmute restores sound.
func (p *Player) Unmute() *mo.Future[float64] {
	return p.submit("unmute", func(ctx context.Context, a provider.Adapter) (float64, error) {
		if err := a.Unmute(ctx); err != nil {
			return 0, err
		}
		p.setMuted(false)
		return 0, nil
	})
}

// CurrentTime resolves to the playhead position in seconds.
func (p *Player) CurrentTime() *mo.Future[float64] {
	return p.submit("current time", func(ctx context.Context, a provider.Adapter) (float64, error) {
		return a.CurrentTime(ctx)
	})
}

// Duration resolves to the media duration in seconds.
func (p *Player) Duration() *mo.Future[float64] {
	return p.submit("duration", func(ctx context.Context, a provider.Adapter) (float64, error) {
		return a.Duration(ctx)
	})
}

func (p *Player) setMuted(muted bool) {
	p.mu.Lock()
	p.muted = muted
	p.mu.Unlock()
}
