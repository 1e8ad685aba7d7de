// Package inline runs a scripted list of control commands against a player without any
// interface and streams what happens, one line per event or command result.
package inline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/log"
	"github.com/vplay-cli/vplay/plugin"
)

// Run subscribes to the player's events, issues the commands in order and, with Follow
// set, keeps streaming until the media ends. Commands may be issued before the player
// is ready; the player queues them.
func Run(ctx context.Context, core plugin.Core, options *Options) error {
	if options.Out == nil {
		options.Out = os.Stdout
	}
	w := &writer{out: options.Out, json: options.Json}

	stop := make(chan event.Type, 1)

	ids := make(map[event.Type]event.ListenerID)
	for _, t := range event.Types() {
		t := t
		ids[t] = core.On(t, func(e event.Event) {
			if options.wants(e.Type) {
				line := Line{Player: core.ID(), Time: time.Now(), Event: e.Type, Payload: payload(e.Payload)}
				if err, ok := e.Payload.(error); ok {
					line.Error = err.Error()
					line.Payload = nil
				}
				if err := w.write(line); err != nil {
					log.Warnf("inline: %v", err)
				}
			}
			if e.Type == event.Ended || e.Type == event.Error {
				select {
				case stop <- e.Type:
				default:
				}
			}
		})
	}
	defer func() {
		for t, id := range ids {
			core.Off(t, id)
		}
	}()

	for _, c := range options.Commands {
		if err := execute(ctx, core, c, w); err != nil {
			return err
		}
	}

	if !options.Follow {
		return nil
	}

	select {
	case t := <-stop:
		log.Infof("inline: stopped on %s", t)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func execute(ctx context.Context, core plugin.Core, c Command, w *writer) error {
	var f *mo.Future[float64]
	switch c.Op {
	case OpPlay:
		f = core.Play()
	case OpPause:
		f = core.Pause()
	case OpSeek:
		f = core.Seek(c.Value)
	case OpVolume:
		f = core.SetVolume(c.Value)
	case OpMute:
		f = core.Mute()
	case OpUnmute:
		f = core.Unmute()
	case OpTime:
		f = core.CurrentTime()
	case OpWait:
		select {
		case <-time.After(c.Wait):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	default:
		return fmt.Errorf("unknown command: %s", c.Op)
	}

	result := lo.Async2(f.Collect)
	var (
		v   float64
		err error
	)
	select {
	case r := <-result:
		v, err = r.Unpack()
	case <-ctx.Done():
		return ctx.Err()
	}

	line := Line{Player: core.ID(), Time: time.Now(), Command: c.String()}
	if err != nil {
		line.Error = err.Error()
		if werr := w.write(line); werr != nil {
			return werr
		}
		return fmt.Errorf("%s: %w", c, err)
	}
	if c.Op == OpTime {
		line.Result = &v
	}
	return w.write(line)
}

// payload keeps structured payloads and drops anything that does not serialize.
func payload(v any) any {
	switch v.(type) {
	case nil, error:
		return nil
	case event.TimePayload, event.VolumePayload, event.TrackPayload, map[string]any, string, float64, bool:
		return v
	default:
		return fmt.Sprint(v)
	}
}
