package tui

import (
	"context"
	"fmt"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/history"
	"github.com/vplay-cli/vplay/log"
)

type (
	openedMsg struct {
		source string
		player Controls
	}
	readyMsg struct {
		player Controls
		err    error
	}
	playerMsg     event.Event
	playerGoneMsg struct{ player Controls }
	historyMsg    []*history.Entry
	controlMsg    struct {
		name string
		err  error
	}
	castMsg struct{ err error }
	errMsg  struct{ err error }
)

func destroyContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (b *statefulBubble) open(source string) tea.Cmd {
	b.progressStatus = fmt.Sprintf("Opening %s", source)
	return func() tea.Msg {
		log.Info("opening " + source)
		player, err := b.options.Open(source)
		if err != nil {
			return errMsg{err}
		}
		return openedMsg{source: source, player: player}
	}
}

// attach makes p the driven player and starts listening to it. Events are queued on
// a buffered channel and drained one message at a time. Events are dropped when the
// interface falls behind so the player never blocks on it.
func (b *statefulBubble) attach(source string, p Controls) {
	b.close()

	b.player = p
	b.source = source
	b.events = make(chan event.Event, 256)
	b.listeners = make(map[event.Type]event.ListenerID)
	b.playback = playback{volume: 1, paused: p.Paused(), muted: p.Muted()}

	events := b.events
	for _, t := range event.Types() {
		b.listeners[t] = p.On(t, func(e event.Event) {
			select {
			case events <- e:
			default:
			}
		})
	}
}

func (b *statefulBubble) waitReady(p Controls) tea.Cmd {
	return func() tea.Msg {
		return readyMsg{player: p, err: p.WaitReady(context.Background())}
	}
}

func (b *statefulBubble) waitForEvent() tea.Cmd {
	p, events := b.player, b.events
	if p == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case e := <-events:
			return playerMsg(e)
		case <-p.Done():
			return playerGoneMsg{p}
		}
	}
}

func (b *statefulBubble) loadHistory() tea.Cmd {
	return func() tea.Msg {
		saved, err := history.Get()
		if err != nil {
			return errMsg{err}
		}

		entries := lo.Values(saved)
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
		})
		return historyMsg(entries)
	}
}

func (b *statefulBubble) removeHistory(e *history.Entry) tea.Cmd {
	return func() tea.Msg {
		if err := history.Remove(e.Key); err != nil {
			return errMsg{err}
		}
		return b.loadHistory()()
	}
}

// control waits for a queued call to settle. A rejected call is reported, not fatal.
func control(name string, f *mo.Future[float64]) tea.Cmd {
	return func() tea.Msg {
		_, err := f.Collect()
		return controlMsg{name: name, err: err}
	}
}

func (b *statefulBubble) togglePlay() tea.Cmd {
	if b.playback.paused || b.playback.ended {
		return control("play", b.player.Play())
	}
	return control("pause", b.player.Pause())
}

func (b *statefulBubble) seekBy(delta float64) tea.Cmd {
	target := b.playback.position + delta
	if b.playback.duration > 0 {
		target = min(target, b.playback.duration)
	}
	target = max(target, 0)
	b.playback.position = target
	return control("seek", b.player.Seek(target))
}

func (b *statefulBubble) volumeBy(delta float64) tea.Cmd {
	level := lo.Clamp(b.playback.volume+delta, 0, 1)
	b.playback.volume = level
	return control("volume", b.player.SetVolume(level))
}

func (b *statefulBubble) toggleMute() tea.Cmd {
	if b.playback.muted {
		return control("unmute", b.player.Unmute())
	}
	return control("mute", b.player.Mute())
}

func (b *statefulBubble) replay() tea.Cmd {
	b.playback.ended = false
	return tea.Sequence(control("seek", b.player.Seek(0)), control("play", b.player.Play()))
}

func (b *statefulBubble) requestCast() tea.Cmd {
	remote := b.options.Remote
	return func() tea.Msg {
		if remote == nil {
			return castMsg{fmt.Errorf("no cast device configured")}
		}
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return castMsg{remote.RequestSession(ctx)}
	}
}

func (b *statefulBubble) browse() tea.Cmd {
	p, browse := b.player, b.options.Browse
	if browse == nil {
		return nil
	}
	return func() tea.Msg {
		if err := browse(p.Kind(), p.Element()); err != nil {
			return controlMsg{name: "open", err: err}
		}
		return nil
	}
}
