package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/icon"
	"github.com/vplay-cli/vplay/internal/ui"
	"github.com/vplay-cli/vplay/log"
)

func (b *statefulBubble) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.forceQuit) {
			return b, tea.Quit
		}
	case errMsg:
		log.Error(msg.err)
		b.raiseError(msg.err)
		return b, nil
	case string:
		return b, b.notifier.Update(msg)
	case ui.ClearNotificationMsg:
		return b, b.notifier.Update(msg)
	}

	switch b.state {
	case loadingState:
		return b.updateLoading(msg)
	case historyState:
		return b.updateHistory(msg)
	case playingState:
		return b.updatePlaying(msg)
	case errorState:
		return b.updateError(msg)
	}

	return b, nil
}

func (b *statefulBubble) updateLoading(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case openedMsg:
		b.attach(msg.source, msg.player)
		b.progressStatus = "Waiting for the player"
		return b, tea.Batch(b.waitReady(msg.player), b.waitForEvent())
	case readyMsg:
		if msg.player != b.player {
			return b, nil
		}
		if msg.err != nil {
			log.Error(msg.err)
			b.raiseError(msg.err)
			return b, nil
		}
		b.setState(playingState)
		return b, nil
	case playerMsg:
		return b, b.handleEvent(event.Event(msg))
	case playerGoneMsg:
		return b, b.handleGone(msg)
	case tea.KeyMsg:
		if key.Matches(msg, b.keymap.back) {
			return b, b.backToHistory()
		}
	}

	var cmd tea.Cmd
	b.spinnerC, cmd = b.spinnerC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updateHistory(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case historyMsg:
		items := make([]list.Item, len(msg))
		for i, e := range msg {
			items[i] = &listItem{internal: e}
		}
		return b, b.historyC.SetItems(items)
	case tea.KeyMsg:
		if b.historyC.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case key.Matches(msg, b.keymap.confirm):
			item, ok := b.historyC.SelectedItem().(*listItem)
			if !ok {
				return b, nil
			}
			b.setState(loadingState)
			return b, tea.Batch(b.spinnerC.Tick, b.open(item.entry().Key))
		case key.Matches(msg, b.keymap.remove):
			item, ok := b.historyC.SelectedItem().(*listItem)
			if !ok {
				return b, nil
			}
			return b, b.removeHistory(item.entry())
		}
	}

	var cmd tea.Cmd
	b.historyC, cmd = b.historyC.Update(msg)
	return b, cmd
}

func (b *statefulBubble) updatePlaying(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case playerMsg:
		return b, b.handleEvent(event.Event(msg))
	case playerGoneMsg:
		return b, b.handleGone(msg)
	case controlMsg:
		if msg.err != nil {
			log.Warnf("%s: %v", msg.name, msg.err)
			return b, ui.Notify("%s %s failed: %v", icon.Get(icon.Fail), msg.name, msg.err)
		}
		return b, nil
	case castMsg:
		if msg.err != nil {
			return b, ui.Notify("%s cast: %v", icon.Get(icon.Fail), msg.err)
		}
		return b, ui.Notify("%s casting", icon.Get(icon.Cast))
	case tea.KeyMsg:
		if b.player == nil {
			return b, nil
		}

		switch {
		case key.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case key.Matches(msg, b.keymap.back):
			return b, b.backToHistory()
		case key.Matches(msg, b.keymap.playPause):
			return b, b.togglePlay()
		case key.Matches(msg, b.keymap.seekBack):
			return b, b.seekBy(-b.options.SeekStep)
		case key.Matches(msg, b.keymap.seekForward):
			return b, b.seekBy(b.options.SeekStep)
		case key.Matches(msg, b.keymap.volumeUp):
			return b, b.volumeBy(b.options.VolumeStep)
		case key.Matches(msg, b.keymap.volumeDown):
			return b, b.volumeBy(-b.options.VolumeStep)
		case key.Matches(msg, b.keymap.mute):
			return b, b.toggleMute()
		case key.Matches(msg, b.keymap.replay):
			return b, b.replay()
		case key.Matches(msg, b.keymap.cast):
			return b, b.requestCast()
		case key.Matches(msg, b.keymap.browse):
			return b, b.browse()
		case key.Matches(msg, b.keymap.showHelp):
			b.helpC.ShowAll = !b.helpC.ShowAll
		}
	}

	return b, nil
}

func (b *statefulBubble) updateError(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(msg, b.keymap.quit):
			return b, tea.Quit
		case key.Matches(msg, b.keymap.back):
			b.lastError = nil
			return b, b.backToHistory()
		}
	}
	return b, nil
}

// handleEvent folds a player event into the playback view and keeps draining.
func (b *statefulBubble) handleEvent(e event.Event) tea.Cmd {
	p := &b.playback

	switch e.Type {
	case event.Play, event.Playing:
		p.paused, p.waiting, p.ended = false, false, false
	case event.Pause:
		p.paused = true
	case event.Waiting, event.Seeking:
		p.waiting = true
	case event.Seeked:
		p.waiting = false
	case event.TimeUpdate:
		if t, ok := e.Payload.(event.TimePayload); ok {
			p.position = t.CurrentTime
			if t.Duration > 0 {
				p.duration = t.Duration
			}
		}
	case event.VolumeChange:
		if v, ok := e.Payload.(event.VolumePayload); ok {
			p.volume, p.muted = v.Volume, v.Muted
		}
	case event.Ended:
		p.ended, p.paused = true, true
	case event.Error:
		err, _ := e.Payload.(error)
		err = lo.Ternary(err != nil, err, errors.New("playback failed"))
		log.Warnf("player: %v", err)
		return tea.Batch(
			ui.Notify("%s %v", icon.Get(icon.Fail), err),
			b.waitForEvent(),
		)
	}

	return b.waitForEvent()
}

// handleGone reacts to a player shutting down on its own.
func (b *statefulBubble) handleGone(msg playerGoneMsg) tea.Cmd {
	if msg.player != b.player {
		return nil
	}

	b.listeners = nil
	b.player = nil
	if err := msg.player.Err(); err != nil {
		b.raiseError(err)
		return nil
	}

	return b.backToHistory()
}

func (b *statefulBubble) backToHistory() tea.Cmd {
	b.close()
	b.setState(historyState)
	return b.loadHistory()
}
