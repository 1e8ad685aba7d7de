package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/style"
)

// statefulKeymap holds every binding. Which ones apply depends on the view state.
type statefulKeymap struct {
	state state

	quit, forceQuit,
	confirm, remove, back,
	up, down, left, right,
	top, bottom,
	playPause, seekBack, seekForward,
	volumeUp, volumeDown, mute,
	replay, cast, browse,
	showHelp key.Binding
}

func (k *statefulKeymap) setState(newState state) {
	k.state = newState
}

// bind creates a binding whose help shows label next to desc.
func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

func newStatefulKeymap() *statefulKeymap {
	orange := style.Fg(color.Orange)

	return &statefulKeymap{
		quit:      bind("q", "quit", "q"),
		forceQuit: bind("ctrl+c", "quit", "ctrl+c", "ctrl+d"),
		confirm:   key.NewBinding(key.WithKeys("enter"), key.WithHelp(orange("enter"), orange("play"))),
		remove:    bind("d", "forget", "d"),
		back:      bind("esc", "back", "esc"),

		// History list navigation.
		up:     bind("↑", "up", "up", "k"),
		down:   bind("↓", "down", "down", "j"),
		left:   bind("←", "prev page", "left", "h"),
		right:  bind("→", "next page", "right", "l"),
		top:    bind("g", "top", "g", "home"),
		bottom: bind("G", "bottom", "G", "end"),

		// Playback. Arrows seek and change volume once a player is open.
		playPause:   bind("space", "play/pause", " ", "p"),
		seekBack:    bind("←", "rewind", "left", "h"),
		seekForward: bind("→", "forward", "right", "l"),
		volumeUp:    bind("↑", "volume up", "up", "+", "="),
		volumeDown:  bind("↓", "volume down", "down", "-"),
		mute:        bind("m", "mute", "m"),
		replay:      bind("r", "replay", "r"),
		cast:        bind("c", "cast", "c"),
		browse:      bind("o", "open in browser", "o"),

		showHelp: bind("?", "help", "?"),
	}
}

// help returns the short and the full help of the current state.
func (k *statefulKeymap) help() (short, full []key.Binding) {
	switch k.state {
	case loadingState:
		full = []key.Binding{k.forceQuit, k.back}
	case historyState:
		full = []key.Binding{k.confirm, k.remove, k.quit}
	case playingState:
		short = []key.Binding{k.playPause, k.seekBack, k.seekForward, k.mute, k.back}
		full = []key.Binding{
			k.playPause, k.seekBack, k.seekForward,
			k.volumeUp, k.volumeDown, k.mute,
			k.replay, k.cast, k.browse,
			k.back, k.quit,
		}
		return short, full
	case errorState:
		full = []key.Binding{k.back, k.quit}
	}
	return full, full
}

func (k *statefulKeymap) ShortHelp() []key.Binding {
	short, _ := k.help()
	return short
}

func (k *statefulKeymap) FullHelp() [][]key.Binding {
	_, full := k.help()
	return [][]key.Binding{full}
}

func (k *statefulKeymap) forList() list.KeyMap {
	return list.KeyMap{
		CursorUp:             k.up,
		CursorDown:           k.down,
		NextPage:             k.right,
		PrevPage:             k.left,
		GoToStart:            k.top,
		GoToEnd:              k.bottom,
		ClearFilter:          k.back,
		CancelWhileFiltering: k.back,
		AcceptWhileFiltering: k.confirm,
		ShowFullHelp:         k.showHelp,
		CloseFullHelp:        k.showHelp,
		Quit:                 k.quit,
		ForceQuit:            k.forceQuit,
	}
}
