package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	bubblesKey "github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/event"
	"github.com/vplay-cli/vplay/internal/ui"
	"github.com/vplay-cli/vplay/util"
)

// playback mirrors what the player last reported through its events.
type playback struct {
	position, duration float64
	volume             float64
	muted, paused      bool
	waiting, ended     bool
}

// statefulBubble holds the component models and the player currently driven.
type statefulBubble struct {
	state state

	keymap *statefulKeymap

	// components
	spinnerC  spinner.Model
	historyC  list.Model
	progressC progress.Model
	helpC     help.Model

	notifier *ui.Model

	player    Controls
	source    string
	listeners map[event.Type]event.ListenerID
	events    chan event.Event
	playback  playback

	progressStatus string
	lastError      error

	width, height int

	options *Options
}

func (b *statefulBubble) raiseError(err error) {
	b.lastError = err
	b.setState(errorState)
}

func (b *statefulBubble) setState(s state) {
	b.state = s
	b.keymap.setState(s)
}

func (b *statefulBubble) resize(width, height int) {
	x, y := paddingStyle.GetFrameSize()
	xx, yy := listExtraPaddingStyle.GetFrameSize()

	listWidth := width - xx
	listHeight := height - yy

	b.historyC.SetSize(listWidth, listHeight)
	b.historyC.Help.Width = listWidth

	b.progressC.Width = listWidth
	b.helpC.Width = listWidth

	b.width = width - x
	b.height = height - y
}

// close releases the player, if any. Safe to call more than once.
func (b *statefulBubble) close() {
	if b.player == nil {
		return
	}

	for t, id := range b.listeners {
		b.player.Off(t, id)
	}
	b.listeners = nil

	player := b.player
	b.player = nil
	b.playback = playback{}

	ctx, cancel := destroyContext()
	defer cancel()
	_ = player.Destroy(ctx)
}

func newBubble(options *Options) *statefulBubble {
	bubble := statefulBubble{
		keymap:   newStatefulKeymap(),
		notifier: &ui.Model{},
		options:  options,
	}

	makeList := func(title string, titleStyle lipgloss.Style) list.Model {
		delegate := list.NewDefaultDelegate()
		delegate.Styles.SelectedTitle = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(color.Accent).
			Foreground(color.Accent).
			Padding(0, 0, 0, 1)
		delegate.Styles.NormalTitle = delegate.Styles.NormalTitle.Foreground(lipgloss.Color("7"))
		delegate.Styles.SelectedDesc = delegate.Styles.SelectedTitle

		listC := list.New([]list.Item{}, delegate, 0, 0)
		listC.KeyMap = bubble.keymap.forList()
		listC.AdditionalShortHelpKeys = bubble.keymap.ShortHelp
		listC.AdditionalFullHelpKeys = func() []bubblesKey.Binding {
			return bubble.keymap.FullHelp()[0]
		}
		listC.Title = title
		listC.Styles.NoItems = paddingStyle
		listC.Styles.Title = titleStyle
		listC.StatusMessageLifetime = time.Hour * 999
		listC.SetShowPagination(false)

		return listC
	}

	bubble.helpC = help.New()

	bubble.spinnerC = spinner.New()
	bubble.spinnerC.Spinner = spinner.Dot
	bubble.spinnerC.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	bubble.progressC = progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())

	bubble.historyC = makeList("Continue Watching",
		lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(color.Yellow).Padding(0, 1),
	)
	bubble.historyC.SetStatusBarItemName("entry", "entries")

	if options.SeekStep <= 0 {
		options.SeekStep = 5
	}
	if options.VolumeStep <= 0 {
		options.VolumeStep = 0.05
	}

	if w, h, err := util.TerminalSize(); err == nil {
		bubble.resize(w, h)
	}

	return &bubble
}
