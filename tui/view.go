package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"github.com/vplay-cli/vplay/color"
	"github.com/vplay-cli/vplay/icon"
	"github.com/vplay-cli/vplay/style"
)

var (
	listExtraPaddingStyle = lipgloss.NewStyle().Padding(1, 2, 1, 0)
	paddingStyle          = lipgloss.NewStyle().Padding(1, 2)
)

func (b *statefulBubble) View() string {
	var output string

	switch b.state {
	case loadingState:
		output = b.viewLoading()
	case historyState:
		output = b.viewHistory()
	case playingState:
		output = b.viewPlaying()
	case errorState:
		output = b.viewError()
	default:
		output = "Unknown state"
	}

	return b.notifier.View(output)
}

func (b *statefulBubble) viewLoading() string {
	return b.renderLines(
		true,
		[]string{
			style.Title("Loading"),
			"",
			style.Truncate(b.width)(b.spinnerC.View() + " " + b.progressStatus),
		},
	)
}

func (b *statefulBubble) viewHistory() string {
	return listExtraPaddingStyle.Render(b.historyC.View())
}

func (b *statefulBubble) viewPlaying() string {
	p := b.playback

	var title string
	if b.player != nil {
		title = fmt.Sprintf("%s %s", b.player.Kind(), b.player.Type())
	}

	status := icon.Get(icon.Play) + " Playing"
	switch {
	case p.ended:
		status = icon.Get(icon.Success) + " Ended"
	case p.waiting:
		status = b.spinnerC.View() + " Buffering"
	case p.paused:
		status = icon.Get(icon.Pause) + " Paused"
	}

	var ratio float64
	if p.duration > 0 {
		ratio = p.position / p.duration
	}

	volume := fmt.Sprintf("%s %3.0f%%", icon.Get(icon.Volume), p.volume*100)
	if p.muted {
		volume = icon.Get(icon.Mute) + " muted"
	}

	return b.renderLines(
		true,
		[]string{
			style.Title("Now Playing"),
			"",
			style.Truncate(b.width)(fmt.Sprintf("%s %s", icon.Get(icon.Link), style.Fg(color.Purple)(b.source))),
			style.Faint(title),
			"",
			status,
			"",
			b.progressC.ViewAs(ratio),
			fmt.Sprintf("%s / %s", clock(p.position), clock(p.duration)),
			"",
			volume,
		},
	)
}

func (b *statefulBubble) viewError() string {
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	var msg string
	if b.lastError != nil {
		msg = b.lastError.Error()
	}

	return b.renderLines(
		true,
		[]string{
			style.ErrorTitle("Error"),
			"",
			icon.Get(icon.Fail) + " Playback could not continue:",
			"",
			wrap.String(errorStyle.Render(msg), b.width),
		},
	)
}

func (b *statefulBubble) renderLines(addHelp bool, lines []string) string {
	h := len(lines)
	l := strings.Join(lines, "\n")
	if addHelp {
		if b.height > h {
			l += strings.Repeat("\n", b.height-h)
		}
		l += b.helpC.View(b.keymap)
	}

	return paddingStyle.Render(l)
}

func clock(seconds float64) string {
	d := time.Duration(seconds * float64(time.Second)).Truncate(time.Second)
	if d >= time.Hour {
		return fmt.Sprintf("%d:%02d:%02d", int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60)
	}
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
