package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/vplay-cli/vplay/history"
	"github.com/vplay-cli/vplay/icon"
	"github.com/vplay-cli/vplay/media"
	"github.com/vplay-cli/vplay/style"
)

// listItem adapts a saved history entry to list.Item.
type listItem struct {
	internal any
}

func (t *listItem) entry() *history.Entry {
	e, _ := t.internal.(*history.Entry)
	return e
}

func (t *listItem) Title() string {
	e := t.entry()
	if e == nil {
		return t.FilterValue()
	}

	mark := icon.Get(icon.Link)
	if e.Kind != media.HTML5 {
		mark = icon.Get(icon.Play)
	}
	return fmt.Sprintf("%s %s", mark, e.Key)
}

func (t *listItem) Description() string {
	e := t.entry()
	if e == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(style.Faint(string(e.Kind)))
	sb.WriteString(" ")
	sb.WriteString(fmt.Sprintf("%s / %s (%.0f%%)", clock(e.Position), clock(e.Duration), e.Percentage()))
	if !e.UpdatedAt.IsZero() {
		sb.WriteString(" ")
		sb.WriteString(style.Faint(humanize.Time(e.UpdatedAt)))
	}
	return sb.String()
}

func (t *listItem) FilterValue() string {
	if e := t.entry(); e != nil {
		return e.Key
	}
	return fmt.Sprint(t.internal)
}
