// Package ui renders short-lived notifications under a terminal view.
package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vplay-cli/vplay/style"
)

// Model holds at most one notification at a time.
type Model struct {
	notification string
	notifiedAt   time.Time
}

// ClearNotificationMsg clears the notification shown at At.
type ClearNotificationMsg struct {
	At time.Time
}

// Notify returns a tea.Cmd that shows a formatted notification.
func Notify(format string, args ...any) tea.Cmd {
	msg := fmt.Sprintf(format, args...)
	return func() tea.Msg {
		return msg
	}
}

// ClearNotification clears the notification shown at at after a few seconds.
func ClearNotification(at time.Time) tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return ClearNotificationMsg{At: at}
	})
}

// Update shows string messages and clears them once their time is up. A newer
// notification is not cleared by the timer of an older one.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case string:
		m.notification = msg
		m.notifiedAt = time.Now()
		return ClearNotification(m.notifiedAt)
	case ClearNotificationMsg:
		if msg.At.Equal(m.notifiedAt) {
			m.notification = ""
		}
	}
	return nil
}

// Notification returns what is currently shown.
func (m *Model) Notification() string {
	return m.notification
}

// View appends the notification to the last line of mainContent.
func (m *Model) View(mainContent string) string {
	if m.notification == "" {
		return mainContent
	}

	lines := strings.Split(mainContent, "\n")
	lines[len(lines)-1] += "  " + style.Faint(m.notification)
	return strings.Join(lines, "\n")
}
