package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type statusBar struct {
	message string
	isError bool
	// notice keeps message until the next key press.
	notice  bool
	backend string
	width   int
	help    help.Model
}

func newStatusBar(backend string) statusBar {
	h := help.New()
	h.ShortSeparator = "  "
	return statusBar{message: "Ready", backend: backend, help: h}
}

func (s *statusBar) setMessage(msg string) {
	s.message = msg
	s.isError = false
	s.notice = false
}

func (s *statusBar) setNotice(msg string) {
	s.setMessage(msg)
	s.notice = true
}

func (s *statusBar) setError(msg string) {
	s.message = msg
	s.isError = true
	s.notice = false
}

func (s statusBar) View(shortcuts []key.Binding) string {
	msgStyle := statusBarStyle
	if s.isError {
		msgStyle = msgStyle.Foreground(errorColor)
	}

	left := s.message
	if s.backend != "" {
		left = "[" + s.backend + "] " + left
	}
	right := s.help.ShortHelpView(shortcuts)

	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 0 {
		gap = 0
	}

	content := left + lipgloss.NewStyle().Width(gap).Render("") + right
	return msgStyle.Width(s.width).Render(content)
}
