package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/nav"
)

const fromColumnWidth = 20

// inboxModel lists the inbox. It starts loading and ignores everything but
// quit until the list arrives.
type inboxModel struct {
	seq     int
	emails  []domain.Email
	cursor  int
	offset  int
	loading bool
	err     error
	spinner spinner.Model
	width   int
	height  int
}

func newInbox(seq, w, h int) inboxModel {
	return inboxModel{
		seq:     seq,
		loading: true,
		spinner: newSpinner(),
		width:   w,
		height:  h,
	}
}

func (m inboxModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m inboxModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case inboxLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			m.emails = nil
			m.clampCursor()
			return m, nil
		}
		m.err = nil
		if msg.page != nil {
			m.emails = msg.page.Emails
		}
		m.clampCursor()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, navigate(nav.Quit())
		}
		if m.loading {
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.adjustScroll()
			}

		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.emails)-1 {
				m.cursor++
				m.adjustScroll()
			}

		case key.Matches(msg, keys.Enter):
			if id := m.selectedID(); id != "" {
				return m, navigate(nav.Open(id))
			}

		case key.Matches(msg, keys.Compose):
			return m, navigate(nav.ComposeNew())

		case key.Matches(msg, keys.Refresh):
			m.loading = true
			m.err = nil
			seq := m.seq
			return m, tea.Batch(m.spinner.Tick, func() tea.Msg { return refreshMsg{seq: seq} })
		}
	}
	return m, nil
}

func (m inboxModel) View() string {
	switch {
	case m.loading:
		return m.spinner.View() + " Loading inbox..."
	case m.err != nil:
		return errorTextStyle.Render("Error: "+m.err.Error()) + "\n\n" +
			mutedTextStyle.Render("Press r to retry")
	case len(m.emails) == 0:
		return mutedTextStyle.Render("No messages")
	}

	var b strings.Builder
	end := min(m.offset+m.visibleRows(), len(m.emails))
	for i := m.offset; i < end; i++ {
		if i > m.offset {
			b.WriteByte('\n')
		}
		b.WriteString(m.renderRow(i))
	}
	return b.String()
}

func (m inboxModel) SetSize(w, h int) screenModel {
	m.width = w
	m.height = h
	m.adjustScroll()
	return m
}

func (m inboxModel) HelpKeys() []key.Binding {
	return bindings{keys.Up, keys.Down, keys.Enter, keys.Compose, keys.Refresh, keys.Quit}
}

// selectedID returns the ID of the highlighted email, or "" if nothing is shown.
func (m inboxModel) selectedID() string {
	if m.err != nil || m.cursor < 0 || m.cursor >= len(m.emails) {
		return ""
	}
	return m.emails[m.cursor].ID
}

// --- internal helpers ---

func (m inboxModel) visibleRows() int {
	if m.height < 1 {
		return 1
	}
	return m.height
}

func (m *inboxModel) adjustScroll() {
	visible := m.visibleRows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visible {
		m.offset = m.cursor - visible + 1
	}
}

func (m *inboxModel) clampCursor() {
	if len(m.emails) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.emails) {
		m.cursor = len(m.emails) - 1
	}
	m.adjustScroll()
}

func (m inboxModel) renderRow(idx int) string {
	e := m.emails[idx]

	marker := "  "
	if !e.IsRead {
		marker = unreadMarkerStyle.Render("● ")
	}

	date := relativeDate(e.Date)
	dateWidth := runewidth.StringWidth(date)
	subjectWidth := m.width - fromColumnWidth - dateWidth - 6 // marker(2) + two gaps(4)
	if subjectWidth < 10 {
		subjectWidth = 10
	}

	line := fitColumn(e.SenderName(), fromColumnWidth) + "  " +
		fitColumn(e.Subject, subjectWidth) + "  " +
		mutedTextStyle.Render(date)

	switch {
	case idx == m.cursor:
		return marker + selectedStyle.Render(line)
	case !e.IsRead:
		return marker + unreadStyle.Render(line)
	default:
		return marker + line
	}
}

// --- utility functions ---

// fitColumn truncates or pads s to exactly width terminal cells.
func fitColumn(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}

func relativeDate(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "now"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}
