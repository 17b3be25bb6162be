package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/nav"
)

// readerModel shows a single message in a scrollable viewport.
type readerModel struct {
	seq      int
	id       string
	email    *domain.Email
	loading  bool
	err      error
	spinner  spinner.Model
	viewport viewport.Model
	width    int
	height   int
}

func newReader(seq int, id string, w, h int) readerModel {
	return readerModel{
		seq:      seq,
		id:       id,
		loading:  true,
		spinner:  newSpinner(),
		viewport: viewport.New(w, h),
		width:    w,
		height:   h,
	}
}

func (r readerModel) Init() tea.Cmd {
	return r.spinner.Tick
}

func (r readerModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case emailLoadedMsg:
		r.loading = false
		if msg.err != nil {
			r.err = msg.err
			return r, nil
		}
		r.email = msg.email
		r.viewport.SetContent(renderEmail(r.email, r.width))
		r.viewport.GotoTop()
		return r, nil

	case spinner.TickMsg:
		if !r.loading {
			return r, nil
		}
		var cmd tea.Cmd
		r.spinner, cmd = r.spinner.Update(msg)
		return r, cmd

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return r, navigate(nav.Quit())
		}
		if r.loading {
			return r, nil
		}
		switch {
		case key.Matches(msg, keys.Back):
			return r, navigate(nav.Back())
		case key.Matches(msg, keys.Compose):
			return r, navigate(nav.ComposeNew())
		}
		if r.email != nil {
			var cmd tea.Cmd
			r.viewport, cmd = r.viewport.Update(msg)
			return r, cmd
		}
	}
	return r, nil
}

func (r readerModel) View() string {
	switch {
	case r.loading:
		return r.spinner.View() + " Loading message..."
	case r.err != nil:
		return errorTextStyle.Render("Error: "+r.err.Error()) + "\n\n" +
			mutedTextStyle.Render("Press esc to go back")
	}
	return r.viewport.View()
}

func (r readerModel) SetSize(w, h int) screenModel {
	r.width = w
	r.height = h
	r.viewport.Width = w
	r.viewport.Height = h
	if r.email != nil {
		r.viewport.SetContent(renderEmail(r.email, w))
	}
	return r
}

func (r readerModel) HelpKeys() []key.Binding {
	return bindings{keys.Scroll, keys.Back, keys.Compose, keys.Quit}
}

// renderEmail formats headers, a separator and the body wrapped to width.
func renderEmail(email *domain.Email, width int) string {
	var b strings.Builder

	b.WriteString(mutedTextStyle.Render("From:    "))
	b.WriteString(email.From)
	b.WriteByte('\n')

	b.WriteString(mutedTextStyle.Render("To:      "))
	b.WriteString(email.To)
	b.WriteByte('\n')

	b.WriteString(mutedTextStyle.Render("Date:    "))
	b.WriteString(email.Date.Format("Jan 2, 2006 3:04 PM"))
	b.WriteByte('\n')

	b.WriteString(mutedTextStyle.Render("Subject: "))
	b.WriteString(email.Subject)
	b.WriteByte('\n')

	sepWidth := max(width, 20)
	b.WriteString(mutedTextStyle.Render(strings.Repeat("─", sepWidth)))
	b.WriteByte('\n')

	if email.Body != "" {
		b.WriteByte('\n')
		if width > 0 {
			b.WriteString(lipgloss.NewStyle().Width(width).Render(email.Body))
		} else {
			b.WriteString(email.Body)
		}
	}

	return b.String()
}
