package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/nav"
)

// missingFieldsText is shown inline when a draft fails validation.
const missingFieldsText = "To and Subject are required"

// Field indices within the composer form.
const (
	fieldTo      = 0
	fieldSubject = 1
	fieldBody    = 2
	fieldCount   = 3
)

// composerModel is the compose form. Keys other than the form controls go
// to the focused input, so q is ordinary text here.
type composerModel struct {
	seq          int
	toInput      textinput.Model
	subjectInput textinput.Model
	bodyInput    textarea.Model
	activeField  int

	sending bool
	err     error
	spinner spinner.Model

	width  int
	height int
}

func newComposer(seq, w, h int) composerModel {
	to := textinput.New()
	to.Placeholder = "recipient@example.com"
	to.CharLimit = 500
	to.Prompt = ""

	subject := textinput.New()
	subject.Placeholder = "Subject"
	subject.CharLimit = 200
	subject.Prompt = ""

	body := textarea.New()
	body.Placeholder = "Write your message..."
	body.ShowLineNumbers = false
	body.CharLimit = 0

	c := composerModel{
		seq:          seq,
		toInput:      to,
		subjectInput: subject,
		bodyInput:    body,
		activeField:  fieldTo,
		spinner:      newSpinner(),
	}
	c.updateFocus()
	return c.resize(w, h)
}

func (c composerModel) Init() tea.Cmd {
	return textinput.Blink
}

func (c composerModel) Update(msg tea.Msg) (screenModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sendResultMsg:
		c.sending = false
		if msg.err != nil {
			c.err = msg.err
			return c, nil
		}
		return c, navigate(nav.Sent())

	case spinner.TickMsg:
		if !c.sending {
			return c, nil
		}
		var cmd tea.Cmd
		c.spinner, cmd = c.spinner.Update(msg)
		return c, cmd

	case tea.KeyMsg:
		if c.sending {
			return c, nil
		}
		switch {
		case key.Matches(msg, keys.NextField):
			c.activeField = (c.activeField + 1) % fieldCount
			c.updateFocus()
			return c, nil

		case key.Matches(msg, keys.PrevField):
			c.activeField = (c.activeField + fieldCount - 1) % fieldCount
			c.updateFocus()
			return c, nil

		case key.Matches(msg, keys.Cancel):
			return c, navigate(nav.Cancel())

		case key.Matches(msg, keys.Send):
			draft := c.draft()
			if err := draft.Validate(); err != nil {
				c.err = err
				return c, nil
			}
			c.err = nil
			c.sending = true
			seq := c.seq
			return c, tea.Batch(c.spinner.Tick, func() tea.Msg {
				return sendRequestMsg{seq: seq, draft: draft}
			})
		}
	}

	// Delegate to the active input component.
	var cmd tea.Cmd
	switch c.activeField {
	case fieldTo:
		c.toInput, cmd = c.toInput.Update(msg)
	case fieldSubject:
		c.subjectInput, cmd = c.subjectInput.Update(msg)
	case fieldBody:
		c.bodyInput, cmd = c.bodyInput.Update(msg)
	}
	return c, cmd
}

func (c composerModel) View() string {
	separator := mutedTextStyle.Render(strings.Repeat("─", max(c.width, 20)))

	rows := []string{
		mutedTextStyle.Render(fmt.Sprintf("%-9s", "To:")) + c.toInput.View(),
		mutedTextStyle.Render(fmt.Sprintf("%-9s", "Subject:")) + c.subjectInput.View(),
		separator,
		c.bodyInput.View(),
		"",
		c.statusLine(),
	}
	return strings.Join(rows, "\n")
}

func (c composerModel) SetSize(w, h int) screenModel {
	return c.resize(w, h)
}

func (c composerModel) HelpKeys() []key.Binding {
	return bindings{keys.NextField, keys.Send, keys.Cancel, keys.ForceQuit}
}

// --- internal helpers ---

func (c composerModel) resize(w, h int) composerModel {
	c.width = w
	c.height = h

	const labelWidth = 9
	c.toInput.Width = max(w-labelWidth, 10)
	c.subjectInput.Width = max(w-labelWidth, 10)
	c.bodyInput.SetWidth(max(w, 20))
	// To, Subject, separator, blank line and status line.
	c.bodyInput.SetHeight(max(h-5, 3))
	return c
}

func (c composerModel) draft() domain.Draft {
	return domain.Draft{
		To:      strings.TrimSpace(c.toInput.Value()),
		Subject: strings.TrimSpace(c.subjectInput.Value()),
		Body:    c.bodyInput.Value(),
	}
}

func (c composerModel) statusLine() string {
	switch {
	case c.sending:
		return c.spinner.View() + " Sending..."
	case errors.Is(c.err, domain.ErrMissingFields):
		return errorTextStyle.Render(missingFieldsText)
	case c.err != nil:
		return errorTextStyle.Render("Send failed: " + c.err.Error())
	}
	return ""
}

// updateFocus sets the correct focus state on all input components.
func (c *composerModel) updateFocus() {
	c.toInput.Blur()
	c.subjectInput.Blur()
	c.bodyInput.Blur()

	switch c.activeField {
	case fieldTo:
		c.toInput.Focus()
	case fieldSubject:
		c.subjectInput.Focus()
	case fieldBody:
		c.bodyInput.Focus()
	}
}
