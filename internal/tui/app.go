package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/log"
	"github.com/lu-zhengda/zeromail/internal/nav"
	"github.com/lu-zhengda/zeromail/internal/provider"
)

// --- messages emitted by screens ---

type navMsg struct {
	event nav.Event
}

type refreshMsg struct {
	seq int
}

type sendRequestMsg struct {
	seq   int
	draft domain.Draft
}

// --- async result messages ---
// Each carries the sequence number of the screen entry that requested it.

type inboxLoadedMsg struct {
	seq  int
	page *domain.InboxPage
	err  error
}

type emailLoadedMsg struct {
	seq   int
	email *domain.Email
	err   error
}

type sendResultMsg struct {
	seq int
	err error
}

func navigate(ev nav.Event) tea.Cmd {
	return func() tea.Msg { return navMsg{event: ev} }
}

// screenModel is the state of the active screen. A new one is built on
// every entry and dropped on exit.
type screenModel interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (screenModel, tea.Cmd)
	View() string
	SetSize(w, h int) screenModel
	HelpKeys() []key.Binding
}

// Options configures an interactive session.
type Options struct {
	// MaxResults is the inbox page size. Zero means provider.DefaultMaxResults.
	MaxResults int
	// Backend names the active backend in the status bar.
	Backend string
}

// --- root model ---

type model struct {
	ctx      context.Context
	provider provider.EmailProvider
	opts     Options

	screen nav.Screen
	seq    int
	active screenModel

	status statusBar
	width  int
	height int
}

func newModel(ctx context.Context, p provider.EmailProvider, opts Options) model {
	if opts.MaxResults == 0 {
		opts.MaxResults = provider.DefaultMaxResults
	}
	m := model{
		ctx:      ctx,
		provider: p,
		opts:     opts,
		status:   newStatusBar(opts.Backend),
	}
	m.switchTo(nav.Inbox())
	return m
}

func (m model) Init() tea.Cmd {
	return m.entryCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.status.width = msg.Width
		m.active = m.active.SetSize(m.contentSize())
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.ForceQuit) {
			return m, tea.Quit
		}
		m.status.notice = false

	case navMsg:
		return m.navigate(msg.event)

	case refreshMsg:
		if m.stale(msg.seq) {
			return m, nil
		}
		m.status.setMessage("Refreshing...")
		return m, m.listInboxCmd(m.seq)

	case sendRequestMsg:
		if m.stale(msg.seq) {
			return m, nil
		}
		m.status.setMessage("Sending...")
		return m, m.sendCmd(m.seq, msg.draft)

	case inboxLoadedMsg:
		if m.stale(msg.seq) {
			return m, nil
		}
		if msg.err != nil {
			m.status.setError("Failed to load inbox")
		} else if msg.page != nil && !m.status.notice {
			m.status.setMessage(fmt.Sprintf("Loaded %d messages", len(msg.page.Emails)))
		}

	case emailLoadedMsg:
		if m.stale(msg.seq) {
			return m, nil
		}
		if msg.err != nil {
			m.status.setError("Failed to load message")
		} else {
			m.status.setMessage("")
		}

	case sendResultMsg:
		if m.stale(msg.seq) {
			return m, nil
		}
		if msg.err != nil {
			m.status.setError("Send failed")
		}
	}

	var cmd tea.Cmd
	m.active, cmd = m.active.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := titleStyle.Render("zeromail") + mutedTextStyle.Render("  "+screenTitle(m.screen))

	frame := frameStyle
	if m.screen.Kind == nav.KindCompose {
		frame = composeFrameStyle
	}
	w, h := m.contentSize()
	body := frame.Width(w + 2).Height(h).Render(m.active.View())

	return lipgloss.JoinVertical(lipgloss.Left, header, body, m.status.View(m.active.HelpKeys()))
}

// navigate applies ev to the current screen and enters the next one.
func (m model) navigate(ev nav.Event) (tea.Model, tea.Cmd) {
	if ev.Kind == nav.EventQuit {
		return m, tea.Quit
	}
	next, changed := nav.Next(m.screen, ev)
	if !changed {
		return m, nil
	}

	log.Printf("tui: %s -> %s on %s", m.screen, next, ev.Kind)
	if ev.Kind == nav.EventSent {
		m.status.setNotice("Message sent")
	} else {
		m.status.setMessage("")
	}
	m.switchTo(next)
	return m, m.entryCmd()
}

// switchTo replaces the active screen with a fresh model for s.
func (m *model) switchTo(s nav.Screen) {
	m.seq++
	m.screen = s
	w, h := m.contentSize()
	switch s.Kind {
	case nav.KindMessage:
		m.active = newReader(m.seq, s.MessageID, w, h)
	case nav.KindCompose:
		m.active = newComposer(m.seq, w, h)
	default:
		m.active = newInbox(m.seq, w, h)
	}
}

// entryCmd runs the entry effect of the current screen.
func (m model) entryCmd() tea.Cmd {
	cmds := []tea.Cmd{m.active.Init()}
	switch m.screen.Entry() {
	case nav.EffectListInbox:
		cmds = append(cmds, m.listInboxCmd(m.seq))
	case nav.EffectGetMessage:
		cmds = append(cmds, m.getMessageCmd(m.seq, m.screen.MessageID))
	}
	return tea.Batch(cmds...)
}

func (m model) stale(seq int) bool {
	if seq != m.seq {
		log.Printf("tui: dropping result for seq %d, current is %d", seq, m.seq)
		return true
	}
	return false
}

// contentSize is the area inside the frame: header and status bar take a
// row each, the frame border two rows and the border plus padding four
// columns.
func (m model) contentSize() (int, int) {
	w := m.width - 4
	h := m.height - 4
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

func screenTitle(s nav.Screen) string {
	switch s.Kind {
	case nav.KindMessage:
		return "Message"
	case nav.KindCompose:
		return "Compose"
	default:
		return "Inbox"
	}
}

func newSpinner() spinner.Model {
	return spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(spinnerStyle),
	)
}

// --- async commands ---

func (m model) listInboxCmd(seq int) tea.Cmd {
	ctx, p, n := m.ctx, m.provider, m.opts.MaxResults
	return func() tea.Msg {
		page, err := p.ListInbox(ctx, n)
		if err != nil {
			log.Printf("tui: list inbox: %v", err)
		}
		return inboxLoadedMsg{seq: seq, page: page, err: err}
	}
}

func (m model) getMessageCmd(seq int, id string) tea.Cmd {
	ctx, p := m.ctx, m.provider
	return func() tea.Msg {
		email, err := p.GetMessage(ctx, id)
		if err != nil {
			log.Printf("tui: get message %s: %v", id, err)
		}
		return emailLoadedMsg{seq: seq, email: email, err: err}
	}
}

func (m model) sendCmd(seq int, draft domain.Draft) tea.Cmd {
	ctx, p := m.ctx, m.provider
	return func() tea.Msg {
		err := p.Send(ctx, draft)
		if err != nil {
			log.Printf("tui: send: %v", err)
		}
		return sendResultMsg{seq: seq, err: err}
	}
}

// Run starts the interactive session and blocks until the user quits or
// ctx is canceled.
func Run(ctx context.Context, p provider.EmailProvider, opts Options) error {
	prog := tea.NewProgram(
		newModel(ctx, p, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := prog.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
