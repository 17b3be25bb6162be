package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/nav"
	"github.com/lu-zhengda/zeromail/internal/provider"
	"github.com/lu-zhengda/zeromail/internal/provider/fixture"
)

// recordingProvider wraps a backend, counting calls and optionally failing.
type recordingProvider struct {
	provider.EmailProvider

	mu      sync.Mutex
	lists   int
	gets    []string
	sends   []domain.Draft
	listErr error
	sendErr error
}

func (p *recordingProvider) ListInbox(ctx context.Context, n int) (*domain.InboxPage, error) {
	p.mu.Lock()
	p.lists++
	err := p.listErr
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return p.EmailProvider.ListInbox(ctx, n)
}

func (p *recordingProvider) GetMessage(ctx context.Context, id string) (*domain.Email, error) {
	p.mu.Lock()
	p.gets = append(p.gets, id)
	p.mu.Unlock()
	return p.EmailProvider.GetMessage(ctx, id)
}

func (p *recordingProvider) Send(ctx context.Context, d domain.Draft) error {
	p.mu.Lock()
	p.sends = append(p.sends, d)
	err := p.sendErr
	p.mu.Unlock()
	if err != nil {
		return err
	}
	return p.EmailProvider.Send(ctx, d)
}

func newRecording(opts ...fixture.Option) *recordingProvider {
	return &recordingProvider{EmailProvider: fixture.New(opts...)}
}

// drain runs cmd and feeds the package's own messages back into m until no
// work is left. Framework messages such as spinner ticks and cursor blinks
// are dropped so nothing waits on a timer.
func drain(t *testing.T, m model, cmd tea.Cmd) (model, bool) {
	t.Helper()
	quit := false
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
			quit = true
		case navMsg, refreshMsg, sendRequestMsg, inboxLoadedMsg, emailLoadedMsg, sendResultMsg:
			next, c := m.Update(msg)
			m = next.(model)
			queue = append(queue, c)
		}
	}
	return m, quit
}

// start builds a sized model and runs the initial inbox load.
func start(t *testing.T, p provider.EmailProvider) model {
	t.Helper()
	m := newModel(context.Background(), p, Options{Backend: "fixture"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m, _ = drain(t, next.(model), m.Init())
	return m
}

// press sends one key and drains the resulting work.
func press(t *testing.T, m model, k tea.KeyMsg) (model, bool) {
	t.Helper()
	next, cmd := m.Update(k)
	return drain(t, next.(model), cmd)
}

// typeText feeds runes to the focused input, discarding cursor blink commands.
func typeText(m model, s string) model {
	for _, r := range s {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = next.(model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	keyEnter    = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc      = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown     = tea.KeyMsg{Type: tea.KeyDown}
	keyTab      = tea.KeyMsg{Type: tea.KeyTab}
	keyShiftTab = tea.KeyMsg{Type: tea.KeyShiftTab}
	keyCtrlS    = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyCtrlC    = tea.KeyMsg{Type: tea.KeyCtrlC}
	keyBack     = tea.KeyMsg{Type: tea.KeyBackspace}
)

func inboxOf(t *testing.T, m model) inboxModel {
	t.Helper()
	in, ok := m.active.(inboxModel)
	require.True(t, ok, "active screen is %T", m.active)
	return in
}

func readerOf(t *testing.T, m model) readerModel {
	t.Helper()
	r, ok := m.active.(readerModel)
	require.True(t, ok, "active screen is %T", m.active)
	return r
}

func composerOf(t *testing.T, m model) composerModel {
	t.Helper()
	c, ok := m.active.(composerModel)
	require.True(t, ok, "active screen is %T", m.active)
	return c
}

func TestInitialInboxLoad(t *testing.T) {
	p := newRecording()
	m := start(t, p)

	assert.Equal(t, nav.Inbox(), m.screen)
	in := inboxOf(t, m)
	assert.False(t, in.loading)
	require.Len(t, in.emails, 4)
	assert.Equal(t, "1", in.emails[0].ID)
	assert.Equal(t, 1, p.lists)
	assert.Contains(t, m.View(), "Welcome to Zero Mail!")
}

func TestInboxOpenAndBack(t *testing.T) {
	p := newRecording()
	m := start(t, p)

	m, _ = press(t, m, keyDown)
	m, _ = press(t, m, keyEnter)

	assert.Equal(t, nav.Message("2"), m.screen)
	r := readerOf(t, m)
	require.NotNil(t, r.email)
	assert.Equal(t, "Re: Project Update", r.email.Subject)
	assert.Equal(t, []string{"2"}, p.gets)
	assert.Contains(t, m.View(), "bob@example.com")

	m, _ = press(t, m, keyEsc)
	assert.Equal(t, nav.Inbox(), m.screen)
	assert.Equal(t, 2, p.lists, "re-entering the inbox reloads it")
	assert.Equal(t, 0, inboxOf(t, m).cursor, "selection is not restored")

	m, _ = press(t, m, keyEnter)
	m, _ = press(t, m, keyBack)
	assert.Equal(t, nav.Inbox(), m.screen)
}

func TestInboxCursorBounds(t *testing.T) {
	m := start(t, newRecording())

	for range 10 {
		m, _ = press(t, m, runes("j"))
	}
	assert.Equal(t, 3, inboxOf(t, m).cursor)

	for range 10 {
		m, _ = press(t, m, runes("k"))
	}
	assert.Equal(t, 0, inboxOf(t, m).cursor)
}

func TestInboxEmpty(t *testing.T) {
	m := start(t, newRecording(fixture.WithMessages(nil)))

	m, _ = press(t, m, keyEnter)
	assert.Equal(t, nav.Inbox(), m.screen, "open is disabled on an empty list")
	assert.Contains(t, m.View(), "No messages")
}

func TestInboxErrorAndRetry(t *testing.T) {
	p := newRecording()
	p.listErr = fmt.Errorf("%w: connection refused", domain.ErrBackendUnavailable)
	m := start(t, p)

	in := inboxOf(t, m)
	require.Error(t, in.err)
	assert.Contains(t, m.View(), "connection refused")
	assert.Contains(t, m.View(), "Press r to retry")

	p.mu.Lock()
	p.listErr = nil
	p.mu.Unlock()
	m, _ = press(t, m, runes("r"))

	in = inboxOf(t, m)
	assert.NoError(t, in.err)
	assert.Len(t, in.emails, 4)
	assert.Equal(t, 2, p.lists)
}

func TestInboxFailedRefreshHidesPreviousList(t *testing.T) {
	p := newRecording()
	m := start(t, p)
	m, _ = press(t, m, keyDown)
	require.Len(t, inboxOf(t, m).emails, 4)

	p.mu.Lock()
	p.listErr = fmt.Errorf("%w: down", domain.ErrBackendUnavailable)
	p.mu.Unlock()
	m, _ = press(t, m, runes("r"))

	in := inboxOf(t, m)
	require.Error(t, in.err)
	assert.Empty(t, in.emails)
	assert.Equal(t, 0, in.cursor)

	m, _ = press(t, m, keyEnter)
	assert.Equal(t, nav.Inbox(), m.screen, "nothing to open on the error view")
	assert.Empty(t, p.gets)
}

func TestLoadingViewShowsSpinner(t *testing.T) {
	m := newModel(context.Background(), newRecording(), Options{Backend: "fixture"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = next.(model)

	view := m.View()
	assert.Contains(t, view, "Loading inbox...")
	assert.Contains(t, view, inboxOf(t, m).spinner.View())
	assert.Contains(t, view, "[fixture]")
}

func TestInboxIgnoresKeysWhileLoading(t *testing.T) {
	m := newModel(context.Background(), newRecording(), Options{})

	next, cmd := m.Update(runes("c"))
	assert.Nil(t, cmd)
	assert.Equal(t, nav.Inbox(), next.(model).screen)

	_, quit := press(t, m, runes("q"))
	assert.True(t, quit, "quit is honored while loading")
}

func TestQuitFromEveryScreen(t *testing.T) {
	m := start(t, newRecording())
	_, quit := press(t, m, runes("q"))
	assert.True(t, quit)

	reader, _ := press(t, m, keyEnter)
	_, quit = press(t, reader, runes("q"))
	assert.True(t, quit)

	composer, _ := press(t, m, runes("c"))
	typed, quit := press(t, composer, runes("q"))
	assert.False(t, quit, "q is text in the compose form")
	assert.Equal(t, "q", composerOf(t, typed).toInput.Value())
	_, quit = press(t, typed, keyCtrlC)
	assert.True(t, quit)
}

func TestMessageNotFound(t *testing.T) {
	m := start(t, newRecording())

	next, cmd := m.Update(navMsg{event: nav.Open("missing")})
	m, _ = drain(t, next.(model), cmd)

	r := readerOf(t, m)
	assert.ErrorIs(t, r.err, domain.ErrNotFound)
	assert.Contains(t, m.View(), "Press esc to go back")

	m, _ = press(t, m, keyEsc)
	assert.Equal(t, nav.Inbox(), m.screen)
}

func TestComposeFromMessage(t *testing.T) {
	m := start(t, newRecording())
	m, _ = press(t, m, keyEnter)
	m, _ = press(t, m, runes("s"))
	assert.Equal(t, nav.Compose(), m.screen)
}

func TestComposeValidationMakesNoBackendCall(t *testing.T) {
	p := newRecording()
	m := start(t, p)
	m, _ = press(t, m, runes("c"))

	m = typeText(m, "bob@example.com")
	m, _ = press(t, m, keyCtrlS)

	assert.Equal(t, nav.Compose(), m.screen)
	assert.Empty(t, p.sends)
	c := composerOf(t, m)
	assert.ErrorIs(t, c.err, domain.ErrInvalidRequest)
	assert.Contains(t, m.View(), "To and Subject are required")
	assert.Equal(t, "bob@example.com", c.toInput.Value())
}

func TestComposeSend(t *testing.T) {
	p := newRecording()
	m := start(t, p)
	m, _ = press(t, m, runes("c"))

	m = typeText(m, "bob@example.com")
	m, _ = press(t, m, keyTab)
	m = typeText(m, "Quarterly plan")
	m, _ = press(t, m, keyTab)
	m = typeText(m, "Draft attached, q and all.")
	m, _ = press(t, m, keyCtrlS)

	require.Len(t, p.sends, 1)
	assert.Equal(t, domain.Draft{To: "bob@example.com", Subject: "Quarterly plan", Body: "Draft attached, q and all."}, p.sends[0])

	assert.Equal(t, nav.Inbox(), m.screen)
	in := inboxOf(t, m)
	require.Len(t, in.emails, 5)
	assert.Equal(t, "Quarterly plan", in.emails[0].Subject)
	assert.True(t, in.emails[0].IsRead)
	assert.Equal(t, "Message sent", m.status.message)
}

func TestComposeFieldCycling(t *testing.T) {
	m := start(t, newRecording())
	m, _ = press(t, m, runes("c"))

	assert.Equal(t, fieldTo, composerOf(t, m).activeField)
	m, _ = press(t, m, keyShiftTab)
	assert.Equal(t, fieldBody, composerOf(t, m).activeField)
	m, _ = press(t, m, keyTab)
	m, _ = press(t, m, keyTab)
	assert.Equal(t, fieldSubject, composerOf(t, m).activeField)
}

func TestComposeSendFailureKeepsBuffers(t *testing.T) {
	p := newRecording()
	p.sendErr = fmt.Errorf("%w: 503", domain.ErrBackendUnavailable)
	m := start(t, p)
	m, _ = press(t, m, runes("c"))

	m = typeText(m, "bob@example.com")
	m, _ = press(t, m, keyTab)
	m = typeText(m, "Hello")
	m, _ = press(t, m, keyCtrlS)

	assert.Equal(t, nav.Compose(), m.screen)
	c := composerOf(t, m)
	assert.False(t, c.sending)
	assert.ErrorIs(t, c.err, domain.ErrBackendUnavailable)
	assert.Equal(t, "bob@example.com", c.toInput.Value())
	assert.Equal(t, "Hello", c.subjectInput.Value())
	assert.Contains(t, m.View(), "Send failed")
}

func TestComposeCancel(t *testing.T) {
	p := newRecording()
	m := start(t, p)
	m, _ = press(t, m, runes("c"))
	m = typeText(m, "someone")

	m, _ = press(t, m, keyEsc)
	assert.Equal(t, nav.Inbox(), m.screen)
	assert.Empty(t, p.sends)

	m, _ = press(t, m, runes("c"))
	assert.Empty(t, composerOf(t, m).toInput.Value(), "buffers are discarded on exit")
}

func TestComposeIgnoresKeysWhileSending(t *testing.T) {
	m := start(t, newRecording())
	m, _ = press(t, m, runes("c"))
	m = typeText(m, "bob@example.com")
	m, _ = press(t, m, keyTab)
	m = typeText(m, "Hi")

	// Leave the send request unprocessed.
	next, _ := m.Update(keyCtrlS)
	m = next.(model)
	require.True(t, composerOf(t, m).sending)

	next, cmd := m.Update(keyEsc)
	assert.Nil(t, cmd)
	assert.Equal(t, nav.Compose(), next.(model).screen)
}

func TestStaleResultsAreDropped(t *testing.T) {
	m := start(t, newRecording())
	oldSeq := m.seq

	m, _ = press(t, m, keyEnter)
	require.Equal(t, nav.KindMessage, m.screen.Kind)
	before := readerOf(t, m)

	next, cmd := m.Update(inboxLoadedMsg{seq: oldSeq, err: errors.New("late failure")})
	assert.Nil(t, cmd)
	after := readerOf(t, next.(model))
	assert.Equal(t, before.email, after.email)
	assert.NoError(t, after.err)
	assert.Equal(t, "", next.(model).status.message)
}

func TestWindowResize(t *testing.T) {
	m := start(t, newRecording())
	next, _ := m.Update(tea.WindowSizeMsg{Width: 60, Height: 12})
	m = next.(model)

	in := inboxOf(t, m)
	assert.Equal(t, 56, in.width)
	assert.Equal(t, 8, in.height)
}

func TestFitColumn(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"alice", 8, "alice   "},
		{"alice@example.com", 8, "alice@e…"},
		{"日本語テキスト", 7, "日本語…"},
		{"multi\nline", 12, "multi line  "},
		{"anything", 0, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fitColumn(tt.in, tt.width), "fitColumn(%q, %d)", tt.in, tt.width)
	}
}
