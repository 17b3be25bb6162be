// Package fixture implements an in-memory mail backend for demos and tests.
// Nothing is persisted; every Provider starts from its seed.
package fixture

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/log"
	"github.com/lu-zhengda/zeromail/internal/provider"
)

const (
	defaultSelf   = "you@example.com"
	snippetLength = 100
)

// Provider serves a fixed inbox from memory. Sent messages are prepended
// to that inbox as read.
type Provider struct {
	mu       sync.Mutex
	messages []domain.Email
	sent     []domain.Draft

	latency Latency
	self    string
	now     func() time.Time
}

// Latency is the artificial delay added to each operation.
type Latency struct {
	List time.Duration
	Get  time.Duration
	Send time.Duration
}

// DemoLatency makes the demo inbox feel like a remote mailbox.
var DemoLatency = Latency{
	List: 300 * time.Millisecond,
	Get:  200 * time.Millisecond,
	Send: 500 * time.Millisecond,
}

// Option configures a Provider.
type Option func(*Provider)

// WithLatency delays every call by d, honoring context cancellation.
func WithLatency(d time.Duration) Option {
	return func(p *Provider) { p.latency = Latency{List: d, Get: d, Send: d} }
}

// WithOperationLatency sets a separate delay per operation.
func WithOperationLatency(l Latency) Option {
	return func(p *Provider) { p.latency = l }
}

// WithMessages replaces the demo seed.
func WithMessages(msgs []domain.Email) Option {
	return func(p *Provider) {
		p.messages = append([]domain.Email(nil), msgs...)
	}
}

// WithSelfAddress sets the From address of sent messages.
func WithSelfAddress(addr string) Option {
	return func(p *Provider) { p.self = addr }
}

// WithClock overrides time.Now for sent message dates.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// New returns a Provider seeded with SeedMessages unless WithMessages is given.
func New(opts ...Option) *Provider {
	p := &Provider{
		messages: SeedMessages(),
		self:     defaultSelf,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ListInbox returns the first maxResults messages in inbox order.
func (p *Provider) ListInbox(ctx context.Context, maxResults int) (*domain.InboxPage, error) {
	if err := wait(ctx, p.latency.List); err != nil {
		return nil, err
	}
	n := provider.ClampMaxResults(maxResults)

	p.mu.Lock()
	defer p.mu.Unlock()
	n = min(n, len(p.messages))
	emails := make([]domain.Email, n)
	copy(emails, p.messages[:n])
	return &domain.InboxPage{Emails: emails}, nil
}

// GetMessage looks a message up by id.
func (p *Provider) GetMessage(ctx context.Context, id string) (*domain.Email, error) {
	if err := wait(ctx, p.latency.Get); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.messages {
		if p.messages[i].ID == id {
			email := p.messages[i]
			return &email, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
}

// Send records the draft and prepends it to the inbox.
func (p *Provider) Send(ctx context.Context, draft domain.Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}
	if err := wait(ctx, p.latency.Send); err != nil {
		return err
	}

	email := domain.Email{
		ID:       "sent-" + newID(),
		ThreadID: "t-" + newID(),
		From:     p.self,
		To:       draft.To,
		Subject:  draft.Subject,
		Snippet:  snippet(draft.Body),
		Body:     draft.Body,
		Date:     p.now(),
		IsRead:   true,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, draft)
	p.messages = append([]domain.Email{email}, p.messages...)
	log.Printf("fixture: sent %s to %s", email.ID, draft.To)
	return nil
}

// Sent returns every draft accepted by Send, oldest first.
func (p *Provider) Sent() []domain.Draft {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.Draft(nil), p.sent...)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// newID returns a time-ordered UUIDv7, so later sends sort after earlier ones.
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

func snippet(body string) string {
	runes := []rune(body)
	if len(runes) <= snippetLength {
		return body
	}
	return string(runes[:snippetLength])
}

var _ provider.EmailProvider = (*Provider)(nil)
