package gmail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/lu-zhengda/zeromail/internal/auth"
	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/log"
	"github.com/lu-zhengda/zeromail/internal/provider"
	"github.com/lu-zhengda/zeromail/internal/store"
)

const (
	userID = "me"

	// maxPageSize is the largest maxResults users.messages.list accepts.
	maxPageSize = 500

	defaultFetchConcurrency = 5
)

// Provider implements the provider.EmailProvider interface for Gmail.
type Provider struct {
	service     *gmailapi.Service
	concurrency int
	now         func() time.Time
}

type settings struct {
	concurrency   int
	now           func() time.Time
	oauthEndpoint oauth2.Endpoint
	clientOptions []option.ClientOption
}

// Option configures a Provider.
type Option func(*settings)

// WithFetchConcurrency bounds the parallel message fetches of ListInbox.
func WithFetchConcurrency(n int) Option {
	return func(s *settings) { s.concurrency = n }
}

// WithClock overrides time.Now, used for messages without a usable Date.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithOAuthEndpoint overrides the token endpoint used to refresh tokens.
func WithOAuthEndpoint(e oauth2.Endpoint) Option {
	return func(s *settings) { s.oauthEndpoint = e }
}

// WithClientOptions passes extra options to gmail.NewService.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(s *settings) { s.clientOptions = append(s.clientOptions, opts...) }
}

func newSettings(opts []Option) settings {
	s := settings{
		concurrency: defaultFetchConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	return s
}

// Connect starts a session from the stored token and returns a Provider
// for it. It fails with domain.ErrMissingCredentials or
// domain.ErrAuthRequired before any network call is made.
func Connect(ctx context.Context, creds auth.Credentials, tokens store.TokenStore, opts ...Option) (*Provider, error) {
	s := newSettings(opts)

	ts, err := auth.TokenSource(ctx, creds, tokens, s.oauthEndpoint)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   &loggingTransport{base: http.DefaultTransport},
		},
	}
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(httpClient)}, s.clientOptions...)
	srv, err := gmailapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create gmail service: %w", domain.ErrBackendUnavailable, err)
	}
	log.Printf("gmail: session started")
	return newProvider(srv, s), nil
}

// New wraps an existing Gmail service.
func New(srv *gmailapi.Service, opts ...Option) *Provider {
	return newProvider(srv, newSettings(opts))
}

func newProvider(srv *gmailapi.Service, s settings) *Provider {
	return &Provider{
		service:     srv,
		concurrency: s.concurrency,
		now:         s.now,
	}
}

// ListInbox lists inbox message ids, then fetches each message in full.
// The result keeps the order of the list call.
func (p *Provider) ListInbox(ctx context.Context, maxResults int) (*domain.InboxPage, error) {
	n := min(provider.ClampMaxResults(maxResults), maxPageSize)

	resp, err := p.service.Users.Messages.List(userID).
		LabelIds(domain.LabelInbox).
		MaxResults(int64(n)).
		Context(ctx).Do()
	if err != nil {
		return nil, classify(err, "failed to list inbox")
	}

	emails := make([]domain.Email, len(resp.Messages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, ref := range resp.Messages {
		g.Go(func() error {
			email, err := p.GetMessage(gctx, ref.Id)
			if err != nil {
				return err
			}
			emails[i] = *email
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("gmail: listed %d inbox messages", len(emails))
	return &domain.InboxPage{Emails: emails, NextPageToken: resp.NextPageToken}, nil
}

// GetMessage returns a single email by ID.
func (p *Provider) GetMessage(ctx context.Context, id string) (*domain.Email, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty message id", domain.ErrNotFound)
	}

	msg, err := p.service.Users.Messages.Get(userID, id).
		Format("full").Context(ctx).Do()
	if err != nil {
		return nil, classify(err, fmt.Sprintf("failed to get message %s", id))
	}

	return mapMessage(msg, p.now()), nil
}

// Send composes and sends a plain-text email via the Gmail API.
func (p *Provider) Send(ctx context.Context, draft domain.Draft) error {
	if err := draft.Validate(); err != nil {
		return err
	}

	msg := &gmailapi.Message{Raw: encodeRawMessage(draft)}
	sent, err := p.service.Users.Messages.Send(userID, msg).Context(ctx).Do()
	if err != nil {
		return classify(err, "failed to send message")
	}
	log.Printf("gmail: sent message %s", sent.Id)
	return nil
}

var _ provider.EmailProvider = (*Provider)(nil)
