package provider

import (
	"context"

	"github.com/lu-zhengda/zeromail/internal/domain"
)

// DefaultMaxResults is the inbox page size used when the caller has no preference.
const DefaultMaxResults = 50

// Mode names one of the two backend implementations.
type Mode string

const (
	ModeFixture Mode = "fixture"
	ModeGmail   Mode = "gmail"
)

// EmailProvider is the capability set every mail backend offers.
// The only implementations are fixture.Provider and gmail.Provider.
type EmailProvider interface {
	ListInbox(ctx context.Context, maxResults int) (*domain.InboxPage, error)
	GetMessage(ctx context.Context, id string) (*domain.Email, error)
	Send(ctx context.Context, draft domain.Draft) error
}

// ClampMaxResults raises page sizes below one to one.
func ClampMaxResults(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
