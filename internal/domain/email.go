package domain

import (
	"net/mail"
	"strings"
	"time"
)

// Email is a single message as presented to the user. From and To are kept
// as the free-text header values the backend supplied.
type Email struct {
	ID       string
	ThreadID string
	From     string
	To       string
	Subject  string
	Snippet  string
	Body     string
	Date     time.Time
	IsRead   bool
}

// SenderName returns the display name of the From header, falling back to
// the bare address and finally to the raw header value.
func (e *Email) SenderName() string {
	from := strings.TrimSpace(e.From)
	if from == "" {
		return ""
	}
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return from
	}
	if addr.Name != "" {
		return addr.Name
	}
	return addr.Address
}

// Draft is an outgoing message. To and Subject are required.
type Draft struct {
	To      string
	Subject string
	Body    string
}

// Validate reports ErrInvalidRequest when a required field is blank.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.To) == "" || strings.TrimSpace(d.Subject) == "" {
		return ErrMissingFields
	}
	return nil
}

// InboxPage is one page of inbox results in backend order.
type InboxPage struct {
	Emails []Email
	// NextPageToken is passed through untouched; nothing dereferences it.
	NextPageToken string
}
