package cli

import (
	"time"

	"github.com/lu-zhengda/zeromail/internal/domain"
)

// ---------------------------------------------------------------------------
// Inbox JSON types (list)
// ---------------------------------------------------------------------------

type jsonInbox struct {
	Emails        []jsonEmail `json:"emails"`
	NextPageToken string      `json:"next_page_token,omitempty"`
}

type jsonEmail struct {
	ID       string `json:"id"`
	ThreadID string `json:"thread_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Subject  string `json:"subject"`
	Snippet  string `json:"snippet,omitempty"`
	Date     string `json:"date"`
	IsRead   bool   `json:"is_read"`
}

func toJSONInbox(page *domain.InboxPage) jsonInbox {
	out := jsonInbox{
		Emails:        make([]jsonEmail, 0, len(page.Emails)),
		NextPageToken: page.NextPageToken,
	}
	for i := range page.Emails {
		out.Emails = append(out.Emails, toJSONEmail(&page.Emails[i]))
	}
	return out
}

func toJSONEmail(e *domain.Email) jsonEmail {
	return jsonEmail{
		ID:       e.ID,
		ThreadID: e.ThreadID,
		From:     e.From,
		To:       e.To,
		Subject:  e.Subject,
		Snippet:  e.Snippet,
		Date:     e.Date.Format(time.RFC3339),
		IsRead:   e.IsRead,
	}
}

// ---------------------------------------------------------------------------
// Message JSON type (read)
// ---------------------------------------------------------------------------

type jsonMessage struct {
	jsonEmail
	Body string `json:"body"`
}

func toJSONMessage(e *domain.Email) jsonMessage {
	return jsonMessage{
		jsonEmail: toJSONEmail(e),
		Body:      e.Body,
	}
}

// ---------------------------------------------------------------------------
// Action result JSON type (auth, logout, credentials, send)
// ---------------------------------------------------------------------------

type jsonAction struct {
	OK     bool   `json:"ok"`
	Action string `json:"action"`
	To     string `json:"to,omitempty"`
}
