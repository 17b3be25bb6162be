package gmail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	gmailapi "google.golang.org/api/gmail/v1"
)

var fallbackNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "RFC1123Z",
			input: "Mon, 15 Jan 2024 10:30:00 +0000",
			want:  time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "single digit day with zone comment",
			input: "Mon, 5 Feb 2024 08:00:00 -0500 (EST)",
			want:  time.Date(2024, 2, 5, 13, 0, 0, 0, time.UTC),
		},
		{
			name:  "no weekday",
			input: "2 Jan 2024 15:04:05 +0000",
			want:  time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC),
		},
		{
			name:  "RFC3339",
			input: "2024-01-15T10:00:00Z",
			want:  time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "empty falls back to now",
			input: "",
			want:  fallbackNow,
		},
		{
			name:  "garbage falls back to now",
			input: "sometime last week",
			want:  fallbackNow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDate(tt.input, fallbackNow)
			assert.True(t, got.Equal(tt.want), "parseDate(%q) = %v, want %v", tt.input, got, tt.want)
		})
	}
}

func TestFindHeader(t *testing.T) {
	headers := []*gmailapi.MessagePartHeader{
		{Name: "from", Value: "alice@example.com"},
		{Name: "SUBJECT", Value: "Hello"},
		{Name: "Subject", Value: "second"},
	}

	tests := []struct {
		name string
		want string
	}{
		{"From", "alice@example.com"},
		{"subject", "Hello"},
		{"To", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, findHeader(headers, tt.name), "findHeader(%q)", tt.name)
	}
}

func TestDecodeBase64(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"url safe padded", "SGVsbG8_Pz8=", "Hello???"},
		{"url safe unpadded", "SGk-Pj4", "Hi>>>"},
		{"standard padded", "SGVsbG8/Pz8=", "Hello???"},
		{"standard unpadded", "PHA+aHRtbDwvcD4", "<p>html</p>"},
		{"double padding", "cGxhaW4gYm9keQ==", "plain body"},
		{"empty", "", ""},
		{"invalid", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeBase64(tt.input))
		})
	}
}

func TestExtractBody(t *testing.T) {
	tests := []struct {
		name    string
		payload *gmailapi.MessagePart
		want    string
	}{
		{
			name:    "nil payload",
			payload: nil,
			want:    "",
		},
		{
			name: "single part",
			payload: &gmailapi.MessagePart{
				MimeType: "text/plain",
				Body:     &gmailapi.MessagePartBody{Data: "cGxhaW4gYm9keQ"},
			},
			want: "plain body",
		},
		{
			name: "single part html is returned as is",
			payload: &gmailapi.MessagePart{
				MimeType: "text/html",
				Body:     &gmailapi.MessagePartBody{Data: "PHA-aHRtbDwvcD4"},
			},
			want: "<p>html</p>",
		},
		{
			name: "multipart prefers text/plain",
			payload: &gmailapi.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: "PHA-aHRtbDwvcD4"}},
					{MimeType: "text/plain; charset=UTF-8", Body: &gmailapi.MessagePartBody{Data: "cGxhaW4gYm9keQ"}},
				},
			},
			want: "plain body",
		},
		{
			name: "nested multipart",
			payload: &gmailapi.MessagePart{
				MimeType: "multipart/mixed",
				Parts: []*gmailapi.MessagePart{
					{
						MimeType: "multipart/alternative",
						Parts: []*gmailapi.MessagePart{
							{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{Data: "bmVzdGVkIHBsYWlu"}},
						},
					},
					{MimeType: "text/plain", Filename: "notes.txt", Body: &gmailapi.MessagePartBody{Data: "cGxhaW4gYm9keQ"}},
				},
			},
			want: "nested plain",
		},
		{
			name: "multipart without plain text",
			payload: &gmailapi.MessagePart{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/html", Body: &gmailapi.MessagePartBody{Data: "PHA-aHRtbDwvcD4"}},
				},
			},
			want: "",
		},
		{
			name:    "no body",
			payload: &gmailapi.MessagePart{MimeType: "text/plain"},
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractBody(tt.payload))
		})
	}
}

func TestMapMessage(t *testing.T) {
	msg := &gmailapi.Message{
		Id:       "msg-1",
		ThreadId: "thread-1",
		LabelIds: []string{"INBOX", "UNREAD"},
		Snippet:  "Tom &amp; Jerry&#39;s plan",
		Payload: &gmailapi.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmailapi.MessagePartHeader{
				{Name: "from", Value: "Alice <alice@example.com>"},
				{Name: "TO", Value: "bob@example.com"},
				{Name: "Subject", Value: "=?UTF-8?Q?Caf=C3=A9_meeting?="},
				{Name: "Date", Value: "Mon, 15 Jan 2024 10:30:00 +0000"},
			},
			Body: &gmailapi.MessagePartBody{Data: "cGxhaW4gYm9keQ"},
		},
	}

	email := mapMessage(msg, fallbackNow)

	assert.Equal(t, "msg-1", email.ID)
	assert.Equal(t, "thread-1", email.ThreadID)
	assert.Equal(t, "Alice <alice@example.com>", email.From)
	assert.Equal(t, "bob@example.com", email.To)
	assert.Equal(t, "Café meeting", email.Subject)
	assert.Equal(t, "Tom & Jerry's plan", email.Snippet)
	assert.Equal(t, "plain body", email.Body)
	assert.True(t, email.Date.Equal(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)), "Date = %v", email.Date)
	assert.False(t, email.IsRead, "UNREAD label means unread")
}

func TestMapMessage_MissingHeaders(t *testing.T) {
	msg := &gmailapi.Message{Id: "bare", LabelIds: []string{"INBOX"}}

	email := mapMessage(msg, fallbackNow)

	assert.Empty(t, email.From)
	assert.Empty(t, email.To)
	assert.Empty(t, email.Subject)
	assert.True(t, email.Date.Equal(fallbackNow), "Date = %v", email.Date)
	assert.True(t, email.IsRead, "no UNREAD label means read")
	assert.Empty(t, email.Body)
}
