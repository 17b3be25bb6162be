package gmail

import (
	"encoding/base64"
	"html"
	"mime"
	"net/mail"
	"strings"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/lu-zhengda/zeromail/internal/domain"
)

// mapMessage converts a Gmail API Message to a domain Email. now is used
// when the Date header is missing or unparsable.
func mapMessage(msg *gmailapi.Message, now time.Time) *domain.Email {
	var headers []*gmailapi.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	return &domain.Email{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		From:     decodeHeader(findHeader(headers, "From")),
		To:       decodeHeader(findHeader(headers, "To")),
		Subject:  decodeHeader(findHeader(headers, "Subject")),
		Snippet:  html.UnescapeString(msg.Snippet),
		Body:     extractBody(msg.Payload),
		Date:     parseDate(findHeader(headers, "Date"), now),
		IsRead:   !containsLabel(msg.LabelIds, domain.LabelUnread),
	}
}

// findHeader performs a case-insensitive lookup for a header value.
func findHeader(headers []*gmailapi.MessagePartHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

var wordDecoder = new(mime.WordDecoder)

// decodeHeader expands RFC 2047 encoded words, returning s unchanged if it
// cannot be decoded.
func decodeHeader(s string) string {
	decoded, err := wordDecoder.DecodeHeader(s)
	if err != nil {
		return s
	}
	return decoded
}

// parseDate parses an RFC 2822 date, trying a few lenient layouts seen in
// the wild before falling back to now.
func parseDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	if t, err := mail.ParseDate(s); err == nil {
		return t
	}

	formats := []string{
		time.RFC1123Z,                           // "Mon, 02 Jan 2006 15:04:05 -0700"
		time.RFC1123,                            // "Mon, 02 Jan 2006 15:04:05 MST"
		"Mon, 2 Jan 2006 15:04:05 -0700 (MST)",  // with parenthesized zone
		"Mon, 02 Jan 2006 15:04:05 -0700 (MST)", // same, two-digit day
		"2 Jan 2006 15:04:05 -0700",             // no weekday
		time.RFC3339,                            // ISO 8601
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return now
}

// containsLabel checks if a label is present in the list.
func containsLabel(labels []string, label string) bool {
	for _, l := range labels {
		if l == label {
			return true
		}
	}
	return false
}

// extractBody returns the first text/plain part of a multipart payload, or
// the body of a single-part payload.
func extractBody(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return ""
	}
	if len(payload.Parts) > 0 {
		part := findPlainPart(payload.Parts)
		if part == nil {
			return ""
		}
		return decodeBase64(part.Body.Data)
	}
	if payload.Body == nil {
		return ""
	}
	return decodeBase64(payload.Body.Data)
}

// findPlainPart walks parts depth-first in document order.
func findPlainPart(parts []*gmailapi.MessagePart) *gmailapi.MessagePart {
	for _, part := range parts {
		if part == nil {
			continue
		}
		if isPlainText(part.MimeType) && part.Filename == "" && part.Body != nil {
			return part
		}
		if len(part.Parts) > 0 {
			if found := findPlainPart(part.Parts); found != nil {
				return found
			}
		}
	}
	return nil
}

func isPlainText(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(mimeType), "text/plain")
	}
	return mediaType == "text/plain"
}

// decodeBase64 accepts the URL-safe and standard alphabets, padded or not.
func decodeBase64(s string) string {
	s = strings.TrimRight(strings.TrimSpace(s), "=")
	if s == "" {
		return ""
	}
	enc := base64.RawURLEncoding
	if strings.ContainsAny(s, "+/") {
		enc = base64.RawStdEncoding
	}
	data, err := enc.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(data)
}
