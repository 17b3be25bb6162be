package gmail

import (
	"encoding/base64"
	"mime"
	"strings"

	"github.com/lu-zhengda/zeromail/internal/domain"
)

var headerLineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// buildRawMessage constructs a minimal RFC 2822 plain-text message.
func buildRawMessage(d domain.Draft) string {
	var b strings.Builder

	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("To: " + headerLineBreaks.Replace(d.To) + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", headerLineBreaks.Replace(d.Subject)) + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(d.Body)

	return b.String()
}

// encodeRawMessage returns the message in the form users.messages.send
// expects: URL-safe base64 without padding.
func encodeRawMessage(d domain.Draft) string {
	return base64.RawURLEncoding.EncodeToString([]byte(buildRawMessage(d)))
}
