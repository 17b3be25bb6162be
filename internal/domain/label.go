package domain

// System label ids shared by the Gmail API.
const (
	LabelInbox  = "INBOX"
	LabelUnread = "UNREAD"
)
