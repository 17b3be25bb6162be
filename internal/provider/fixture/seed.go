package fixture

import (
	"time"

	"github.com/lu-zhengda/zeromail/internal/domain"
)

// SeedMessages returns the demo inbox, newest first.
func SeedMessages() []domain.Email {
	return []domain.Email{
		{
			ID:       "1",
			ThreadID: "t1",
			From:     "alice@example.com",
			To:       "you@example.com",
			Subject:  "Welcome to Zero Mail!",
			Snippet:  "This is a mock email to help you test the interface...",
			Body:     "This is a mock email to help you test the interface. Everything works!\n\nYou can navigate with arrow keys, press Enter to view messages, and press C to compose.\n\nEnjoy!",
			Date:     time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC),
			IsRead:   false,
		},
		{
			ID:       "2",
			ThreadID: "t2",
			From:     "bob@example.com",
			To:       "you@example.com",
			Subject:  "Re: Project Update",
			Snippet:  "Thanks for the update! The new features look great...",
			Body:     "Thanks for the update! The new features look great.\n\nI reviewed the code and everything looks solid. Let's schedule a demo for next week.\n\nBest,\nBob",
			Date:     time.Date(2024, time.January, 14, 15, 45, 0, 0, time.UTC),
			IsRead:   true,
		},
		{
			ID:       "3",
			ThreadID: "t3",
			From:     "notifications@github.com",
			To:       "you@example.com",
			Subject:  "[GitHub] New pull request",
			Snippet:  "A new pull request has been opened in your repository...",
			Body:     "A new pull request has been opened in your repository.\n\nPR #42: Add dark mode support\n\nReview it at: https://github.com/...",
			Date:     time.Date(2024, time.January, 13, 9, 15, 0, 0, time.UTC),
			IsRead:   true,
		},
		{
			ID:       "4",
			ThreadID: "t4",
			From:     "team@company.com",
			To:       "you@example.com",
			Subject:  "Team Meeting - Tomorrow 2pm",
			Snippet:  "Quick reminder about our team sync tomorrow...",
			Body:     "Quick reminder about our team sync tomorrow at 2pm.\n\nAgenda:\n- Sprint review\n- Planning next quarter\n- Q&A\n\nSee you there!",
			Date:     time.Date(2024, time.January, 12, 16, 20, 0, 0, time.UTC),
			IsRead:   false,
		},
	}
}
