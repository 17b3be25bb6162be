package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/zeromail/internal/domain"
)

func newListCmd() *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List inbox messages",
		Long:  "List the first page of the inbox from the configured backend.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := openProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			limit := cfg.Inbox.MaxResults
			if limitFlag > 0 {
				limit = limitFlag
			}
			page, err := p.ListInbox(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list inbox: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				return fprintJSON(out, toJSONInbox(page))
			}
			if len(page.Emails) == 0 {
				fmt.Fprintln(out, "No messages found.")
				return nil
			}
			return writeInboxTable(out, page.Emails)
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 0, "max messages to show (defaults to inbox.max_results)")
	return cmd
}

func writeInboxTable(out io.Writer, emails []domain.Email) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UNREAD\tFROM\tSUBJECT\tDATE\tID")
	for i := range emails {
		e := &emails[i]
		unread := " "
		if !e.IsRead {
			unread = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			unread,
			runewidth.Truncate(e.SenderName(), 30, "..."),
			runewidth.Truncate(e.Subject, 50, "..."),
			e.Date.Format("Jan 2, 2006"),
			e.ID,
		)
	}
	return w.Flush()
}

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <message-id>",
		Short: "Read a message",
		Long:  "Display a single message by ID.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := openProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			email, err := p.GetMessage(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get message: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				return fprintJSON(out, toJSONMessage(email))
			}

			fmt.Fprintf(out, "From: %s\n", email.From)
			fmt.Fprintf(out, "To: %s\n", email.To)
			fmt.Fprintf(out, "Date: %s\n", email.Date.Format("Mon, Jan 2 2006 3:04 PM"))
			fmt.Fprintf(out, "Subject: %s\n", email.Subject)
			readStatus := "read"
			if !email.IsRead {
				readStatus = "unread"
			}
			fmt.Fprintf(out, "Status: %s\n", readStatus)
			fmt.Fprintf(out, "Message ID: %s\n", email.ID)
			fmt.Fprintln(out, strings.Repeat("─", 60))
			fmt.Fprintln(out, email.Body)
			return nil
		},
	}
}

func newSendCmd() *cobra.Command {
	var to, subject, body string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a plain-text message",
		Long:  "Send a plain-text message. Use --body - to read the body from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if body == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read body from stdin: %w", err)
				}
				body = string(data)
			}
			draft := domain.Draft{
				To:      strings.TrimSpace(to),
				Subject: strings.TrimSpace(subject),
				Body:    body,
			}
			if err := draft.Validate(); err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := openProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			if err := p.Send(cmd.Context(), draft); err != nil {
				return fmt.Errorf("failed to send message: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				return fprintJSON(out, jsonAction{OK: true, Action: "send", To: draft.To})
			}
			fmt.Fprintf(out, "Message sent to %s\n", draft.To)
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "recipient address")
	cmd.Flags().StringVar(&subject, "subject", "", "message subject")
	cmd.Flags().StringVar(&body, "body", "", "message body, or - for stdin")
	return cmd
}
