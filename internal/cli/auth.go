package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lu-zhengda/zeromail/internal/auth"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Gmail access",
		Long: "Open the browser-based OAuth consent flow, wait for the redirect on the local\n" +
			"callback address, and store the resulting token.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			timeout, err := cfg.AuthTimeout()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			tokens := tokenStore()
			flow := &auth.Flow{
				Credentials: resolveCredentials(cfg),
				Tokens:      tokens,
				Addr:        cfg.Gmail.CallbackAddr,
				Timeout:     timeout,
				Notify: func(url string) {
					fmt.Fprintln(out, "Opening your browser to authorize zeromail.")
					fmt.Fprintf(out, "If it does not open, visit this URL:\n\n  %s\n\n", url)
				},
			}
			if _, err := flow.Run(cmd.Context()); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			if jsonFlag {
				return fprintJSON(out, jsonAction{OK: true, Action: "auth"})
			}
			fmt.Fprintf(out, "Authorized. Token saved to %s\n", tokens.Path())
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored Gmail token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := tokenStore().Clear(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonFlag {
				return fprintJSON(out, jsonAction{OK: true, Action: "logout"})
			}
			fmt.Fprintln(out, "Logged out.")
			return nil
		},
	}
}
