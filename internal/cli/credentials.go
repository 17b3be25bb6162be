package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/zeromail/internal/store"
)

func newCredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage Gmail OAuth client credentials",
		Long: "Store the Google OAuth client id and secret in the OS keyring. Environment\n" +
			"variables and the config file take precedence over the keyring.",
	}
	cmd.AddCommand(newCredentialsSetCmd())
	cmd.AddCommand(newCredentialsClearCmd())
	return cmd
}

func newCredentialsSetCmd() *cobra.Command {
	var clientID, clientSecret string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save client credentials to the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if clientID == "" || clientSecret == "" {
				form := huh.NewForm(
					huh.NewGroup(
						huh.NewInput().
							Title("Client ID").
							Placeholder("1234-abcd.apps.googleusercontent.com").
							Validate(validateNotBlank).
							Value(&clientID),
						huh.NewInput().
							Title("Client secret").
							EchoMode(huh.EchoModePassword).
							Validate(validateNotBlank).
							Value(&clientSecret),
					),
				)
				if err := form.RunWithContext(cmd.Context()); err != nil {
					if errors.Is(err, huh.ErrUserAborted) {
						fmt.Fprintln(out, "Canceled.")
						return nil
					}
					return err
				}
			}

			id, secret := strings.TrimSpace(clientID), strings.TrimSpace(clientSecret)
			if id == "" || secret == "" {
				return errors.New("client id and secret are required")
			}
			if err := store.NewKeyringCredentialStore().SaveCredentials(id, secret); err != nil {
				return err
			}
			if jsonFlag {
				return fprintJSON(out, jsonAction{OK: true, Action: "credentials_set"})
			}
			fmt.Fprintln(out, "Credentials saved to the OS keyring.")
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client id (skips the form with --client-secret)")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")
	return cmd
}

func newCredentialsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove client credentials from the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := store.NewKeyringCredentialStore().DeleteCredentials(); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonFlag {
				return fprintJSON(out, jsonAction{OK: true, Action: "credentials_clear"})
			}
			fmt.Fprintln(out, "Credentials removed.")
			return nil
		},
	}
}

func validateNotBlank(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("required")
	}
	return nil
}
