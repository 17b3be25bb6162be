package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/lu-zhengda/zeromail/internal/auth"
	"github.com/lu-zhengda/zeromail/internal/config"
	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/log"
	"github.com/lu-zhengda/zeromail/internal/provider"
	"github.com/lu-zhengda/zeromail/internal/provider/fixture"
	"github.com/lu-zhengda/zeromail/internal/provider/gmail"
	"github.com/lu-zhengda/zeromail/internal/store"
	"github.com/lu-zhengda/zeromail/internal/tui"
)

var (
	// version is set via ldflags at build time.
	version = "dev"
	cfgFile string

	modeFlag       string
	debugFlag      bool
	maxResultsFlag int

	// jsonFlag enables JSON output for the non-interactive commands.
	jsonFlag bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "zeromail",
		Short:         "Terminal mail reader",
		Long:          "A terminal mail reader with a built-in demo inbox and Gmail support.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			if err := log.Setup(config.AppName, debugFlag); err != nil {
				return fmt.Errorf("failed to set up debug log: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			p, err := openProvider(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			log.Printf("session: starting with %s backend", cfg.Mode)
			return tui.Run(cmd.Context(), p, tui.Options{
				MaxResults: cfg.Inbox.MaxResults,
				Backend:    cfg.Mode,
			})
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("zeromail %s\n", version))
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().StringVar(&modeFlag, "mode", "", "mail backend: fixture or gmail (overrides config)")
	root.PersistentFlags().BoolVar(&debugFlag, "debug", false, "write a debug log to the state directory")
	root.PersistentFlags().IntVar(&maxResultsFlag, "max-results", 0, "inbox page size (overrides config)")
	root.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output in JSON format")
	root.AddCommand(newAuthCmd())
	root.AddCommand(newLogoutCmd())
	root.AddCommand(newCredentialsCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newReadCmd())
	root.AddCommand(newSendCmd())
	return root
}

func Execute() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer log.Close()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		printError(os.Stderr, err)
		return 1
	}
	return 0
}

// printError writes err and, for setup failures, what to do about it.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if hint := errorHint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, domain.ErrMissingCredentials):
		return fmt.Sprintf("set %s/%s, add them to the [gmail] section of %s, or run 'zeromail credentials set'",
			auth.EnvClientID, auth.EnvClientSecret, config.DefaultPath())
	case errors.Is(err, domain.ErrAuthRequired):
		return "run 'zeromail auth' to authorize Gmail access"
	}
	return ""
}

// loadConfig loads the configuration file and applies flag overrides.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if modeFlag != "" {
		cfg.Mode = modeFlag
	}
	if maxResultsFlag > 0 {
		cfg.Inbox.MaxResults = maxResultsFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveCredentials finds the OAuth client credentials. A keyring that
// cannot be read counts as empty; Validate then reports what is missing.
func resolveCredentials(cfg *config.Config) auth.Credentials {
	creds, err := auth.ResolveCredentials(cfg.Gmail.ClientID, cfg.Gmail.ClientSecret, store.NewKeyringCredentialStore())
	if err != nil {
		log.Printf("credentials: %v", err)
		return auth.Credentials{}
	}
	return creds
}

func tokenStore() *store.FileTokenStore {
	return store.NewFileTokenStore(store.DefaultTokenPath(config.AppName))
}

// openProvider builds the backend selected by cfg.Mode.
func openProvider(ctx context.Context, cfg *config.Config) (provider.EmailProvider, error) {
	switch cfg.Mode {
	case config.ModeGmail:
		p, err := gmail.Connect(ctx, resolveCredentials(cfg), tokenStore(),
			gmail.WithFetchConcurrency(cfg.Inbox.FetchConcurrency))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Gmail: %w", err)
		}
		return p, nil
	default:
		delays, err := cfg.FixtureDelays()
		if err != nil {
			return nil, err
		}
		return fixture.New(fixture.WithOperationLatency(fixture.Latency{
			List: delays.List,
			Get:  delays.Get,
			Send: delays.Send,
		})), nil
	}
}
