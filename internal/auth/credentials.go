package auth

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/store"
)

// Environment variables holding the OAuth client credentials.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
)

// Scopes requested by the authorization flow.
var Scopes = []string{gmailapi.GmailModifyScope}

// Credentials identify the OAuth client registered with Google.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Validate reports ErrMissingCredentials when either value is blank.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.ClientID) == "" || strings.TrimSpace(c.ClientSecret) == "" {
		return fmt.Errorf("%w: set %s and %s (environment or .env), add them to the [gmail] section of the config file, or run 'zeromail credentials set'",
			domain.ErrMissingCredentials, EnvClientID, EnvClientSecret)
	}
	return nil
}

// Config builds the oauth2 configuration. A zero endpoint selects Google.
func (c Credentials) Config(redirectURL string, endpoint oauth2.Endpoint) *oauth2.Config {
	if endpoint == (oauth2.Endpoint{}) {
		endpoint = google.Endpoint
	}
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  redirectURL,
		Scopes:       Scopes,
		Endpoint:     endpoint,
	}
}

// ResolveCredentials returns the first complete pair from, in order, the
// environment, the config file values, and the credential store.
// An incomplete result is returned as is; Validate reports it.
func ResolveCredentials(cfgID, cfgSecret string, secrets store.CredentialStore) (Credentials, error) {
	if id, secret := os.Getenv(EnvClientID), os.Getenv(EnvClientSecret); id != "" && secret != "" {
		return Credentials{ClientID: id, ClientSecret: secret}, nil
	}
	if cfgID != "" && cfgSecret != "" {
		return Credentials{ClientID: cfgID, ClientSecret: cfgSecret}, nil
	}
	if secrets == nil {
		return Credentials{}, nil
	}
	id, secret, err := secrets.LoadCredentials()
	if err != nil {
		return Credentials{}, err
	}
	return Credentials{ClientID: id, ClientSecret: secret}, nil
}
