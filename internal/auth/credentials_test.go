package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/lu-zhengda/zeromail/internal/domain"
)

type fakeCredentialStore struct {
	id, secret string
	err        error
}

func (f *fakeCredentialStore) LoadCredentials() (string, string, error) {
	return f.id, f.secret, f.err
}

func (f *fakeCredentialStore) SaveCredentials(id, secret string) error {
	f.id, f.secret = id, secret
	return nil
}

func (f *fakeCredentialStore) DeleteCredentials() error {
	f.id, f.secret = "", ""
	return nil
}

func TestResolveCredentials(t *testing.T) {
	keyring := &fakeCredentialStore{id: "keyring-id", secret: "keyring-secret"}

	tests := []struct {
		name      string
		envID     string
		envSecret string
		cfgID     string
		cfgSecret string
		want      Credentials
	}{
		{
			name:  "environment wins",
			envID: "env-id", envSecret: "env-secret",
			cfgID: "cfg-id", cfgSecret: "cfg-secret",
			want: Credentials{ClientID: "env-id", ClientSecret: "env-secret"},
		},
		{
			name:  "partial environment falls through to config",
			envID: "env-id",
			cfgID: "cfg-id", cfgSecret: "cfg-secret",
			want: Credentials{ClientID: "cfg-id", ClientSecret: "cfg-secret"},
		},
		{
			name: "keyring last",
			want: Credentials{ClientID: "keyring-id", ClientSecret: "keyring-secret"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvClientID, tt.envID)
			t.Setenv(EnvClientSecret, tt.envSecret)

			got, err := ResolveCredentials(tt.cfgID, tt.cfgSecret, keyring)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCredentials_Nothing(t *testing.T) {
	t.Setenv(EnvClientID, "")
	t.Setenv(EnvClientSecret, "")

	got, err := ResolveCredentials("", "", &fakeCredentialStore{})
	require.NoError(t, err)
	assert.ErrorIs(t, got.Validate(), domain.ErrMissingCredentials)

	_, err = ResolveCredentials("", "", &fakeCredentialStore{err: errors.New("keyring locked")})
	assert.EqualError(t, err, "keyring locked")
}

func TestCredentials_Config(t *testing.T) {
	c := Credentials{ClientID: "id", ClientSecret: "secret"}

	cfg := c.Config("http://localhost:3000/oauth2callback", oauth2.Endpoint{})
	assert.Equal(t, google.Endpoint, cfg.Endpoint)
	assert.Equal(t, Scopes, cfg.Scopes)
	assert.Equal(t, "http://localhost:3000/oauth2callback", cfg.RedirectURL)

	custom := oauth2.Endpoint{TokenURL: "http://127.0.0.1/token"}
	assert.Equal(t, custom, c.Config("", custom).Endpoint)
}
