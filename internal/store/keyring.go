package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	serviceName    = "zeromail"
	credentialsKey = "oauth-client"
)

type clientCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// KeyringCredentialStore persists the OAuth client credentials in the OS keyring
// (macOS Keychain, Windows Credential Manager, or Linux Secret Service).
type KeyringCredentialStore struct{}

// NewKeyringCredentialStore returns a new KeyringCredentialStore.
func NewKeyringCredentialStore() *KeyringCredentialStore {
	return &KeyringCredentialStore{}
}

// SaveCredentials stores the client id and secret in the OS keyring.
func (k *KeyringCredentialStore) SaveCredentials(clientID, clientSecret string) error {
	data, err := json.Marshal(clientCredentials{ClientID: clientID, ClientSecret: clientSecret})
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := keyring.Set(serviceName, credentialsKey, string(data)); err != nil {
		return fmt.Errorf("failed to save credentials to keyring: %w", err)
	}
	return nil
}

// LoadCredentials returns empty strings when nothing has been stored.
func (k *KeyringCredentialStore) LoadCredentials() (string, string, error) {
	data, err := keyring.Get(serviceName, credentialsKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", "", nil
		}
		return "", "", fmt.Errorf("failed to load credentials from keyring: %w", err)
	}
	var creds clientCredentials
	if err := json.Unmarshal([]byte(data), &creds); err != nil {
		return "", "", fmt.Errorf("failed to unmarshal credentials: %w", err)
	}
	return creds.ClientID, creds.ClientSecret, nil
}

// DeleteCredentials removes the stored client credentials, if any.
func (k *KeyringCredentialStore) DeleteCredentials() error {
	if err := keyring.Delete(serviceName, credentialsKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete credentials from keyring: %w", err)
	}
	return nil
}

var _ CredentialStore = (*KeyringCredentialStore)(nil)
