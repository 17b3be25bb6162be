package store

// TokenStore persists the OAuth token record for the Gmail account.
type TokenStore interface {
	// Load returns nil without an error when no record has been saved.
	Load() (*TokenData, error)
	Save(tok *TokenData) error
	Clear() error
}

// CredentialStore persists the OAuth client id and secret.
type CredentialStore interface {
	LoadCredentials() (clientID, clientSecret string, err error)
	SaveCredentials(clientID, clientSecret string) error
	DeleteCredentials() error
}
