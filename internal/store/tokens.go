package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
)

// TokenFileName is the file the Gmail token record is written to.
const TokenFileName = "gmail-tokens.json"

// TokenData is the persisted OAuth credential set. ExpiryDate is in epoch
// milliseconds; zero means the access token carries no expiry.
type TokenData struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
	ExpiryDate   int64  `json:"expiry_date"`
}

// NewTokenData converts a token returned by an exchange or a refresh.
func NewTokenData(tok *oauth2.Token) *TokenData {
	td := &TokenData{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		td.Scope = scope
	}
	if !tok.Expiry.IsZero() {
		td.ExpiryDate = tok.Expiry.UnixMilli()
	}
	return td
}

// OAuth2 returns the record as an *oauth2.Token.
func (t *TokenData) OAuth2() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.ExpiryDate > 0 {
		tok.Expiry = time.UnixMilli(t.ExpiryDate)
	}
	if t.Scope != "" {
		tok = tok.WithExtra(map[string]any{"scope": t.Scope})
	}
	return tok
}

// FileTokenStore keeps the token record as a JSON file on local disk.
type FileTokenStore struct {
	path string
}

// NewFileTokenStore returns a store backed by the file at path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path}
}

// DefaultTokenPath returns <config dir>/<app>/gmail-tokens.json.
func DefaultTokenPath(app string) string {
	return filepath.Join(xdg.ConfigHome, app, TokenFileName)
}

// Path returns the location of the token file.
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load reads the token record. A missing or empty file yields nil, nil.
func (s *FileTokenStore) Load() (*TokenData, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var tok TokenData
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &tok, nil
}

// Save overwrites the token file, creating its directory when needed.
func (s *FileTokenStore) Save(tok *TokenData) error {
	if tok == nil {
		return errors.New("failed to save token: nil token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// Clear removes the token file. A file that is already gone is not an error.
func (s *FileTokenStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

var _ TokenStore = (*FileTokenStore)(nil)
