package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/lu-zhengda/zeromail/internal/domain"
	"github.com/lu-zhengda/zeromail/internal/log"
	"github.com/lu-zhengda/zeromail/internal/store"
)

// TokenSource starts a session from the stored token. The stored token is
// used as is; expiry is only handled when a request needs a fresh access
// token, and a refreshed token replaces the stored record.
func TokenSource(ctx context.Context, creds Credentials, tokens store.TokenStore, endpoint oauth2.Endpoint) (oauth2.TokenSource, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	td, err := tokens.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	if td == nil {
		return nil, fmt.Errorf("%w: no stored token, run 'zeromail auth' first", domain.ErrAuthRequired)
	}

	cfg := creds.Config("", endpoint)
	tok := td.OAuth2()
	return &persistingSource{
		src:     cfg.TokenSource(ctx, tok),
		tokens:  tokens,
		current: td,
	}, nil
}

// persistingSource writes every newly issued access token back to the store.
type persistingSource struct {
	src    oauth2.TokenSource
	tokens store.TokenStore

	mu      sync.Mutex
	current *store.TokenData
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if s.current.RefreshToken == "" || errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: stored token can no longer be used, run 'zeromail auth' again: %w", domain.ErrAuthRequired, err)
		}
		return nil, err
	}
	if tok.AccessToken == s.current.AccessToken {
		return tok, nil
	}

	next := store.NewTokenData(tok)
	if next.RefreshToken == "" {
		next.RefreshToken = s.current.RefreshToken
	}
	if next.Scope == "" {
		next.Scope = s.current.Scope
	}
	if err := s.tokens.Save(next); err != nil {
		log.Printf("oauth: unable to save refreshed token: %v", err)
	} else {
		log.Printf("oauth: saved refreshed token")
	}
	s.current = next
	return tok, nil
}
