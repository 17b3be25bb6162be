package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/oauth2"

	"github.com/lu-zhengda/zeromail/internal/log"
	"github.com/lu-zhengda/zeromail/internal/store"
)

const (
	// DefaultCallbackAddr must match the redirect URI registered for the client.
	DefaultCallbackAddr = "localhost:3000"
	CallbackPath        = "/oauth2callback"
)

const successPage = `<!DOCTYPE html>
<html>
<head><title>zeromail</title></head>
<body style="font-family: sans-serif; text-align: center; padding: 3em;">
<h1>Authentication successful</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`

// Flow runs the interactive authorization-code flow once.
type Flow struct {
	Credentials Credentials
	Tokens      store.TokenStore

	// Addr is the host:port the callback listener binds. Port 0 picks a
	// free port and the redirect URI follows it.
	Addr     string
	Endpoint oauth2.Endpoint
	// Timeout bounds the wait for the browser round trip. Zero waits until
	// the context is done.
	Timeout time.Duration

	// OpenURL defaults to browser.OpenURL.
	OpenURL func(url string) error
	// Notify receives the authorization URL before the browser is opened.
	Notify func(url string)
	// HTTPClient, when set, is used for the code exchange.
	HTTPClient *http.Client
}

type flowResult struct {
	token *store.TokenData
	err   error
}

// Run blocks until the callback delivers a code that is exchanged and
// saved, the flow fails, or ctx is done. The listener is shut down before
// Run returns on every path.
func (f *Flow) Run(ctx context.Context) (*store.TokenData, error) {
	if err := f.Credentials.Validate(); err != nil {
		return nil, err
	}
	if f.Tokens == nil {
		return nil, errors.New("failed to start authorization: no token store")
	}
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	if f.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, f.HTTPClient)
	}

	addr := f.Addr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener on %s: %w", addr, err)
	}
	defer listener.Close()

	redirect, err := redirectURL(addr, listener.Addr())
	if err != nil {
		return nil, err
	}
	state, err := randomState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()
	cfg := f.Credentials.Config(redirect, f.Endpoint)

	cb := &callback{
		ctx:      ctx,
		cfg:      cfg,
		state:    state,
		verifier: verifier,
		tokens:   f.Tokens,
		done:     make(chan flowResult, 1),
	}
	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, cb.handle)

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("oauth: callback server shutdown: %v", err)
		}
		<-serveDone
	}()

	authURL := cfg.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	)
	if f.Notify != nil {
		f.Notify(authURL)
	}
	open := f.OpenURL
	if open == nil {
		open = browser.OpenURL
	}
	if err := open(authURL); err != nil {
		log.Printf("oauth: failed to open browser: %v", err)
	}
	log.Printf("oauth: waiting for callback on %s", redirect)

	select {
	case res := <-cb.done:
		return res.token, res.err
	case err := <-serveErr:
		return nil, fmt.Errorf("callback server failed: %w", err)
	case <-ctx.Done():
		return nil, fmt.Errorf("authorization not completed: %w", ctx.Err())
	}
}

// callback handles redirects from the authorization server. Requests
// without a code are rejected and the listener keeps waiting. Only GET is
// routed; other methods get 404 like any unknown path.
type callback struct {
	ctx      context.Context
	cfg      *oauth2.Config
	state    string
	verifier string
	tokens   store.TokenStore

	mu       sync.Mutex
	finished bool
	done     chan flowResult
}

func (c *callback) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q := r.URL.Query()
	code := q.Get("code")
	if code == "" {
		log.Printf("oauth: callback without code (error=%q)", q.Get("error"))
		http.Error(w, "No authorization code received.", http.StatusBadRequest)
		return
	}
	if q.Get("state") != c.state {
		log.Printf("oauth: callback with mismatched state")
		http.Error(w, "Invalid state parameter.", http.StatusBadRequest)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished {
		http.Error(w, "Authorization already completed.", http.StatusConflict)
		return
	}

	tok, err := c.cfg.Exchange(c.ctx, code, oauth2.VerifierOption(c.verifier))
	if err != nil {
		http.Error(w, "Authentication failed. Check the terminal for details.", http.StatusInternalServerError)
		c.finish(nil, fmt.Errorf("failed to exchange authorization code: %w", err))
		return
	}
	td := store.NewTokenData(tok)
	if err := c.tokens.Save(td); err != nil {
		http.Error(w, "Failed to save credentials. Check the terminal for details.", http.StatusInternalServerError)
		c.finish(nil, fmt.Errorf("failed to save token: %w", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(successPage))
	c.finish(td, nil)
}

// finish must be called with c.mu held.
func (c *callback) finish(tok *store.TokenData, err error) {
	c.finished = true
	c.done <- flowResult{token: tok, err: err}
}

func redirectURL(addr string, bound net.Addr) (string, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return "", fmt.Errorf("invalid callback address %q: %w", addr, err)
	}
	if host == "" {
		host = "localhost"
	}
	_, port, err := net.SplitHostPort(bound.String())
	if err != nil {
		return "", fmt.Errorf("invalid listener address %q: %w", bound, err)
	}
	return "http://" + net.JoinHostPort(host, port) + CallbackPath, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
