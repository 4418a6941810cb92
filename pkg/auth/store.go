// Package auth owns the Google OAuth2 credential: the browser
// authorization flow, durable persistence, and refresh-before-expiry.
package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/harrisonrobin/morrow/pkg/config"
	"github.com/harrisonrobin/morrow/pkg/errs"
)

const (
	// localAuthPort is where the local redirect listener binds during the
	// browser flow. Must match the OAuth client's registered redirect URI.
	localAuthPort = "8085"

	// refreshMargin is how early a token is refreshed before its expiry.
	refreshMargin = 5 * time.Minute

	authorizeTimeout = 5 * time.Minute
)

// Store persists and refreshes the OAuth2 token pair. It is the only
// component with durable cross-run state.
type Store struct {
	path   string
	oauth  *oauth2.Config
	margin time.Duration
	now    func() time.Time
}

// NewStore creates a Store persisting to path. The OAuth client pair is
// read from the environment.
func NewStore(path string) (*Store, error) {
	clientID := os.Getenv(config.ClientIDEnv)
	clientSecret := os.Getenv(config.ClientSecretEnv)
	if clientID == "" || clientSecret == "" {
		return nil, errs.Newf(errs.CodeAuthFailed, "%s and %s must be set", config.ClientIDEnv, config.ClientSecretEnv)
	}

	return &Store{
		path: path,
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  fmt.Sprintf("http://localhost:%s", localAuthPort),
			Scopes:       []string{tasks.TasksScope},
		},
		margin: refreshMargin,
		now:    time.Now,
	}, nil
}

// Load returns the persisted credential, or nil when none exists.
func (s *Store) Load() (*Credential, error) {
	return loadCredential(s.path)
}

// Save persists the credential.
func (s *Store) Save(cred *Credential) error {
	return saveCredential(s.path, cred)
}

// EnsureValid returns a credential whose access token is good for at
// least the refresh margin. A refresh exchange runs, and the result is
// persisted, only when the cached token is close to expiry; otherwise the
// cached credential is returned with no network call.
func (s *Store) EnsureValid(ctx context.Context) (*Credential, error) {
	cred, err := s.Load()
	if err != nil {
		return nil, errs.Wrap(errs.CodeAuthFailed, "failed to load credentials", err)
	}
	if cred == nil || cred.RefreshToken == "" {
		return nil, errs.New(errs.CodeAuthFailed, "no credentials found, run 'morrow auth' first")
	}

	if cred.AccessToken != "" && !cred.ExpiresWithin(s.now(), s.margin) {
		return cred, nil
	}

	refreshed, err := s.refresh(ctx, cred)
	if err != nil {
		return nil, err
	}
	if err := s.Save(refreshed); err != nil {
		return nil, errs.Wrap(errs.CodeAuthFailed, "failed to persist refreshed credentials", err)
	}
	return refreshed, nil
}

// refresh exchanges the refresh token for a fresh access token.
func (s *Store) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	src := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, errs.Wrap(errs.CodeAuthFailed, "token refresh failed", err)
	}
	return fromToken(tok, cred.RefreshToken), nil
}

// Authenticate runs the full browser authorization flow and persists the
// resulting credential. It binds a local listener to capture the
// redirect, so only one flow can run at a time on a machine.
func (s *Store) Authenticate(ctx context.Context) (*Credential, error) {
	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", localAuthPort))
	if err != nil {
		return nil, errs.Wrap(errs.CodeAuthFailed, "failed to bind local redirect listener", err)
	}
	defer listener.Close()

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "authorization code not found", http.StatusBadRequest)
				errCh <- errs.New(errs.CodeAuthFailed, "no authorization code in redirect")
				return
			}
			fmt.Fprint(w, "Authorization successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- errs.Wrap(errs.CodeAuthFailed, "redirect listener failed", err)
		}
	}()
	defer server.Shutdown(context.Background())

	// access_type=offline plus prompt=consent forces Google to return a
	// refresh token even for repeat authorizations.
	authURL := s.oauth.AuthCodeURL("state-token",
		oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Printf("Open this URL in your browser to authorize:\n\n%s\n\nWaiting for authorization...\n", authURL)

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-time.After(authorizeTimeout):
		return nil, errs.New(errs.CodeAuthFailed, "authorization timed out, please try again")
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, errs.Wrap(errs.CodeAuthFailed, "token exchange failed", err)
	}

	cred := fromToken(tok, "")
	if cred.RefreshToken == "" {
		return nil, errs.New(errs.CodeAuthFailed, "no refresh token returned, revoke access and re-authorize")
	}
	if err := s.Save(cred); err != nil {
		return nil, errs.Wrap(errs.CodeAuthFailed, "failed to persist credentials", err)
	}
	return cred, nil
}

// fromToken converts an oauth2.Token, falling back to the previous
// refresh token when the exchange omits one.
func fromToken(tok *oauth2.Token, previousRefresh string) *Credential {
	cred := &Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if cred.RefreshToken == "" {
		cred.RefreshToken = previousRefresh
	}
	if !tok.Expiry.IsZero() {
		cred.ExpiresAt = tok.Expiry.Unix()
	}
	return cred
}
