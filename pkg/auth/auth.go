// Package auth obtains and refreshes the bearer credential used for
// catalog queries and file downloads.
//
//go:generate mockgen -destination=./mocks/auth.go . TokenSource
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/cperrin88/sentfetch/pkg/errors"
)

// TokenSource provides a valid bearer credential and applies it to
// outgoing requests.
type TokenSource interface {
	// Acquire forces a fresh token exchange, e.g. after the remote
	// service rejected a credential that still looked valid locally.
	Acquire(ctx context.Context) (Credential, error)
	// EnsureValid returns a credential whose expiry is outside the
	// safety margin, refreshing it first when needed.
	EnsureValid(ctx context.Context) (Credential, error)
	// Apply sets the Authorization header on req, refreshing the
	// credential when needed.
	Apply(ctx context.Context, req *http.Request) error
}

// Credential is a bearer token with its expiry. It is owned by the
// Authenticator and shared read-only with the catalog client and the
// downloader.
type Credential struct {
	Token  string
	Expiry time.Time
}

// Valid reports whether the token is usable for at least margin more time.
func (c Credential) Valid(now time.Time, margin time.Duration) bool {
	return c.Token != "" && now.Add(margin).Before(c.Expiry)
}

// DefaultClientID is the public OAuth client used by the catalog identity
// service.
const DefaultClientID = "cdse-public"

// DefaultExpiryMargin is how long before expiry a token is refreshed.
const DefaultExpiryMargin = 60 * time.Second

// Authenticator exchanges username/password for a bearer token via the
// identity service's password grant and refreshes it in place. Refresh is
// a single-writer operation: concurrent callers observe either the old or
// the new token, never a partial update.
type Authenticator struct {
	client   *http.Client
	tokenURL string
	clientID string
	username string
	password string
	margin   time.Duration

	mu   sync.Mutex
	cred Credential

	// now is swappable for tests.
	now func() time.Time
}

// New creates an Authenticator for the given token endpoint and account.
func New(tokenURL, username, password string, timeout time.Duration) *Authenticator {
	return &Authenticator{
		client:   &http.Client{Timeout: timeout},
		tokenURL: tokenURL,
		clientID: DefaultClientID,
		username: username,
		password: password,
		margin:   DefaultExpiryMargin,
		now:      time.Now,
	}
}

// Acquire forces a token exchange and stores the new credential.
func (a *Authenticator) Acquire(ctx context.Context) (Credential, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refreshLocked(ctx)
}

// EnsureValid returns the held credential, refreshing it when its expiry
// is within the safety margin.
func (a *Authenticator) EnsureValid(ctx context.Context) (Credential, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cred.Valid(a.now(), a.margin) {
		return a.cred, nil
	}
	return a.refreshLocked(ctx)
}

// Apply sets the Authorization bearer header on req.
func (a *Authenticator) Apply(ctx context.Context, req *http.Request) error {
	cred, err := a.EnsureValid(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cred.Token)
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (a *Authenticator) refreshLocked(ctx context.Context) (Credential, error) {
	form := url.Values{
		"client_id":  {a.clientID},
		"username":   {a.username},
		"password":   {a.password},
		"grant_type": {"password"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Credential{}, pkgerrors.Wrap(err, "failed to create token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(req)
	if err != nil {
		return Credential{}, fmt.Errorf("token endpoint unreachable: %w: %s", pkgerrors.ErrAuth, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Credential{}, fmt.Errorf("token request rejected (%d): %s: %w",
			resp.StatusCode, strings.TrimSpace(string(body)), pkgerrors.ErrAuth)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return Credential{}, fmt.Errorf("malformed token response: %w: %s", pkgerrors.ErrAuth, err)
	}
	if tr.AccessToken == "" {
		return Credential{}, fmt.Errorf("access token missing from response: %w", pkgerrors.ErrAuth)
	}

	a.cred = Credential{
		Token:  tr.AccessToken,
		Expiry: a.now().Add(time.Duration(tr.ExpiresIn) * time.Second),
	}
	return a.cred, nil
}
