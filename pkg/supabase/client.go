// Package supabase is a small client for the Supabase auth (GoTrue) and
// PostgREST endpoints the dashboard uses.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/identity"
)

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithJWTSecret enables local HS256 verification of access tokens.
func WithJWTSecret(secret string) Option {
	return func(c *Client) { c.jwtSecret = []byte(secret) }
}

// WithProfileTable overrides the profile table name (default "profiles").
func WithProfileTable(table string) Option {
	return func(c *Client) { c.profileTable = table }
}

// Client implements identity.Provider against a Supabase project.
type Client struct {
	baseURL      string
	anonKey      string
	jwtSecret    []byte
	profileTable string
	http         *http.Client

	mu        sync.Mutex
	listeners map[int]identity.Listener
	nextID    int
}

var _ identity.Provider = (*Client)(nil)

// NewClient creates a client for the project at baseURL.
func NewClient(baseURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		anonKey:      anonKey,
		profileTable: "profiles",
		http:         &http.Client{Timeout: 10 * time.Second},
		listeners:    make(map[int]identity.Listener),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// apiError is the GoTrue error body. Different versions populate
// different fields.
type apiError struct {
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
	Error            string `json:"error"`
}

func (e apiError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	User         struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, bearer string, header map[string]string) (int, []byte, error) {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, eris.Wrap(err, "supabase: marshal request")
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, nil, eris.Wrap(err, "supabase: create request")
	}
	req.Header.Set("apikey", c.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, eris.Wrap(err, "supabase: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, eris.Wrap(err, "supabase: read response")
	}
	return resp.StatusCode, respBody, nil
}

func errorText(status int, body []byte) string {
	var e apiError
	if json.Unmarshal(body, &e) == nil && e.text() != "" {
		return e.text()
	}
	return http.StatusText(status)
}

// SignIn exchanges email and password for a session.
func (c *Client) SignIn(ctx context.Context, creds identity.Credentials) (*identity.Session, error) {
	status, body, err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", creds, "", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusBadRequest || status == http.StatusUnauthorized {
		return nil, &identity.ProviderError{Err: identity.ErrInvalidCredentials, Message: errorText(status, body)}
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("supabase: sign in: status %d: %s", status, errorText(status, body))
	}

	var tok tokenResponse
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, eris.Wrap(err, "supabase: unmarshal token")
	}

	s := &identity.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		User:         identity.User{ID: tok.User.ID, Email: tok.User.Email},
	}
	switch {
	case tok.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(tok.ExpiresAt, 0).UTC()
	case tok.ExpiresIn > 0:
		s.ExpiresAt = time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second).UTC()
	}

	c.notify(identity.SignedIn, s)
	return s, nil
}

// SignUp registers a new account. The provider sends a confirmation email.
func (c *Client) SignUp(ctx context.Context, creds identity.Credentials) error {
	status, body, err := c.do(ctx, http.MethodPost, "/auth/v1/signup", creds, "", nil)
	if err != nil {
		return err
	}
	if status >= 400 && status < 500 {
		return &identity.ProviderError{Err: identity.ErrSignUpRejected, Message: errorText(status, body)}
	}
	if status != http.StatusOK {
		return eris.Errorf("supabase: sign up: status %d: %s", status, errorText(status, body))
	}
	return nil
}

// SignOut revokes the session. Listeners are notified even if the
// provider call fails, since the caller drops the session either way.
func (c *Client) SignOut(ctx context.Context, s *identity.Session) error {
	if s == nil {
		return nil
	}
	defer c.notify(identity.SignedOut, s)

	status, body, err := c.do(ctx, http.MethodPost, "/auth/v1/logout", nil, s.AccessToken, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent && status != http.StatusOK {
		return eris.Errorf("supabase: sign out: status %d: %s", status, errorText(status, body))
	}
	return nil
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verify resolves an access token. With a JWT secret configured the token
// is checked locally; otherwise the auth server is asked.
func (c *Client) Verify(ctx context.Context, accessToken string) (*identity.Session, error) {
	if accessToken == "" {
		return nil, identity.ErrInvalidToken
	}
	if len(c.jwtSecret) > 0 {
		return c.verifyLocal(accessToken)
	}

	status, body, err := c.do(ctx, http.MethodGet, "/auth/v1/user", nil, accessToken, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return nil, &identity.ProviderError{Err: identity.ErrInvalidToken, Message: errorText(status, body)}
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("supabase: get user: status %d", status)
	}

	var u identity.User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, eris.Wrap(err, "supabase: unmarshal user")
	}
	if u.ID == "" {
		return nil, identity.ErrInvalidToken
	}
	return &identity.Session{AccessToken: accessToken, User: u}, nil
}

func (c *Client) verifyLocal(accessToken string) (*identity.Session, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(accessToken, &claims, func(*jwt.Token) (any, error) {
		return c.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, eris.Wrap(identity.ErrInvalidToken, err.Error())
	}
	if claims.Subject == "" {
		return nil, eris.Wrap(identity.ErrInvalidToken, "missing subject")
	}

	s := &identity.Session{
		AccessToken: accessToken,
		User:        identity.User{ID: claims.Subject, Email: claims.Email},
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.UTC()
	}
	return s, nil
}

type profileRow struct {
	Role string `json:"role"`
}

// Role reads the user's role from the profile table. Exactly one row must
// exist.
func (c *Client) Role(ctx context.Context, s *identity.Session) (identity.Role, error) {
	q := url.Values{}
	q.Set("id", "eq."+s.User.ID)
	q.Set("select", "role")
	path := "/rest/v1/" + url.PathEscape(c.profileTable) + "?" + q.Encode()

	status, body, err := c.do(ctx, http.MethodGet, path, nil, s.AccessToken,
		map[string]string{"Accept": "application/vnd.pgrst.object+json"})
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", eris.Errorf("supabase: profile lookup: status %d: %s", status, errorText(status, body))
	}

	var row profileRow
	if err := json.Unmarshal(body, &row); err != nil {
		return "", eris.Wrap(err, "supabase: unmarshal profile")
	}
	return identity.ParseRole(row.Role)
}

// Subscribe registers l for sign-in and sign-out events.
func (c *Client) Subscribe(l identity.Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = l
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) notify(ev identity.Event, s *identity.Session) {
	c.mu.Lock()
	ls := make([]identity.Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		ls = append(ls, l)
	}
	c.mu.Unlock()

	zap.L().Debug("supabase: session event", zap.String("event", string(ev)), zap.String("user_id", s.User.ID))
	for _, l := range ls {
		l(ev, s)
	}
}
