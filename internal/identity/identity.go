// Package identity defines the contract the dashboard needs from an
// external identity provider: sessions, roles and change notification.
package identity

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Role is a dashboard role stored in the provider's profile table.
type Role string

// Known roles.
const (
	RoleUser     Role = "user"
	RoleOperator Role = "operator"
)

// ErrUnknownRole is returned by ParseRole for anything but user or operator.
var ErrUnknownRole = eris.New("identity: unknown role")

// ErrInvalidCredentials is returned when the provider rejects a sign-in.
var ErrInvalidCredentials = eris.New("identity: invalid credentials")

// ErrInvalidToken is returned when an access token cannot be verified.
var ErrInvalidToken = eris.New("identity: invalid token")

// ErrSignUpRejected is returned when the provider refuses a registration.
var ErrSignUpRejected = eris.New("identity: sign up rejected")

// ProviderError carries the provider's own message for one of the
// sentinel errors above. The message is safe to show to the visitor.
type ProviderError struct {
	Err     error
	Message string
}

func (e *ProviderError) Error() string { return e.Message }

// Unwrap returns the sentinel.
func (e *ProviderError) Unwrap() error { return e.Err }

// ParseRole parses a stored role string.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.TrimSpace(s)); r {
	case RoleUser, RoleOperator:
		return r, nil
	default:
		return "", eris.Wrapf(ErrUnknownRole, "%q", s)
	}
}

// User identifies a signed-in account.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is an authenticated provider session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Credentials are an email/password pair.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Event is a session state change.
type Event string

// Session events.
const (
	SignedIn  Event = "SIGNED_IN"
	SignedOut Event = "SIGNED_OUT"
)

// Listener receives session changes.
type Listener func(ev Event, s *Session)

// Provider is the external identity service.
type Provider interface {
	SignIn(ctx context.Context, creds Credentials) (*Session, error)
	SignUp(ctx context.Context, creds Credentials) error
	SignOut(ctx context.Context, s *Session) error
	// Verify resolves a bearer token to its session.
	Verify(ctx context.Context, accessToken string) (*Session, error)
	// Role looks up the profile role for a user id.
	Role(ctx context.Context, s *Session) (Role, error)
	// Subscribe registers l for session changes and returns a function
	// that removes it.
	Subscribe(l Listener) (unsubscribe func())
}
