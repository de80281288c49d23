// Package shell decides which dashboard a session may see. It wraps the
// identity provider with operator gating: an operator sign-in that cannot
// be confirmed against the profile table is signed straight back out.
package shell

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Rion4/FedGrid-AIINNOVATION/internal/identity"
)

// Mode is the sign-in form the visitor used.
type Mode string

// Sign-in modes.
const (
	ModeUser     Mode = "user"
	ModeOperator Mode = "operator"
)

// View is the top-level screen for a session.
type View string

// Views.
const (
	ViewAuth     View = "auth"
	ViewUser     View = "user"
	ViewOperator View = "operator"
)

// SignUpMessage is returned after a successful user registration.
const SignUpMessage = "Sign up successful! Please check your email to verify your account."

// Gating errors. Their messages are shown to the visitor as-is.
var (
	ErrRoleUnverified = eris.New("Could not verify operator role. Access denied.")
	ErrAccessDenied   = eris.New("Access Denied: You do not have operator privileges.")
	ErrOperatorSignUp = eris.New("Sign up is not available for operators from this page.")
	ErrUnknownMode    = eris.New("shell: unknown mode")
)

// ParseMode parses a sign-in mode. Empty means user.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeUser, nil
	case ModeUser, ModeOperator:
		return m, nil
	default:
		return "", eris.Wrapf(ErrUnknownMode, "%q", s)
	}
}

// Shell holds the provider and the role cache shared across requests.
type Shell struct {
	Provider identity.Provider
	Roles    *identity.RoleCache
}

// New creates a Shell. When roles is non-nil it is subscribed to the
// provider so sign-outs evict cached roles.
func New(p identity.Provider, roles *identity.RoleCache) *Shell {
	if roles != nil {
		p.Subscribe(roles.Listen())
	}
	return &Shell{Provider: p, Roles: roles}
}

func (s *Shell) role(ctx context.Context, sess *identity.Session) (identity.Role, error) {
	if s.Roles != nil {
		return s.Roles.Lookup(ctx, s.Provider, sess)
	}
	return s.Provider.Role(ctx, sess)
}

// SignIn authenticates creds. Operator mode additionally requires the
// profile role to be operator.
func (s *Shell) SignIn(ctx context.Context, mode Mode, creds identity.Credentials) (*identity.Session, error) {
	sess, err := s.Provider.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}
	if mode != ModeOperator {
		return sess, nil
	}

	role, err := s.role(ctx, sess)
	if err != nil {
		zap.L().Warn("shell: operator role lookup failed",
			zap.String("user_id", sess.User.ID), zap.Error(err))
		s.forceSignOut(ctx, sess)
		return nil, ErrRoleUnverified
	}
	if role != identity.RoleOperator {
		zap.L().Info("shell: operator sign-in refused",
			zap.String("user_id", sess.User.ID), zap.String("role", string(role)))
		s.forceSignOut(ctx, sess)
		return nil, ErrAccessDenied
	}
	return sess, nil
}

func (s *Shell) forceSignOut(ctx context.Context, sess *identity.Session) {
	if err := s.Provider.SignOut(ctx, sess); err != nil {
		zap.L().Warn("shell: forced sign-out failed", zap.Error(err))
	}
}

// SignUp registers a user account. Operators are provisioned elsewhere.
func (s *Shell) SignUp(ctx context.Context, mode Mode, creds identity.Credentials) (string, error) {
	if mode == ModeOperator {
		return "", ErrOperatorSignUp
	}
	if err := s.Provider.SignUp(ctx, creds); err != nil {
		return "", err
	}
	return SignUpMessage, nil
}

// SignOut ends the session.
func (s *Shell) SignOut(ctx context.Context, sess *identity.Session) error {
	return s.Provider.SignOut(ctx, sess)
}

// Resolve picks the view for a session. A failed role lookup falls back
// to the user view rather than locking the visitor out.
func (s *Shell) Resolve(ctx context.Context, sess *identity.Session) View {
	if sess == nil {
		return ViewAuth
	}
	role, err := s.role(ctx, sess)
	if err != nil {
		zap.L().Debug("shell: role lookup failed", zap.String("user_id", sess.User.ID), zap.Error(err))
		return ViewUser
	}
	if role == identity.RoleOperator {
		return ViewOperator
	}
	return ViewUser
}
