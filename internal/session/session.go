// Package session ties the cookie token, the local session store and the
// backend client together. A signed-in request resolves to a Session whose
// gateway fetches the user's access token from the store on every call.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/erazemk/armory/internal/auth"
	"github.com/erazemk/armory/internal/backend"
	"github.com/erazemk/armory/internal/finance"
	"github.com/erazemk/armory/internal/gateway"
	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// ErrNoSession is returned when a token does not resolve to a live session.
var ErrNoSession = errors.New("no active session")

// Authenticator signs users in against the identity provider.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*auth.Grant, error)
	UpdatePassword(ctx context.Context, accessToken, password string) error
}

// Manager creates and resolves sessions.
type Manager struct {
	Secret   string
	Store    *store.Sessions
	Provider Authenticator
	Backend  *backend.Client
	Rules    finance.Rules
	SiteURL  string
}

// Session is a resolved, live session.
type Session struct {
	Claims  *auth.Claims
	Gateway *gateway.Gateway
}

// SignIn authenticates the user, stores the backend token and returns the
// signed cookie token together with its expiry.
func (m *Manager) SignIn(ctx context.Context, email, password string) (string, time.Time, error) {
	grant, err := m.Provider.SignIn(ctx, email, password)
	if err != nil {
		return "", time.Time{}, err
	}

	expires := grant.ExpiresAt
	if limit := time.Now().Add(auth.MaxSessionAge); expires.After(limit) {
		expires = limit
	}

	token, jti, err := auth.GenerateToken(m.Secret, grant.Email, grant.Role, expires)
	if err != nil {
		return "", time.Time{}, err
	}

	err = m.Store.Create(ctx, &model.Session{
		ID:          jti,
		Email:       grant.Email,
		Role:        grant.Role,
		AccessToken: grant.AccessToken,
		ExpiresAt:   expires,
	})
	if err != nil {
		return "", time.Time{}, err
	}

	slog.Info("user signed in", "user", grant.Email, "role", grant.Role)
	return token, expires, nil
}

// Resolve validates a cookie token and returns its live session.
func (m *Manager) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	claims, err := auth.ValidateToken(m.Secret, token)
	if err != nil {
		return nil, ErrNoSession
	}

	sess, err := m.Store.Get(ctx, claims.SessionID())
	if err != nil {
		return nil, fmt.Errorf("resolving session: %w", err)
	}
	if sess == nil {
		return nil, ErrNoSession
	}

	return &Session{Claims: claims, Gateway: m.newGateway(claims.SessionID())}, nil
}

// SignOut deletes the session behind claims.
func (m *Manager) SignOut(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	if err := m.Store.Delete(ctx, claims.SessionID()); err != nil {
		return err
	}
	slog.Info("user signed out", "user", claims.Email)
	return nil
}

// SetPassword sets a new password for the signed-in user.
func (m *Manager) SetPassword(ctx context.Context, claims *auth.Claims, password string) error {
	token, err := m.Store.AccessToken(ctx, claims.SessionID())
	if err != nil {
		return err
	}
	if token == "" {
		return ErrNoSession
	}
	if err := m.Provider.UpdatePassword(ctx, token, password); err != nil {
		return err
	}
	slog.Info("user set password", "user", claims.Email)
	return nil
}

// newGateway builds a gateway whose client reads the session's access token
// from the store on each request.
func (m *Manager) newGateway(sessionID string) *gateway.Gateway {
	tokens := backend.TokenFunc(func(ctx context.Context) (string, error) {
		token, err := m.Store.AccessToken(ctx, sessionID)
		if err != nil {
			return "", err
		}
		if token == "" {
			return "", ErrNoSession
		}
		return token, nil
	})
	return gateway.New(m.Backend.WithTokens(tokens),
		gateway.WithRules(m.Rules),
		gateway.WithSiteURL(m.SiteURL),
	)
}

type contextKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored in ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
