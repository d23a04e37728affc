package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"daylog/internal/apierr"
	"daylog/internal/service"
)

// Manager owns the signed-in session on top of a Store.
// It implements apierr.SessionTerminator.
type Manager struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time // for testing
}

// NewManager creates a session manager.
func NewManager(store Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, logger: logger, now: time.Now}
}

// Token returns the bearer token if one is stored and not expired.
// Opaque (non-JWT) tokens are never considered expired.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	token, err := m.store.Token(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			m.logger.Warn("read token failed", "error", err)
		}
		return "", false
	}
	if token == "" {
		return "", false
	}
	if exp, ok := expiry(token); ok && !m.now().Before(exp) {
		m.logger.Debug("stored token expired", "expired_at", exp)
		return "", false
	}
	return token, true
}

// SignedIn reports whether a usable token is stored.
func (m *Manager) SignedIn(ctx context.Context) bool {
	_, ok := m.Token(ctx)
	return ok
}

// SignIn persists the token and user returned by login or register.
func (m *Manager) SignIn(ctx context.Context, res service.AuthResult) error {
	if res.Token == "" {
		return apierr.Authentication("server returned no token")
	}
	if err := m.store.SetToken(ctx, res.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := m.store.SetUser(ctx, res.User); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// User returns the signed-in user.
func (m *Manager) User(ctx context.Context) (service.User, error) {
	return m.store.User(ctx)
}

// ForceLogout purges the local credentials.
func (m *Manager) ForceLogout(ctx context.Context) error {
	m.logger.Info("clearing local session")
	return m.store.Clear(ctx)
}

// TokenSource returns an oauth2.TokenSource reading the stored token on each call.
func (m *Manager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, m: m}
}

type tokenSource struct {
	ctx context.Context
	m   *Manager
}

func (s *tokenSource) Token() (*oauth2.Token, error) {
	token, ok := s.m.Token(s.ctx)
	if !ok {
		return nil, apierr.Authentication("not logged in")
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}

// LogTypes returns the customized log types, or the defaults if none were saved.
func (m *Manager) LogTypes(ctx context.Context) ([]service.LogType, error) {
	types, err := m.store.LogTypes(ctx)
	if errors.Is(err, ErrNotFound) {
		return slices.Clone(service.DefaultLogTypes), nil
	}
	return types, err
}

// AddLogType adds or relabels a log type.
func (m *Manager) AddLogType(ctx context.Context, lt service.LogType) error {
	lt.Key = strings.ToLower(strings.TrimSpace(lt.Key))
	if lt.Key == "" {
		return apierr.Validation("invalid log type", map[string]string{"key": "is required"})
	}
	if lt.Label == "" {
		lt.Label = lt.Key
	}

	types, err := m.LogTypes(ctx)
	if err != nil {
		return err
	}
	if i := slices.IndexFunc(types, func(t service.LogType) bool { return t.Key == lt.Key }); i >= 0 {
		types[i] = lt
	} else {
		types = append(types, lt)
	}
	return m.store.SetLogTypes(ctx, types)
}

// RemoveLogType deletes a log type by key.
func (m *Manager) RemoveLogType(ctx context.Context, key string) error {
	types, err := m.LogTypes(ctx)
	if err != nil {
		return err
	}
	key = strings.ToLower(strings.TrimSpace(key))
	i := slices.IndexFunc(types, func(t service.LogType) bool { return t.Key == key })
	if i < 0 {
		return fmt.Errorf("log type not found: %s", key)
	}
	return m.store.SetLogTypes(ctx, slices.Delete(types, i, i+1))
}

// expiry reads the exp claim of a JWT without verifying its signature.
func expiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

var _ apierr.SessionTerminator = (*Manager)(nil)
