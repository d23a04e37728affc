// Package session persists client-local state: the bearer token, the
// signed-in user and log type customizations.
package session

import (
	"context"
	"errors"

	"daylog/internal/service"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("session: not found")

// Store is the local key-value storage for session state.
type Store interface {
	// Token returns the stored bearer token or ErrNotFound.
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error

	// User returns the stored user or ErrNotFound.
	User(ctx context.Context) (service.User, error)
	SetUser(ctx context.Context, u service.User) error

	// LogTypes returns the customized log types or ErrNotFound.
	LogTypes(ctx context.Context) ([]service.LogType, error)
	SetLogTypes(ctx context.Context, types []service.LogType) error

	// Clear removes the token and user. Log types are kept.
	Clear(ctx context.Context) error

	Close() error
}
