package apierr

import (
	"context"
	"log/slog"
)

// Level is the severity of a user notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification is a transient message shown to the user.
type Notification struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Level   Level  `json:"level"`
}

// Notifier surfaces transient notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// SessionTerminator tears down the local session after an auth failure.
type SessionTerminator interface {
	ForceLogout(ctx context.Context) error
}

// Interceptor centrally handles transport and auth failures.
// Both collaborators are optional.
type Interceptor struct {
	notifier Notifier
	sessions SessionTerminator
	logger   *slog.Logger
}

// NewInterceptor creates an interceptor with injected collaborators.
func NewInterceptor(n Notifier, s SessionTerminator, logger *slog.Logger) *Interceptor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Interceptor{notifier: n, sessions: s, logger: logger}
}

// Intercept handles err and returns it unchanged.
// Authentication errors force a logout; network and server errors notify.
// Validation and business errors are left to the caller.
func (i *Interceptor) Intercept(ctx context.Context, err error) error {
	return i.intercept(ctx, err, true)
}

// InterceptPublic handles err from a call made without a bearer token,
// such as a sign-in. A 401 there means bad credentials, not an expired
// session, so the local session is left alone and the caller reports it.
func (i *Interceptor) InterceptPublic(ctx context.Context, err error) error {
	return i.intercept(ctx, err, false)
}

func (i *Interceptor) intercept(ctx context.Context, err error, authenticated bool) error {
	if err == nil || i == nil {
		return err
	}

	switch KindOf(err) {
	case KindAuthentication:
		if !authenticated {
			return err
		}
		if i.sessions != nil {
			if lerr := i.sessions.ForceLogout(ctx); lerr != nil {
				i.logger.Warn("force logout failed", "error", lerr)
			}
		}
		i.notify(ctx, Notification{Title: "Session expired", Message: "Please log in again.", Level: LevelWarning})
	case KindNetwork:
		i.notify(ctx, Notification{Title: "Network error", Message: "Could not reach the server.", Level: LevelError})
	case KindServer:
		i.notify(ctx, Notification{Title: "Server error", Message: "Something went wrong on the server.", Level: LevelError})
	}
	return err
}

func (i *Interceptor) notify(ctx context.Context, n Notification) {
	if i.notifier != nil {
		i.notifier.Notify(ctx, n)
	}
}
