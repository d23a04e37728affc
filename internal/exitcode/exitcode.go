// Package exitcode defines exit codes for the CLI.
package exitcode

import (
	"errors"

	"daylog/internal/apierr"
)

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, validation, unknown reference).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a backend/network/stream error.
	BackendError = 3
)

// For maps a command failure to its exit code.
func For(err error) int {
	switch {
	case err == nil:
		return Success
	case errors.Is(err, apierr.ErrAuthentication):
		return AuthError
	case errors.Is(err, apierr.ErrValidation), errors.Is(err, apierr.ErrNotFound):
		return UserError
	default:
		return BackendError
	}
}
