// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"time"

	"daylog/internal/apierr"
	"daylog/internal/config"
	"daylog/internal/exitcode"
	"daylog/internal/service"
	"daylog/internal/session"
	"daylog/internal/store"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a signed-in session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// env is always provided.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env carries the collaborators a command runs against.
type Env struct {
	Config   *config.Config
	Service  service.Service
	Session  *session.Manager
	Store    *store.Store
	Notifier apierr.Notifier
	Logger   *slog.Logger

	// In supplies passwords for login and register.
	In io.Reader

	// Now is the clock used for grouping. Defaults to time.Now.
	Now func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// fail prints err and returns the exit code for it.
func fail(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.For(err)
}
