package commands

import (
	"context"
	"flag"
	"io"

	"daylog/internal/exitcode"
	"daylog/internal/output"
)

func init() {
	Register(&WhoamiCmd{})
}

// WhoamiCmd implements the whoami command.
type WhoamiCmd struct{}

func (c *WhoamiCmd) Name() string      { return "whoami" }
func (c *WhoamiCmd) Aliases() []string { return nil }
func (c *WhoamiCmd) Synopsis() string  { return "Print the signed-in account" }
func (c *WhoamiCmd) Usage() string     { return "daylog whoami" }
func (c *WhoamiCmd) NeedsAuth() bool   { return true }

func (c *WhoamiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *WhoamiCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	u, err := env.Session.User(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	output.FormatUser(out, u)
	return exitcode.Success
}
