package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daylog/internal/exitcode"
)

func init() {
	Register(&VerifyCmd{})
}

// VerifyCmd implements the verify command.
type VerifyCmd struct{}

func (c *VerifyCmd) Name() string      { return "verify" }
func (c *VerifyCmd) Aliases() []string { return nil }
func (c *VerifyCmd) Synopsis() string  { return "Email a registration code" }
func (c *VerifyCmd) Usage() string     { return "daylog verify [common flags] <email>" }
func (c *VerifyCmd) NeedsAuth() bool   { return false }

func (c *VerifyCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *VerifyCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: email required")
		return exitcode.UserError
	}
	email := strings.TrimSpace(args[0])

	if err := env.Service.SendVerificationCode(ctx, email); err != nil {
		return fail(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "verification code sent to %s\n", email)
	}
	return exitcode.Success
}
