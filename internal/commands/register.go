package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daylog/internal/exitcode"
	"daylog/internal/service"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	email string
	name  string
	code  string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account (run verify first)" }
func (c *RegisterCmd) Usage() string {
	return "daylog register [common flags] --email <address> --code <code> [--name <name>]"
}
func (c *RegisterCmd) NeedsAuth() bool { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.name, "name", "", "")
	fs.StringVar(&c.code, "code", "", "")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if strings.TrimSpace(c.email) == "" {
		fmt.Fprintln(errOut, "error: --email required")
		return exitcode.UserError
	}
	if strings.TrimSpace(c.code) == "" {
		fmt.Fprintln(errOut, "error: --code required (run: daylog verify <email>)")
		return exitcode.UserError
	}

	password, err := readPassword(env, "Choose a password: ", errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: read password: %v\n", err)
		return exitcode.UserError
	}

	in := service.RegisterInput{
		Email:            strings.TrimSpace(c.email),
		Password:         password,
		Name:             strings.TrimSpace(c.name),
		VerificationCode: strings.TrimSpace(c.code),
	}
	res, err := env.Service.Register(ctx, in)
	if err != nil {
		return fail(errOut, err)
	}
	if err := env.Session.SignIn(ctx, res); err != nil {
		return fail(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "registered and logged in as %s\n", res.User.Email)
	}
	return exitcode.Success
}
