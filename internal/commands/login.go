package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"daylog/internal/exitcode"
	"daylog/internal/service"
)

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	email string
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Sign in with email and password" }
func (c *LoginCmd) Usage() string     { return "daylog login [common flags] --email <address>" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	email := strings.TrimSpace(c.email)
	if email == "" {
		fmt.Fprintln(errOut, "error: --email required")
		return exitcode.UserError
	}

	password, err := readPassword(env, "Password: ", errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: read password: %v\n", err)
		return exitcode.UserError
	}

	res, err := env.Service.Login(ctx, service.LoginInput{Email: email, Password: password})
	if err != nil {
		return fail(errOut, err)
	}
	if err := env.Session.SignIn(ctx, res); err != nil {
		return fail(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "logged in as %s\n", res.User.Email)
	}
	return exitcode.Success
}

// readPassword reads a password from env.In, without echo when it is a terminal.
func readPassword(env *Env, prompt string, errOut io.Writer) (string, error) {
	if env.In == nil {
		return "", errors.New("no input available")
	}
	if f, ok := env.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(errOut, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(errOut)
		return string(b), err
	}

	line, err := bufio.NewReader(env.In).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
