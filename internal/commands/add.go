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
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	fields taskFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "daylog add [--priority <p>] [--due <date>] [--end-time <HH:MM>] [--tag <t>] [--estimate <min>] [--repeat <freq>] [--desc <text>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs)
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	// Join args to form title
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	if r := c.fields.repeat; r != nil && !validRepeat(*r) {
		fmt.Fprintf(errOut, "error: invalid repeat: %s (want daily, weekly, monthly or yearly)\n", *r)
		return exitcode.UserError
	}

	in := c.fields.input(title, env.now())
	if err := service.Validate(in); err != nil {
		return fail(errOut, err)
	}

	// Create task
	if _, err := env.Store.Create(ctx, in); err != nil {
		return fail(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func validRepeat(s string) bool {
	switch strings.ToLower(s) {
	case "daily", "weekly", "monthly", "yearly":
		return true
	}
	return false
}
