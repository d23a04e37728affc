package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"daylog/internal/exitcode"
	"daylog/internal/service"
)

func init() {
	Register(&AddTypeCmd{})
}

// AddTypeCmd implements the addtype command.
type AddTypeCmd struct {
	color string
}

func (c *AddTypeCmd) Name() string      { return "addtype" }
func (c *AddTypeCmd) Aliases() []string { return nil }
func (c *AddTypeCmd) Synopsis() string  { return "Create a journal log type" }
func (c *AddTypeCmd) Usage() string     { return "daylog addtype [--color <c>] <key> [<label...>]" }
func (c *AddTypeCmd) NeedsAuth() bool   { return false }

func (c *AddTypeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.color, "color", "", "")
}

func (c *AddTypeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	// Check for key
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: log type key required")
		return exitcode.UserError
	}
	key := strings.ToLower(strings.TrimSpace(args[0]))
	label := strings.TrimSpace(strings.Join(args[1:], " "))

	// Check if type already exists
	types, err := env.Session.LogTypes(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if slices.ContainsFunc(types, func(lt service.LogType) bool { return lt.Key == key }) {
		fmt.Fprintf(errOut, "error: log type already exists: %s\n", key)
		return exitcode.UserError
	}

	if err := env.Session.AddLogType(ctx, service.LogType{Key: key, Label: label, Color: c.color}); err != nil {
		return fail(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
