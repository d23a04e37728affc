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
	Register(&RmTypeCmd{})
}

// RmTypeCmd implements the rmtype command.
type RmTypeCmd struct {
	force bool
}

func (c *RmTypeCmd) Name() string      { return "rmtype" }
func (c *RmTypeCmd) Aliases() []string { return nil }
func (c *RmTypeCmd) Synopsis() string  { return "Delete a journal log type" }
func (c *RmTypeCmd) Usage() string     { return "daylog rmtype [--force] <key>" }
func (c *RmTypeCmd) NeedsAuth() bool   { return true }

func (c *RmTypeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmTypeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	// Check for key
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		fmt.Fprintln(errOut, "error: log type key required")
		return exitcode.UserError
	}
	key := strings.ToLower(strings.TrimSpace(args[0]))

	types, err := env.Session.LogTypes(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if !slices.ContainsFunc(types, func(lt service.LogType) bool { return lt.Key == key }) {
		fmt.Fprintf(errOut, "error: log type not found: %s\n", key)
		return exitcode.UserError
	}

	// Check if the type is still used (unless --force)
	if !c.force {
		logs, err := env.Service.ListLogs(ctx)
		if err != nil {
			return fail(errOut, err)
		}
		if slices.ContainsFunc(logs, func(l service.LogEntry) bool { return l.Type == key }) {
			fmt.Fprintln(errOut, "error: log type in use (use --force)")
			return exitcode.UserError
		}
	}

	if err := env.Session.RemoveLogType(ctx, key); err != nil {
		return fail(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
