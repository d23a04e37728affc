package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"daylog/internal/exitcode"
)

func init() {
	Register(&RmLogCmd{})
}

// RmLogCmd implements the rmlog command.
type RmLogCmd struct {
	typ string
}

func (c *RmLogCmd) Name() string      { return "rmlog" }
func (c *RmLogCmd) Aliases() []string { return nil }
func (c *RmLogCmd) Synopsis() string  { return "Delete a journal entry" }
func (c *RmLogCmd) Usage() string     { return "daylog rmlog [--type <key>] <n>" }
func (c *RmLogCmd) NeedsAuth() bool   { return true }

func (c *RmLogCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.typ, "type", "", "")
}

func (c *RmLogCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: log number required")
		return exitcode.UserError
	}
	if !isAllDigits(args[0]) {
		fmt.Fprintf(errOut, "error: invalid log number: %s\n", args[0])
		return exitcode.UserError
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: invalid log number: %s\n", args[0])
		return exitcode.UserError
	}

	logs, err := listLogs(ctx, env, strings.ToLower(c.typ))
	if err != nil {
		return fail(errOut, err)
	}
	if num < 1 || num > len(logs) {
		fmt.Fprintf(errOut, "error: log number out of range: %d\n", num)
		return exitcode.UserError
	}

	if err := env.Service.DeleteLog(ctx, logs[num-1].ID); err != nil {
		return fail(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
