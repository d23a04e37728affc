package commands

import (
	"context"
	"flag"
	"io"

	"daylog/internal/exitcode"
	"daylog/internal/output"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct {
	sort sortFlag
}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Print every field of a task" }
func (c *ShowCmd) Usage() string     { return "daylog show [--sort due|priority] <ref>" }
func (c *ShowCmd) NeedsAuth() bool   { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {
	c.sort.register(fs)
}

func (c *ShowCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, code := lookupTask(ctx, env, &c.sort, args, errOut)
	if code != exitcode.Success {
		return code
	}
	output.FormatTaskDetail(out, task, env.now().Location())
	return exitcode.Success
}
