package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"daylog/internal/exitcode"
	"daylog/internal/service"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles: running it on a
// completed task reopens it.
type DoneCmd struct {
	sort sortFlag
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed, or reopen it" }
func (c *DoneCmd) Usage() string     { return "daylog done [--sort due|priority] <ref>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	c.sort.register(fs)
}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, code := lookupTask(ctx, env, &c.sort, args, errOut)
	if code != exitcode.Success {
		return code
	}

	updated, err := env.Store.ToggleStatus(ctx, task.ID)
	if err != nil {
		return fail(errOut, err)
	}

	if !env.Config.Quiet {
		if updated.Status == service.StatusCompleted {
			fmt.Fprintln(out, "ok")
		} else {
			fmt.Fprintln(out, "reopened")
		}
	}
	return exitcode.Success
}
