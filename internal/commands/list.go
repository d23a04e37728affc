package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"daylog/internal/exitcode"
	"daylog/internal/grouping"
	"daylog/internal/output"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `daylog` (no args) and `daylog list [<bucket-letter>]`.
type ListCmd struct {
	sort sortFlag
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks grouped by due state" }
func (c *ListCmd) Usage() string     { return "daylog list [--sort due|priority] [<bucket-letter>]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.sort.register(fs)
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if err := c.sort.validate(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	// Optional single-bucket filter
	var only *grouping.Bucket
	if len(args) > 0 {
		if len(args[0]) != 1 {
			fmt.Fprintf(errOut, "error: unknown bucket letter: %s\n", args[0])
			return exitcode.UserError
		}
		b, ok := grouping.BucketForLetter(args[0][0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown bucket letter: %s\n", args[0])
			return exitcode.UserError
		}
		only = &b
	}

	bs, err := groupedTasks(ctx, env, c.sort.by)
	if err != nil {
		return fail(errOut, err)
	}

	if only != nil {
		tasks := bs.Get(*only)
		output.FormatBucketHeader(out, *only)
		for i, t := range tasks {
			output.FormatTask(out, output.TaskRef(*only, i+1), t)
		}
		return exitcode.Success
	}

	if !output.FormatBuckets(out, bs) && !env.Config.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
