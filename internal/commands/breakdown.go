package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daylog/internal/apierr"
	"daylog/internal/exitcode"
	"daylog/internal/output"
	"daylog/internal/service"
)

func init() {
	Register(&BreakdownCmd{})
}

// BreakdownCmd implements the breakdown command.
type BreakdownCmd struct {
	ai  aiFlags
	add bool
}

func (c *BreakdownCmd) Name() string      { return "breakdown" }
func (c *BreakdownCmd) Aliases() []string { return nil }
func (c *BreakdownCmd) Synopsis() string  { return "Split a task into subtasks with the assistant" }
func (c *BreakdownCmd) Usage() string {
	return "daylog breakdown [--no-stream] [--model <m>] [--add] <task description...>"
}
func (c *BreakdownCmd) NeedsAuth() bool { return true }

func (c *BreakdownCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ai.register(fs)
	fs.BoolVar(&c.add, "add", false, "")
}

func (c *BreakdownCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	desc := strings.TrimSpace(strings.Join(args, " "))
	if desc == "" {
		fmt.Fprintln(errOut, "error: task description required")
		return exitcode.UserError
	}

	req := service.BreakdownRequest{TaskDescription: desc, ModelType: c.ai.modelType(env)}

	var b service.TaskBreakdown
	if c.ai.noStream {
		var err error
		b, err = env.Service.BreakdownTask(ctx, req)
		if err != nil {
			return fail(errOut, err)
		}
		if env.Config.Breakdown.StrictDependencies {
			if err := b.CheckDependencies(); err != nil {
				return fail(errOut, apierr.StreamProtocol("invalid breakdown: "+err.Error(), nil))
			}
		}
		if b.Analysis != "" {
			fmt.Fprintln(out, b.Analysis)
		}
	} else {
		res, code := streamReply(func(cb service.StreamCallbacks) (service.Stream, error) {
			return env.Service.StreamBreakdown(ctx, req, cb)
		}, out, errOut)
		if code != exitcode.Success {
			return code
		}
		if res.Breakdown == nil {
			fmt.Fprintln(errOut, "error: no breakdown received")
			return exitcode.BackendError
		}
		b = *res.Breakdown
	}

	output.FormatBreakdown(out, b)

	if c.add {
		return c.addSubtasks(ctx, env, b, out, errOut)
	}
	return exitcode.Success
}

// addSubtasks creates one task per subtask, in order.
func (c *BreakdownCmd) addSubtasks(ctx context.Context, env *Env, b service.TaskBreakdown, out, errOut io.Writer) int {
	for i, st := range b.Subtasks {
		in := service.CreateTaskInput{
			Title:       st.Title,
			Description: st.Description,
			Priority:    st.Priority,
			Tags:        []string{"breakdown"},
		}
		if st.EstimatedTime > 0 {
			est := st.EstimatedTime
			in.EstimatedDuration = &est
		}
		if _, err := env.Store.Create(ctx, in); err != nil {
			fmt.Fprintf(errOut, "error: failed to add subtask %d: %v\n", i+1, err)
			return exitcode.For(err)
		}
	}
	if !env.Config.Quiet {
		fmt.Fprintf(out, "added %d tasks\n", len(b.Subtasks))
	}
	return exitcode.Success
}
