package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daylog/internal/exitcode"
	"daylog/internal/grouping"
	"daylog/internal/service"
)

func init() {
	Register(&AnalyzeCmd{})
}

// AnalyzeCmd implements the analyze command.
type AnalyzeCmd struct {
	ai    aiFlags
	tasks bool
}

func (c *AnalyzeCmd) Name() string      { return "analyze" }
func (c *AnalyzeCmd) Aliases() []string { return nil }
func (c *AnalyzeCmd) Synopsis() string  { return "Ask the assistant to analyze your day" }
func (c *AnalyzeCmd) Usage() string {
	return "daylog analyze [--no-stream] [--model <m>] [--tasks] <message...>"
}
func (c *AnalyzeCmd) NeedsAuth() bool { return true }

func (c *AnalyzeCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ai.register(fs)
	fs.BoolVar(&c.tasks, "tasks", false, "")
}

func (c *AnalyzeCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	msg := strings.TrimSpace(strings.Join(args, " "))

	// --tasks appends the open task list to the message
	if c.tasks {
		bs, err := groupedTasks(ctx, env, sortDue)
		if err != nil {
			return fail(errOut, err)
		}
		var b strings.Builder
		b.WriteString(msg)
		bs.Each(func(bk grouping.Bucket, tasks []service.Task) {
			if bk == grouping.Completed || len(tasks) == 0 {
				return
			}
			fmt.Fprintf(&b, "\n%s:", bk)
			for _, t := range tasks {
				fmt.Fprintf(&b, "\n- %s", t.Title)
			}
		})
		msg = strings.TrimSpace(b.String())
	}

	if msg == "" {
		fmt.Fprintln(errOut, "error: message required")
		return exitcode.UserError
	}

	req := service.AnalyzeRequest{Message: msg, ModelType: c.ai.modelType(env)}
	if c.ai.noStream {
		return replyText(ctx, func(ctx context.Context) (string, error) {
			return env.Service.Analyze(ctx, req)
		}, out, errOut)
	}

	_, code := streamReply(func(cb service.StreamCallbacks) (service.Stream, error) {
		return env.Service.StreamAnalyze(ctx, req, cb)
	}, out, errOut)
	return code
}
