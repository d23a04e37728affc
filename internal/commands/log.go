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
	Register(&LogCmd{})
}

// LogCmd implements the log command.
type LogCmd struct {
	typ  string
	mood int
	tags []string
}

func (c *LogCmd) Name() string      { return "log" }
func (c *LogCmd) Aliases() []string { return nil }
func (c *LogCmd) Synopsis() string  { return "Write a journal entry" }
func (c *LogCmd) Usage() string {
	return "daylog log [--type <key>] [--mood <1-5>] [--tag <t>] <text...>"
}
func (c *LogCmd) NeedsAuth() bool { return true }

func (c *LogCmd) RegisterFlags(fs *flag.FlagSet) {
	c.tags = nil
	fs.StringVar(&c.typ, "type", "note", "")
	fs.IntVar(&c.mood, "mood", 0, "")
	fs.Func("tag", "", func(s string) error {
		for _, t := range strings.Split(s, ",") {
			if t = strings.TrimSpace(t); t != "" {
				c.tags = append(c.tags, t)
			}
		}
		return nil
	})
}

func (c *LogCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	content := strings.TrimSpace(strings.Join(args, " "))
	if content == "" {
		fmt.Fprintln(errOut, "error: log text required")
		return exitcode.UserError
	}

	// Type must be one of the configured log types
	typ := strings.ToLower(strings.TrimSpace(c.typ))
	types, err := env.Session.LogTypes(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	if !slices.ContainsFunc(types, func(lt service.LogType) bool { return lt.Key == typ }) {
		fmt.Fprintf(errOut, "error: unknown log type: %s (see: daylog logtypes)\n", typ)
		return exitcode.UserError
	}

	in := service.CreateLogInput{Content: content, Type: typ, Tags: c.tags}
	if c.mood != 0 {
		mood := c.mood
		in.Mood = &mood
	}
	if err := service.Validate(in); err != nil {
		return fail(errOut, err)
	}

	if _, err := env.Service.CreateLog(ctx, in); err != nil {
		return fail(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
