package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daylog/internal/exitcode"
	"daylog/internal/output"
	"daylog/internal/service"
)

func init() {
	Register(&LogsCmd{})
}

// LogsCmd implements the logs command.
type LogsCmd struct {
	typ   string
	limit int
}

func (c *LogsCmd) Name() string      { return "logs" }
func (c *LogsCmd) Aliases() []string { return []string{"journal"} }
func (c *LogsCmd) Synopsis() string  { return "List journal entries" }
func (c *LogsCmd) Usage() string     { return "daylog logs [--type <key>] [--limit <n>]" }
func (c *LogsCmd) NeedsAuth() bool   { return true }

func (c *LogsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.typ, "type", "", "")
	fs.IntVar(&c.limit, "limit", 20, "")
}

func (c *LogsCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if c.limit < 1 {
		fmt.Fprintf(errOut, "error: invalid limit: %d\n", c.limit)
		return exitcode.UserError
	}

	logs, err := listLogs(ctx, env, strings.ToLower(c.typ))
	if err != nil {
		return fail(errOut, err)
	}

	if len(logs) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "no logs found")
		}
		return exitcode.Success
	}

	loc := env.now().Location()
	for i, l := range logs[:min(c.limit, len(logs))] {
		output.FormatLog(out, i+1, l, loc)
	}
	return exitcode.Success
}

// listLogs returns the journal entries, newest first, optionally of one type.
// Numbering in the logs listing is the position in this slice.
func listLogs(ctx context.Context, env *Env, typ string) ([]service.LogEntry, error) {
	logs, err := env.Service.ListLogs(ctx)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return logs, nil
	}
	var filtered []service.LogEntry
	for _, l := range logs {
		if l.Type == typ {
			filtered = append(filtered, l)
		}
	}
	return filtered, nil
}
