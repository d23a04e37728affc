package commands

import (
	"context"
	"flag"
	"io"

	"daylog/internal/exitcode"
	"daylog/internal/output"
)

func init() {
	Register(&LogTypesCmd{})
}

// LogTypesCmd implements the logtypes command.
type LogTypesCmd struct{}

func (c *LogTypesCmd) Name() string      { return "logtypes" }
func (c *LogTypesCmd) Aliases() []string { return nil }
func (c *LogTypesCmd) Synopsis() string  { return "List journal log types" }
func (c *LogTypesCmd) Usage() string     { return "daylog logtypes [common flags]" }
func (c *LogTypesCmd) NeedsAuth() bool   { return false }

func (c *LogTypesCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogTypesCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	types, err := env.Session.LogTypes(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	for _, lt := range types {
		output.FormatLogType(out, lt)
	}
	return exitcode.Success
}
