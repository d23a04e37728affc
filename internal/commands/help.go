package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daylog/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "daylog help [<command>]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, helpText)
		fmt.Fprintln(out)
		commandTable(out)
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Run 'daylog help <command>' for one command.")
		return exitcode.Success
	}
	if len(args) > 1 {
		fmt.Fprintln(errOut, "error: too many arguments")
		return exitcode.UserError
	}

	cmd, ok := DefaultRegistry.Find(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
	fmt.Fprintf(out, "  %s\n", cmd.Synopsis())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
	}
	if cmd.NeedsAuth() {
		fmt.Fprintln(out, "Requires login.")
	}
	return exitcode.Success
}

// commandTable lists every registered command with its synopsis.
func commandTable(w io.Writer) {
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range DefaultRegistry.All() {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.Name(), cmd.Synopsis())
	}
}

const helpText = `Usage:
  daylog                                             List tasks grouped by due state
  daylog list [common flags] [--sort due|priority] [<bucket-letter>]
  daylog show [common flags] <ref>
  daylog add [common flags] [--priority <p>] [--due <date>] [--end-time <HH:MM>]
             [--tag <t>] [--estimate <min>] [--repeat <freq>] [--desc <text>] <title...>
  daylog edit [common flags] [--title <t>] [--status <s>] [task flags] <ref>
  daylog done [common flags] <ref>                   Complete a task, or reopen it
  daylog rm [common flags] <ref>
  daylog logs [common flags] [--type <key>] [--limit <n>]
  daylog log [common flags] [--type <key>] [--mood <1-5>] [--tag <t>] <text...>
  daylog rmlog [common flags] [--type <key>] <n>
  daylog logtypes [common flags]
  daylog addtype [common flags] [--color <c>] <key> [<label...>]
  daylog rmtype [common flags] [--force] <key>
  daylog chat [common flags] [--no-stream] [--model <m>] <message...>
  daylog analyze [common flags] [--no-stream] [--model <m>] [--tasks] <message...>
  daylog breakdown [common flags] [--no-stream] [--model <m>] [--add] <task...>
  daylog dashboard [common flags]
  daylog watch [common flags] [--list]
  daylog verify [common flags] <email>
  daylog register [common flags] --email <address> --code <code> [--name <name>]
  daylog login [common flags] --email <address>
  daylog logout [common flags]
  daylog whoami [common flags]
  daylog help
  daylog version

Task references:
  <n>              n-th task of the whole listing
  <letter><n>      n-th task of a bucket: r recurring, o overdue, t due today,
                   u upcoming, n unscheduled, c completed

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
