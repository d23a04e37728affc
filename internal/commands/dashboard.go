package commands

import (
	"context"
	"flag"
	"io"

	"golang.org/x/sync/errgroup"

	"daylog/internal/exitcode"
	"daylog/internal/grouping"
	"daylog/internal/output"
	"daylog/internal/service"
)

func init() {
	Register(&DashboardCmd{})
}

// DashboardCmd implements the dashboard command.
type DashboardCmd struct{}

func (c *DashboardCmd) Name() string      { return "dashboard" }
func (c *DashboardCmd) Aliases() []string { return []string{"stats"} }
func (c *DashboardCmd) Synopsis() string  { return "Show task and journal statistics" }
func (c *DashboardCmd) Usage() string     { return "daylog dashboard [common flags]" }
func (c *DashboardCmd) NeedsAuth() bool   { return true }

func (c *DashboardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DashboardCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	var (
		summary service.Dashboard
		buckets grouping.Buckets
	)

	// Fetch the server summary and the task list concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = env.Service.Dashboard(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		buckets, err = groupedTasks(gctx, env, sortDue)
		return err
	})
	if err := g.Wait(); err != nil {
		return fail(errOut, err)
	}

	output.FormatDashboard(out, summary, buckets.Counts(), env.now().Location())
	return exitcode.Success
}
