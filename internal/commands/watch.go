package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sync"

	"daylog/internal/exitcode"
	"daylog/internal/grouping"
	"daylog/internal/output"
	"daylog/internal/realtime"
	"daylog/internal/service"
)

func init() {
	Register(&WatchCmd{})
}

// WatchCmd implements the watch command.
type WatchCmd struct {
	list bool
}

func (c *WatchCmd) Name() string      { return "watch" }
func (c *WatchCmd) Aliases() []string { return nil }
func (c *WatchCmd) Synopsis() string  { return "Follow task changes and notifications live" }
func (c *WatchCmd) Usage() string     { return "daylog watch [--list]" }
func (c *WatchCmd) NeedsAuth() bool   { return true }

func (c *WatchCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.list, "list", false, "")
}

func (c *WatchCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if err := env.Store.Load(ctx); err != nil {
		return fail(errOut, err)
	}

	var mu sync.Mutex
	if c.list {
		unsubscribe := env.Store.Subscribe(func(tasks []service.Task) {
			mu.Lock()
			defer mu.Unlock()
			output.FormatBuckets(out, grouping.Classify(tasks, env.now()))
		})
		defer unsubscribe()
	}

	cfg := env.Config.Realtime
	client := realtime.NewClient(realtime.Options{
		URL:            cfg.URL,
		Token:          env.Session.Token,
		MaxAttempts:    cfg.MaxAttempts,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Logger:         env.logger(),
		OnState: func(st realtime.Status) {
			if env.Config.Quiet {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintf(errOut, "realtime: %s\n", st)
		},
	})

	notifier := output.NewNotifier(out, env.Config.Quiet)
	if err := client.Run(ctx, realtime.StoreHandler(env.Store, notifier, env.logger())); err != nil {
		return fail(errOut, err)
	}
	return exitcode.Success
}
