package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"daylog/internal/exitcode"
	"daylog/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	sort   sortFlag
	title  string
	status string
	fields taskFlags
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "daylog edit [--title <t>] [--status <s>] [--priority <p>] [--due <date>] [--end-time <HH:MM>] [--tag <t>] [--estimate <min>] [--desc <text>] <ref>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.sort.register(fs)
	c.fields.register(fs)
	fs.StringVar(&c.title, "title", "", "")
	fs.StringVar(&c.status, "status", "", "")
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if c.fields.repeat != nil {
		fmt.Fprintln(errOut, "error: --repeat can only be set when adding a task")
		return exitcode.UserError
	}

	patch := c.fields.patch(env.now())
	if c.title != "" {
		title := strings.TrimSpace(c.title)
		patch.Title = &title
	}
	if c.status != "" {
		st := service.Status(strings.ToLower(c.status))
		patch.Status = &st
	}
	if c.fields.empty() && c.title == "" && c.status == "" {
		fmt.Fprintln(errOut, "error: nothing to change")
		return exitcode.UserError
	}
	if err := service.Validate(patch); err != nil {
		return fail(errOut, err)
	}

	task, code := lookupTask(ctx, env, &c.sort, args, errOut)
	if code != exitcode.Success {
		return code
	}

	// Field edits go first: a status change that fails afterwards leaves
	// the saved fields in place, which the error message says.
	status := patch.Status
	patch.Status = nil
	if !patch.IsZero() {
		if _, err := env.Store.Update(ctx, task.ID, patch); err != nil {
			return fail(errOut, err)
		}
	}
	// Status changes go through the status endpoint so the server sets
	// the completion time.
	if status != nil {
		if _, err := env.Store.SetStatus(ctx, task.ID, *status); err != nil {
			if !patch.IsZero() {
				return fail(errOut, fmt.Errorf("fields saved, status not changed: %w", err))
			}
			return fail(errOut, err)
		}
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
