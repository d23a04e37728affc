package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"daylog/internal/exitcode"
	"daylog/internal/grouping"
	"daylog/internal/service"
)

// Sort orders accepted by --sort.
const (
	sortDue      = "due"
	sortPriority = "priority"
)

// errOutOfRange indicates a reference past the end of its listing.
var errOutOfRange = errors.New("task number out of range")

// sortFlag is the --sort flag shared by commands that print or resolve
// the grouped listing, so references match what list printed.
type sortFlag struct {
	by string
}

func (s *sortFlag) register(fs *flag.FlagSet) {
	fs.StringVar(&s.by, "sort", sortDue, "")
}

func (s *sortFlag) validate() error {
	switch s.by {
	case sortDue, sortPriority:
		return nil
	}
	return fmt.Errorf("invalid sort order: %s (want due or priority)", s.by)
}

// groupedTasks loads the task collection and classifies it at the current time.
func groupedTasks(ctx context.Context, env *Env, sortBy string) (grouping.Buckets, error) {
	if err := env.Store.Load(ctx); err != nil {
		return grouping.Buckets{}, err
	}
	bs := grouping.Classify(env.Store.Tasks(), env.now())
	if sortBy == sortPriority {
		bs.SortByPriority()
	}
	return bs, nil
}

// findTask resolves ref against the grouped listing.
func findTask(bs grouping.Buckets, ref TaskRef) (service.Task, error) {
	tasks := bs.Flatten()
	if ref.HasBucket {
		tasks = bs.Get(ref.Bucket)
	}
	if ref.Num < 1 || ref.Num > len(tasks) {
		return service.Task{}, fmt.Errorf("%w: %s", errOutOfRange, ref)
	}
	return tasks[ref.Num-1], nil
}

// lookupTask parses args as a task reference and resolves it, printing the
// error and returning a non-zero exit code on failure.
func lookupTask(ctx context.Context, env *Env, sort *sortFlag, args []string, errOut io.Writer) (service.Task, int) {
	if err := sort.validate(); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}

	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}

	bs, err := groupedTasks(ctx, env, sort.by)
	if err != nil {
		return service.Task{}, fail(errOut, err)
	}

	task, err := findTask(bs, ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}
