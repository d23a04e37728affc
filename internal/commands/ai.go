package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"daylog/internal/exitcode"
	"daylog/internal/output"
	"daylog/internal/service"
	"daylog/internal/stream"
)

// aiFlags holds the flags shared by the AI commands.
type aiFlags struct {
	noStream bool
	model    string
}

func (f *aiFlags) register(fs *flag.FlagSet) {
	fs.BoolVar(&f.noStream, "no-stream", false, "")
	fs.StringVar(&f.model, "model", "", "")
}

func (f *aiFlags) modelType(env *Env) string {
	if f.model != "" {
		return f.model
	}
	return env.Config.AI.Model
}

// openFunc opens a streaming call with the given callbacks.
type openFunc func(cb service.StreamCallbacks) (service.Stream, error)

// streamReply prints a streamed reply as it arrives and returns the
// accumulated result. A non-zero code means the error was already printed.
func streamReply(open openFunc, out, errOut io.Writer) (stream.Result, int) {
	p := output.NewStreamPrinter(out)
	st, err := open(p.Callbacks())
	if err != nil {
		return stream.Result{}, fail(errOut, err)
	}

	res := stream.Collect(st)
	p.End()

	switch {
	case res.Err != nil:
		return res, fail(errOut, res.Err)
	case res.Outcome == service.OutcomeCancelled:
		fmt.Fprintln(errOut, "error: cancelled")
		return res, exitcode.BackendError
	}

	// A reply delivered only in the complete frame has not been printed yet.
	if !p.Wrote() && res.Text != "" {
		fmt.Fprintln(out, res.Text)
	}
	return res, exitcode.Success
}

// replyText runs fn and prints its text reply.
func replyText(ctx context.Context, fn func(ctx context.Context) (string, error), out, errOut io.Writer) int {
	text, err := fn(ctx)
	if err != nil {
		return fail(errOut, err)
	}
	fmt.Fprintln(out, text)
	return exitcode.Success
}
