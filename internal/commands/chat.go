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
	Register(&ChatCmd{})
}

// ChatCmd implements the chat command.
type ChatCmd struct {
	ai aiFlags
}

func (c *ChatCmd) Name() string      { return "chat" }
func (c *ChatCmd) Aliases() []string { return []string{"ask"} }
func (c *ChatCmd) Synopsis() string  { return "Ask the assistant" }
func (c *ChatCmd) Usage() string     { return "daylog chat [--no-stream] [--model <m>] <message...>" }
func (c *ChatCmd) NeedsAuth() bool   { return true }

func (c *ChatCmd) RegisterFlags(fs *flag.FlagSet) {
	c.ai.register(fs)
}

func (c *ChatCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	msg := strings.TrimSpace(strings.Join(args, " "))
	if msg == "" {
		fmt.Fprintln(errOut, "error: message required")
		return exitcode.UserError
	}

	req := service.ChatRequest{Message: msg, ModelType: c.ai.modelType(env)}
	if c.ai.noStream {
		return replyText(ctx, func(ctx context.Context) (string, error) {
			return env.Service.Chat(ctx, req)
		}, out, errOut)
	}

	_, code := streamReply(func(cb service.StreamCallbacks) (service.Stream, error) {
		return env.Service.StreamChat(ctx, req, cb)
	}, out, errOut)
	return code
}
