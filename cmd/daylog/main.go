// Package main is the entry point for the daylog CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"daylog/internal/apierr"
	"daylog/internal/backend/restapi"
	"daylog/internal/cli"
	"daylog/internal/commands"
	"daylog/internal/config"
	"daylog/internal/logger"
	"daylog/internal/output"
	"daylog/internal/session"
	"daylog/internal/store"
	"daylog/internal/stream"
)

func main() {
	// Cancel on interrupt so streams and the realtime channel shut down cleanly
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newEnv)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// newEnv wires the session database, the REST backend and the task store.
func newEnv(ctx context.Context, cfg *config.Config, errOut io.Writer) (*commands.Env, func(), error) {
	log := logger.New(cfg.Logging, errOut)

	if err := cfg.EnsureDir(); err != nil {
		return nil, nil, fmt.Errorf("create config directory: %w", err)
	}
	db, err := session.OpenBadger(cfg.StateDir(), log)
	if err != nil {
		return nil, nil, err
	}
	sessions := session.NewManager(db, log)
	notifier := output.NewNotifier(errOut, cfg.Quiet)

	// Typing effect only makes sense on a terminal
	typingDelay := cfg.Stream.TypingDelay
	if !output.IsTerminal(os.Stdout) {
		typingDelay = 0
	}

	client, err := restapi.New(restapi.Options{
		BaseURL:     cfg.API.BaseURL,
		Timeout:     cfg.API.Timeout,
		TokenSource: sessions.TokenSource(ctx),
		Token:       sessions.Token,
		Stream: stream.Options{
			Mode:               stream.ParseMode(cfg.Stream.Mode),
			TypingDelay:        typingDelay,
			Timeout:            cfg.Stream.Timeout,
			StrictDependencies: cfg.Breakdown.StrictDependencies,
		},
		Interceptor: apierr.NewInterceptor(notifier, sessions, log),
		Logger:      log,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	env := &commands.Env{
		Config:   cfg,
		Service:  client,
		Session:  sessions,
		Store:    store.New(client, cfg.API.Timeout, log),
		Notifier: notifier,
		Logger:   log,
		In:       os.Stdin,
	}
	cleanup := func() {
		client.Close()
		if err := db.Close(); err != nil {
			log.Warn("close state database", "error", err)
		}
	}
	return env, cleanup, nil
}
