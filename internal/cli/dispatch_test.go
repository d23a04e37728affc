package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"daylog/internal/cli"
	"daylog/internal/commands"
	"daylog/internal/config"
	"daylog/internal/exitcode"
	"daylog/internal/logger"
	"daylog/internal/output"
	"daylog/internal/service"
	"daylog/internal/session"
	"daylog/internal/store"
	"daylog/internal/testutil"
)

// testFactory builds an Env around svc with an in-memory session,
// signed in when signedIn is set. The loaded config is captured in *got.
func testFactory(t *testing.T, svc *testutil.FakeService, signedIn bool, got **config.Config) cli.EnvFactory {
	return func(ctx context.Context, cfg *config.Config, errOut io.Writer) (*commands.Env, func(), error) {
		if got != nil {
			*got = cfg
		}
		db, err := session.OpenBadger("", nil)
		if err != nil {
			return nil, nil, err
		}
		sessions := session.NewManager(db, logger.Discard())
		if signedIn {
			if err := sessions.SignIn(ctx, svc.Auth); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		env := &commands.Env{
			Config:   cfg,
			Service:  svc,
			Session:  sessions,
			Store:    store.New(svc, time.Second, logger.Discard()),
			Notifier: output.NewNotifier(errOut, cfg.Quiet),
			Logger:   logger.Discard(),
			Now:      func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) },
		}
		return env, func() { db.Close() }, nil
	}
}

func newDispatcher(t *testing.T, svc *testutil.FakeService) *cli.Dispatcher {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return cli.NewDispatcher(commands.DefaultRegistry, testFactory(t, svc, true, nil))
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := newDispatcher(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"unknowncmd"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_UnknownCommandSuggests(t *testing.T) {
	dispatcher := newDispatcher(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"lis"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: lis (did you mean: list?)\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := newDispatcher(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"--quiet"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher := newDispatcher(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"help"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr.String() != "" {
		t.Errorf("expected no stderr, got %q", stderr.String())
	}
	if !bytes.Contains(stdout.Bytes(), []byte("Usage:")) {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	dispatcher := newDispatcher(t, testutil.NewFakeService())

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"version"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout.String() != "daylog 0.1.0\n" {
		t.Errorf("expected 'daylog 0.1.0\\n', got %q", stdout.String())
	}
}

func TestDispatcher_Aliases(t *testing.T) {
	svc := testutil.NewFakeService()
	dispatcher := newDispatcher(t, svc)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"create", "Buy", "milk"}, &stdout, &stderr)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr.String())
	}

	stdout.Reset()
	code = dispatcher.Run(context.Background(), []string{"ls"}, &stdout, &stderr)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout.String(), "  n1  Buy milk\n") {
		t.Errorf("expected listing to contain the new task, got %q", stdout.String())
	}
}

func TestDispatcher_NoArgsLists(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask(service.Task{ID: "a", Title: "Read book"})
	dispatcher := newDispatcher(t, svc)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), nil, &stdout, &stderr)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "------------\nUnscheduled (n)\n------------\n  n1  Read book\n"
	if stdout.String() != expected {
		t.Errorf("expected %q, got %q", expected, stdout.String())
	}
}

func TestDispatcher_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown flag", []string{"help", "--unknown"}, "error: unknown flag: -unknown\n"},
		{"missing value", []string{"add", "--priority"}, "error: flag needs an argument: -priority\n"},
		{"bad value", []string{"logs", "--limit", "many"}, "error: invalid value \"many\" for flag -limit: parse error\n"},
		{"dash positional", []string{"done", "--", "-x"}, "error: unknown flag: -x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := newDispatcher(t, testutil.NewFakeService())

			var stdout, stderr bytes.Buffer
			code := dispatcher.Run(context.Background(), tt.args, &stdout, &stderr)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr.String())
			}
		})
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	svc := testutil.NewFakeService()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(t, svc, false, nil))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"list"}, &stdout, &stderr)

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	expected := "error: not logged in (run: daylog login)\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
	if svc.ListTasksCalls.Load() != 0 {
		t.Error("expected no backend call before login")
	}

	// Commands that do not need a session still run.
	stderr.Reset()
	code = dispatcher.Run(context.Background(), []string{"logtypes"}, &stdout, &stderr)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr.String())
	}
}

func TestDispatcher_CommonFlags(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	var got *config.Config
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(t, testutil.NewFakeService(), true, &got))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"add", "--config", dir, "--quiet", "--debug", "Task"}, &stdout, &stderr)

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (%s)", exitcode.Success, code, stderr.String())
	}
	if stdout.String() != "" {
		t.Errorf("expected quiet output, got %q", stdout.String())
	}
	if got.Dir != dir || !got.Quiet || !got.Debug || got.Logging.Level != "debug" {
		t.Errorf("common flags not applied: %+v", got)
	}
}

func TestDispatcher_ConfigError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("DAYLOG_STREAM_MODE", "bogus")
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(t, testutil.NewFakeService(), true, nil))

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"list"}, &stdout, &stderr)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr.String(), "error: config validate:") {
		t.Errorf("expected config error, got %q", stderr.String())
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	factory := func(ctx context.Context, cfg *config.Config, errOut io.Writer) (*commands.Env, func(), error) {
		return nil, nil, errors.New("open state database: locked")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	var stdout, stderr bytes.Buffer
	code := dispatcher.Run(context.Background(), []string{"list"}, &stdout, &stderr)

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr.String() != "error: open state database: locked\n" {
		t.Errorf("unexpected stderr %q", stderr.String())
	}
}
