package commands

import (
	"context"
	"errors"
	"flag"
	"io"
	"slices"
	"testing"
)

type stubCmd struct {
	name    string
	aliases []string
}

func (c *stubCmd) Name() string                   { return c.name }
func (c *stubCmd) Aliases() []string              { return c.aliases }
func (c *stubCmd) Synopsis() string               { return "" }
func (c *stubCmd) Usage() string                  { return "" }
func (c *stubCmd) NeedsAuth() bool                { return false }
func (c *stubCmd) RegisterFlags(fs *flag.FlagSet) {}
func (c *stubCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	return 0
}

func TestRegistry_RegisterAndFind(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubCmd{name: "list", aliases: []string{"ls"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, key := range []string{"list", "ls"} {
		cmd, ok := r.Find(key)
		if !ok || cmd.Name() != "list" {
			t.Errorf("Find(%q) = %v, %v", key, cmd, ok)
		}
	}
	if _, ok := r.Find("missing"); ok {
		t.Error("expected missing command not to be found")
	}
}

func TestRegistry_DuplicateLeavesRegistryUnchanged(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&stubCmd{name: "list", aliases: []string{"ls"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := r.Register(&stubCmd{name: "logs", aliases: []string{"ls"}})
	if !errors.Is(err, ErrDuplicateCommand) {
		t.Fatalf("expected ErrDuplicateCommand, got %v", err)
	}
	if err.Error() != "command already registered: ls (taken by list)" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if _, ok := r.Find("logs"); ok {
		t.Error("expected partially conflicting command not to be registered")
	}
}

func TestRegistry_AllSortedUnique(t *testing.T) {
	r := NewRegistry()
	for _, c := range []*stubCmd{{name: "rm"}, {name: "add", aliases: []string{"create"}}, {name: "list", aliases: []string{"ls"}}} {
		if err := r.Register(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var names []string
	for _, c := range r.All() {
		names = append(names, c.Name())
	}
	if !slices.Equal(names, []string{"add", "list", "rm"}) {
		t.Errorf("unexpected order %v", names)
	}
}

func TestRegistry_Suggest(t *testing.T) {
	r := NewRegistry()
	for _, c := range []*stubCmd{{name: "log"}, {name: "logs", aliases: []string{"journal"}}, {name: "list", aliases: []string{"ls"}}} {
		if err := r.Register(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	tests := []struct {
		in   string
		want []string
	}{
		{"lo", []string{"log", "logs"}},
		{"jour", []string{"logs"}},
		{"lst", []string{"list"}},
		{"xyz", nil},
		{"logz", []string{"log"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := r.Suggest(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("Suggest(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultRegistry_BuiltinsRegistered(t *testing.T) {
	for _, name := range []string{"list", "add", "done", "edit", "rm", "logs", "log", "chat", "breakdown", "analyze", "dashboard", "watch", "login", "help", "version"} {
		if _, ok := DefaultRegistry.Find(name); !ok {
			t.Errorf("expected %q to be registered", name)
		}
	}
}
