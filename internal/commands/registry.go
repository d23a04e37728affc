package commands

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// ErrDuplicateCommand is returned when a name or alias is taken.
var ErrDuplicateCommand = errors.New("command already registered")

// Registry maps command names and aliases to commands.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command // name and aliases map to command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds: make(map[string]Command),
	}
}

// Register adds c under its name and aliases. Nothing is added when any of
// them is already taken.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for _, key := range keys {
		if prev, exists := r.cmds[key]; exists {
			return fmt.Errorf("%w: %s (taken by %s)", ErrDuplicateCommand, key, prev.Name())
		}
	}
	for _, key := range keys {
		r.cmds[key] = c
	}
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns each command once, sorted by primary name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]Command)
	for _, cmd := range r.cmds {
		byName[cmd.Name()] = cmd
	}
	result := make([]Command, 0, len(byName))
	for _, name := range slices.Sorted(maps.Keys(byName)) {
		result = append(result, byName[name])
	}
	return result
}

// Suggest returns the primary names of commands whose name or alias starts
// with prefix, or that prefix starts with. Used for typo hints.
func (r *Registry) Suggest(prefix string) []string {
	if prefix == "" {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	for key, cmd := range r.cmds {
		if strings.HasPrefix(key, prefix) || (len(key) >= 2 && strings.HasPrefix(prefix, key)) {
			seen[cmd.Name()] = true
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// DefaultRegistry holds every built-in command.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry. Built-in commands
// register from init, so a clash is a programming error.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
