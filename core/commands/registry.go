package commands

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Command is a slash command advertised to chat clients.
type Command struct {
	Name        string
	Description string
}

// Registry holds registered commands keyed by name.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command
}

// NewRegistry creates an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]Command)}
}

// Register adds a command. Returns an error if the name is empty, malformed
// or already registered.
func (r *Registry) Register(cmd Command) error {
	name := strings.TrimPrefix(cmd.Name, "/")
	if name == "" {
		return fmt.Errorf("command name is required")
	}
	if strings.ContainsAny(name, " \t\n@") {
		return fmt.Errorf("invalid command name: %q", cmd.Name)
	}
	cmd.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cmds[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}
	r.cmds[name] = cmd
	return nil
}

// Get returns the command with the given name.
func (r *Registry) Get(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// Match reports which command the text invokes. Only an exact "/name" matches:
// arguments, trailing spaces, case changes and "@botname" suffixes do not.
func (r *Registry) Match(text string) (Command, bool) {
	if !strings.HasPrefix(text, "/") {
		return Command{}, false
	}
	return r.Get(text[1:])
}

// List returns all registered commands sorted alphabetically.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Command, len(names))
	for i, name := range names {
		result[i] = r.cmds[name]
	}
	return result
}
