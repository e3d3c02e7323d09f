package keymap

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/tessera/internal/input/key"
)

// ErrNoCommand is returned for a binding entry that names no action.
var ErrNoCommand = errors.New("binding names no action")

// Command names an action and its arguments, e.g. workspace.show 3.
type Command struct {
	Name string
	Args []string
}

// String returns the command as it would be written on one line.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Spec is a configuration entry describing one binding.
type Spec struct {
	// Keys is the key specification, e.g. "Super+Shift+q".
	Keys string

	// Masked registers the binding as masked.
	Masked bool

	// Commands run in order when the binding fires.
	Commands []Command
}

// ActionResolver turns a named command into a runnable action.
type ActionResolver interface {
	ResolveAction(cmd Command) (Action, error)
}

// SpecError reports a binding entry that could not be loaded.
type SpecError struct {
	Index int
	Keys  string
	Err   error
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("binding %d (%q): %v", e.Index, e.Keys, e.Err)
}

func (e *SpecError) Unwrap() error {
	return e.Err
}

// LoadBindings registers every entry in specs.
// Bad entries are skipped; their errors are returned in entry order.
func LoadBindings(reg *Registry, specs []Spec, resolver ActionResolver) []error {
	var errs []error
	for i, s := range specs {
		if err := loadSpec(reg, s, resolver); err != nil {
			errs = append(errs, &SpecError{Index: i, Keys: s.Keys, Err: err})
		}
	}
	return errs
}

func loadSpec(reg *Registry, s Spec, resolver ActionResolver) error {
	ev, err := key.Parse(s.Keys)
	if err != nil {
		return err
	}
	if len(s.Commands) == 0 {
		return ErrNoCommand
	}

	actions := make([]Action, 0, len(s.Commands))
	names := make([]string, 0, len(s.Commands))
	for _, cmd := range s.Commands {
		a, err := resolver.ResolveAction(cmd)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd.Name, err)
		}
		actions = append(actions, a)
		names = append(names, cmd.String())
	}

	mode := MatchExact
	if s.Masked {
		mode = MatchMasked
	}
	return reg.Register(Binding{
		Key:    ev.Key,
		Mods:   ev.Modifiers,
		Mode:   mode,
		Name:   strings.Join(names, "; "),
		Action: Chain(actions...),
	})
}

// Chain returns an action running each action in order.
func Chain(actions ...Action) Action {
	if len(actions) == 1 {
		return actions[0]
	}
	return func() {
		for _, a := range actions {
			if a != nil {
				a()
			}
		}
	}
}

// ActionResolverFunc adapts a function to the ActionResolver interface.
type ActionResolverFunc func(cmd Command) (Action, error)

// ResolveAction calls f(cmd).
func (f ActionResolverFunc) ResolveAction(cmd Command) (Action, error) {
	return f(cmd)
}
