// Package action maps named, parameterised commands onto compositor
// operations.
//
// A Catalog resolves a keymap.Command such as "workspace.show 3" once, when
// bindings are loaded, into a keymap.Action closure. Argument errors surface
// at load time; failures while an action runs are logged and never escape
// to the event loop.
package action

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/input/keymap"
	"github.com/dshills/tessera/internal/integration/process"
	"github.com/dshills/tessera/internal/logging"
	"github.com/dshills/tessera/internal/workspace"
)

// Errors returned while resolving commands.
var (
	// ErrUnknownAction indicates no action is registered under the name.
	ErrUnknownAction = errors.New("unknown action")

	// ErrBadArgs indicates the arguments do not fit the action.
	ErrBadArgs = errors.New("bad arguments")

	// ErrMissingDependency indicates the catalog lacks what the action drives.
	ErrMissingDependency = errors.New("missing dependency")
)

// Navigator is the workspace history the workspace.* actions drive.
type Navigator interface {
	Show(id workspace.ID) error
	Set(id workspace.ID) error
	Toggle() error
}

// Launcher starts detached programs.
type Launcher interface {
	Launch(req process.Request) (*process.Process, error)
}

// Lifecycle ends or reloads the compositor.
type Lifecycle interface {
	Quit()
	Reload()
}

// Deps are the surfaces actions operate on.
type Deps struct {
	Seat      compositor.Seat
	Session   compositor.Session
	Navigator Navigator
	Launcher  Launcher
	Lifecycle Lifecycle
	Logger    *logging.Logger
}

// Factory builds an action from its arguments.
type Factory func(d *Deps, args []string) (keymap.Action, error)

// Definition describes one named action.
type Definition struct {
	Name    string
	Usage   string
	MinArgs int
	// MaxArgs < 0 means unbounded.
	MaxArgs int
	Factory Factory
}

// Catalog resolves commands against registered definitions.
type Catalog struct {
	deps *Deps
	defs map[string]Definition
}

// NewCatalog creates a catalog with the built-in actions.
func NewCatalog(deps Deps) *Catalog {
	deps.Logger = logging.OrDefault(deps.Logger).WithComponent("action")
	c := &Catalog{
		deps: &deps,
		defs: make(map[string]Definition),
	}
	for _, def := range builtins() {
		c.Register(def)
	}
	return c
}

// Register adds or replaces a definition.
func (c *Catalog) Register(def Definition) {
	c.defs[def.Name] = def
}

// Has reports whether name is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.defs[name]
	return ok
}

// Definitions returns all definitions sorted by name.
func (c *Catalog) Definitions() []Definition {
	out := make([]Definition, 0, len(c.defs))
	for _, def := range c.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResolveAction implements keymap.ActionResolver.
func (c *Catalog) ResolveAction(cmd keymap.Command) (keymap.Action, error) {
	def, ok := c.defs[cmd.Name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Name)
	}
	n := len(cmd.Args)
	if n < def.MinArgs || (def.MaxArgs >= 0 && n > def.MaxArgs) {
		return nil, fmt.Errorf("%w: %s: usage: %s", ErrBadArgs, cmd.Name, def.Usage)
	}
	action, err := def.Factory(c.deps, cmd.Args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return action, nil
}
