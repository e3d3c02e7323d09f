package action

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/input/keymap"
	"github.com/dshills/tessera/internal/integration/process"
	"github.com/dshills/tessera/internal/workspace"
)

// MaxVT is the highest virtual terminal the kernel allocates.
const MaxVT = 63

func builtins() []Definition {
	return []Definition{
		{Name: "session.quit", Usage: "session.quit", Factory: sessionQuit},
		{Name: "session.reload", Usage: "session.reload", Factory: sessionReload},
		{Name: "session.vt", Usage: "session.vt <n>", MinArgs: 1, MaxArgs: 1, Factory: sessionVT},

		{Name: "seat.close", Usage: "seat.close", Factory: seatClose},
		{Name: "seat.focus", Usage: "seat.focus <left|down|up|right>", MinArgs: 1, MaxArgs: 1, Factory: seatFocus},
		{Name: "seat.move", Usage: "seat.move <left|down|up|right>", MinArgs: 1, MaxArgs: 1, Factory: seatMove},
		{Name: "seat.fullscreen", Usage: "seat.fullscreen", Factory: seatFullscreen},
		{Name: "seat.split", Usage: "seat.split <horizontal|vertical>", MinArgs: 1, MaxArgs: 1, Factory: seatSplit},

		{Name: "workspace.show", Usage: "workspace.show <id>", MinArgs: 1, MaxArgs: 1, Factory: workspaceShow},
		{Name: "workspace.set", Usage: "workspace.set <id>", MinArgs: 1, MaxArgs: 1, Factory: workspaceSet},
		{Name: "workspace.toggle", Usage: "workspace.toggle", Factory: workspaceToggle},

		{Name: "exec.spawn", Usage: "exec.spawn <program> [args...]", MinArgs: 1, MaxArgs: -1, Factory: execSpawn},
	}
}

func missing(what string) error {
	return fmt.Errorf("%w: %s", ErrMissingDependency, what)
}

func sessionQuit(d *Deps, _ []string) (keymap.Action, error) {
	if d.Lifecycle == nil {
		return nil, missing("lifecycle")
	}
	return d.Lifecycle.Quit, nil
}

func sessionReload(d *Deps, _ []string) (keymap.Action, error) {
	if d.Lifecycle == nil {
		return nil, missing("lifecycle")
	}
	return d.Lifecycle.Reload, nil
}

func sessionVT(d *Deps, args []string) (keymap.Action, error) {
	if d.Session == nil {
		return nil, missing("session")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > MaxVT {
		return nil, fmt.Errorf("%w: virtual terminal %q not in 1..%d", ErrBadArgs, args[0], MaxVT)
	}
	return func() {
		if err := d.Session.SwitchVT(n); err != nil {
			d.Logger.Error("switch vt failed", "vt", n, "error", err)
		}
	}, nil
}

func seatClose(d *Deps, _ []string) (keymap.Action, error) {
	if d.Seat == nil {
		return nil, missing("seat")
	}
	return d.Seat.Close, nil
}

func seatFocus(d *Deps, args []string) (keymap.Action, error) {
	if d.Seat == nil {
		return nil, missing("seat")
	}
	dir, err := compositor.ParseDirection(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	return func() { d.Seat.Focus(dir) }, nil
}

func seatMove(d *Deps, args []string) (keymap.Action, error) {
	if d.Seat == nil {
		return nil, missing("seat")
	}
	dir, err := compositor.ParseDirection(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	return func() { d.Seat.Move(dir) }, nil
}

func seatFullscreen(d *Deps, _ []string) (keymap.Action, error) {
	if d.Seat == nil {
		return nil, missing("seat")
	}
	return d.Seat.ToggleFullscreen, nil
}

func seatSplit(d *Deps, args []string) (keymap.Action, error) {
	if d.Seat == nil {
		return nil, missing("seat")
	}
	axis, err := compositor.ParseAxis(args[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
	}
	return func() { d.Seat.CreateSplit(axis) }, nil
}

func workspaceID(arg string) (workspace.ID, error) {
	id := strings.TrimSpace(arg)
	if id == "" {
		return "", fmt.Errorf("%w: empty workspace id", ErrBadArgs)
	}
	return workspace.ID(id), nil
}

func workspaceShow(d *Deps, args []string) (keymap.Action, error) {
	if d.Navigator == nil {
		return nil, missing("navigator")
	}
	id, err := workspaceID(args[0])
	if err != nil {
		return nil, err
	}
	return func() {
		if err := d.Navigator.Show(id); err != nil {
			d.Logger.Warn("show workspace failed", "workspace", id, "error", err)
		}
	}, nil
}

func workspaceSet(d *Deps, args []string) (keymap.Action, error) {
	if d.Navigator == nil {
		return nil, missing("navigator")
	}
	id, err := workspaceID(args[0])
	if err != nil {
		return nil, err
	}
	return func() {
		if err := d.Navigator.Set(id); err != nil {
			d.Logger.Warn("set workspace failed", "workspace", id, "error", err)
		}
	}, nil
}

func workspaceToggle(d *Deps, _ []string) (keymap.Action, error) {
	if d.Navigator == nil {
		return nil, missing("navigator")
	}
	return func() {
		if err := d.Navigator.Toggle(); err != nil {
			d.Logger.Warn("toggle workspace failed", "error", err)
		}
	}, nil
}

// execSpawn launches detached. Start failures are reported by the launcher.
func execSpawn(d *Deps, args []string) (keymap.Action, error) {
	if d.Launcher == nil {
		return nil, missing("launcher")
	}
	req := process.Request{Program: args[0]}
	if len(args) > 1 {
		req.Args = append([]string(nil), args[1:]...)
	}
	return func() {
		_, _ = d.Launcher.Launch(req)
	}, nil
}
