// Package workspace tracks per-seat workspace history so a binding can jump
// back to the previously shown workspace.
package workspace

import (
	"errors"

	"github.com/dshills/tessera/internal/logging"
)

// ErrReentrant is returned when a navigator operation starts while another
// operation on the same seat is still running.
var ErrReentrant = errors.New("workspace: re-entrant navigation")

// ID names a workspace, e.g. "1".
type ID string

// DefaultID is the workspace a seat starts on.
const DefaultID ID = "1"

// Display is the part of a seat the navigator drives.
type Display interface {
	// ShowWorkspace makes the workspace visible on the seat's output.
	ShowWorkspace(id ID)

	// SetWorkspace moves the focused window to the workspace.
	SetWorkspace(id ID)
}

// History is the last two workspaces shown on a seat.
type History struct {
	Previous ID
	Current  ID
}

// ChangeCallback is called after the visible workspace changes.
type ChangeCallback func(from, to History)

// Navigator owns one seat's workspace history.
//
// Navigators are driven from the event loop only and take no locks.
type Navigator struct {
	display Display
	hist    History

	// busy is set while an operation runs.
	busy   bool
	strict bool

	callbacks []ChangeCallback
	logger    *logging.Logger
}

// NavigatorOption configures a Navigator.
type NavigatorOption func(*Navigator)

// WithNavigatorLogger sets the navigator's logger.
func WithNavigatorLogger(l *logging.Logger) NavigatorOption {
	return func(n *Navigator) {
		n.logger = l
	}
}

// WithStrict makes re-entrant operations panic.
func WithStrict(strict bool) NavigatorOption {
	return func(n *Navigator) {
		n.strict = strict
	}
}

// NewNavigator creates a navigator with both history slots set to initial.
func NewNavigator(display Display, initial ID, opts ...NavigatorOption) *Navigator {
	if initial == "" {
		initial = DefaultID
	}
	n := &Navigator{
		display: display,
		hist:    History{Previous: initial, Current: initial},
		logger:  logging.Null,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// History returns the current history pair.
func (n *Navigator) History() History {
	return n.hist
}

// Current returns the workspace currently shown.
func (n *Navigator) Current() ID {
	return n.hist.Current
}

// Previous returns the workspace shown before the current one.
func (n *Navigator) Previous() ID {
	return n.hist.Previous
}

// OnChange registers a callback for history changes.
func (n *Navigator) OnChange(cb ChangeCallback) {
	n.callbacks = append(n.callbacks, cb)
}

// Show displays target and records the old current workspace as previous.
// Showing the current workspace changes nothing and issues no display call.
func (n *Navigator) Show(target ID) error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.leave()

	if target == n.hist.Current {
		return nil
	}

	from := n.hist
	n.hist = History{Previous: n.hist.Current, Current: target}
	n.display.ShowWorkspace(target)
	n.notify(from)
	return nil
}

// Set moves the focused window to target. History is untouched.
func (n *Navigator) Set(target ID) error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.leave()

	n.display.SetWorkspace(target)
	return nil
}

// Toggle swaps previous and current and displays the new current.
// Toggle is its own inverse.
func (n *Navigator) Toggle() error {
	if err := n.enter(); err != nil {
		return err
	}
	defer n.leave()

	from := n.hist
	n.hist = History{Previous: n.hist.Current, Current: n.hist.Previous}
	n.display.ShowWorkspace(n.hist.Current)
	n.notify(from)
	return nil
}

func (n *Navigator) enter() error {
	if n.busy {
		n.logger.Error("re-entrant workspace navigation rejected",
			"current", string(n.hist.Current))
		if n.strict {
			panic(ErrReentrant)
		}
		return ErrReentrant
	}
	n.busy = true
	return nil
}

func (n *Navigator) leave() {
	n.busy = false
}

func (n *Navigator) notify(from History) {
	n.logger.Debug("workspace shown",
		"previous", string(n.hist.Previous),
		"current", string(n.hist.Current))
	for _, cb := range n.callbacks {
		if cb != nil {
			cb(from, n.hist)
		}
	}
}
