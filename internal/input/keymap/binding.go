package keymap

import (
	"github.com/dshills/tessera/internal/input/key"
)

// Action is the work a binding performs when it fires.
type Action func()

// MatchMode selects how a binding's modifiers are compared with the
// modifiers held at press time.
type MatchMode uint8

const (
	// MatchExact fires only when the held modifiers equal Mods.
	MatchExact MatchMode = iota

	// MatchMasked fires when Mods is a subset of the held modifiers.
	MatchMasked
)

// String returns the mode name.
func (m MatchMode) String() string {
	switch m {
	case MatchExact:
		return "exact"
	case MatchMasked:
		return "masked"
	default:
		return "unknown"
	}
}

// Binding maps a key and a modifier requirement to an action.
type Binding struct {
	// Key is the key that triggers this binding.
	Key key.Key

	// Mods is the required modifier set (Exact) or subset (Masked).
	Mods key.Modifier

	// Mode selects exact or masked matching.
	Mode MatchMode

	// Name describes the action, e.g. "workspace.show 3".
	// Used in logs and conflict reports.
	Name string

	// Action is invoked when the binding fires.
	Action Action

	// seq is the registration position; lower registered earlier.
	seq uint64
}

// Spec returns the key specification, e.g. "Super+Shift+q".
func (b Binding) Spec() string {
	return key.Event{Key: b.Key, Modifiers: b.Mods}.String()
}

// String returns a description like "Super+q -> seat.close (exact)".
func (b Binding) String() string {
	name := b.Name
	if name == "" {
		name = "<anonymous>"
	}
	return b.Spec() + " -> " + name + " (" + b.Mode.String() + ")"
}

// matches reports whether the binding fires for the held modifiers.
func (b *Binding) matches(pressed key.Modifier) bool {
	if b.Mode == MatchExact {
		return b.Mods == pressed
	}
	return pressed.Contains(b.Mods)
}

// sameSlot reports whether two bindings occupy the same table slot, so
// registering one replaces the other.
func (b *Binding) sameSlot(other *Binding) bool {
	return b.Key == other.Key && b.Mods == other.Mods && b.Mode == other.Mode
}

// Conflict records a binding that replaced an earlier one.
type Conflict struct {
	// Key and Mods identify the slot.
	Key  key.Key
	Mods key.Modifier
	Mode MatchMode

	// Replaced is the name of the binding that was dropped.
	Replaced string

	// By is the name of the binding that took its place.
	By string
}

// Spec returns the key specification of the contested slot.
func (c Conflict) Spec() string {
	return key.Event{Key: c.Key, Modifiers: c.Mods}.String()
}
