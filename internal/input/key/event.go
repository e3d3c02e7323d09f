package key

import (
	"time"
)

// Event represents a single key press observed by the input subsystem.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Modifiers contains the modifiers held at press time.
	Modifiers Modifier

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// NewEvent creates a key event with the current timestamp.
func NewEvent(k Key, mods Modifier) Event {
	return Event{
		Key:       k,
		Modifiers: mods,
		Timestamp: time.Now(),
	}
}

// IsModified returns true if any modifier is held.
func (e Event) IsModified() bool {
	return e.Modifiers != ModNone
}

// Chord returns the event without its timestamp, suitable for comparison.
func (e Event) Chord() Event {
	return Event{Key: e.Key, Modifiers: e.Modifiers}
}

// String returns the canonical specification, e.g. "Super+Shift+q".
func (e Event) String() string {
	if e.Modifiers == ModNone {
		return e.Key.String()
	}
	return e.Modifiers.String() + "+" + e.Key.String()
}
