package key

import (
	"fmt"
	"math/bits"
	"strings"
)

// Modifier represents a set of held modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Mod1).
	ModAlt

	// ModSuper indicates the Super/logo key (Mod4).
	ModSuper
)

// modAll is every modifier this package knows about.
const modAll = ModShift | ModCtrl | ModAlt | ModSuper

// Has returns true if m contains the specified modifier.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// HasShift returns true if Shift is held.
func (m Modifier) HasShift() bool {
	return m.Has(ModShift)
}

// HasCtrl returns true if Control is held.
func (m Modifier) HasCtrl() bool {
	return m.Has(ModCtrl)
}

// HasAlt returns true if Alt is held.
func (m Modifier) HasAlt() bool {
	return m.Has(ModAlt)
}

// HasSuper returns true if Super is held.
func (m Modifier) HasSuper() bool {
	return m.Has(ModSuper)
}

// Contains reports whether every modifier in sub is also in m.
// The empty set is contained in every set.
func (m Modifier) Contains(sub Modifier) bool {
	return m&sub == sub
}

// Count returns the number of modifiers in the set.
func (m Modifier) Count() int {
	return bits.OnesCount8(uint8(m))
}

// With returns a new Modifier with the specified modifier added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns a new Modifier with the specified modifier removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// IsEmpty returns true if no modifiers are set.
func (m Modifier) IsEmpty() bool {
	return m == ModNone
}

// IsValid returns true if m only contains known modifiers.
func (m Modifier) IsValid() bool {
	return m&^modAll == 0
}

// String returns a human-readable representation like "Super+Shift".
// The order is fixed so equal sets always render the same way.
func (m Modifier) String() string {
	if m == ModNone {
		return ""
	}

	var parts []string
	if m.HasSuper() {
		parts = append(parts, "Super")
	}
	if m.HasCtrl() {
		parts = append(parts, "Ctrl")
	}
	if m.HasAlt() {
		parts = append(parts, "Alt")
	}
	if m.HasShift() {
		parts = append(parts, "Shift")
	}
	return strings.Join(parts, "+")
}

// modifierNameMap maps modifier names (lowercase) to Modifier values.
var modifierNameMap = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"c":       ModCtrl,
	"alt":     ModAlt,
	"mod1":    ModAlt,
	"a":       ModAlt,
	"shift":   ModShift,
	"s":       ModShift,
	"super":   ModSuper,
	"mod4":    ModSuper,
	"logo":    ModSuper,
	"win":     ModSuper,
	"meta":    ModSuper,
	"cmd":     ModSuper,
}

// ModifierFromName returns the Modifier for a given name (case-insensitive).
// Returns ModNone if the name is not recognized.
func ModifierFromName(name string) Modifier {
	if m, ok := modifierNameMap[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m
	}
	return ModNone
}

// ParseModifiers parses a modifier list like "Super+Shift" or "ctrl|alt".
// The empty string and "none" yield ModNone.
func ParseModifiers(s string) (Modifier, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "none") {
		return ModNone, nil
	}

	var result Modifier
	for _, part := range strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == '|' || r == ','
	}) {
		mod := ModifierFromName(part)
		if mod == ModNone {
			return ModNone, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, strings.TrimSpace(part))
		}
		result = result.With(mod)
	}
	return result, nil
}
