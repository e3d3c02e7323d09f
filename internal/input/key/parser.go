package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Parse errors
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a key specification string into an Event.
//
// Supported formats:
//   - Single key: "q", "1", "Return", "Tab", "F5", "XF86AudioMute"
//   - With modifiers: "Super+q", "Super+Shift+Return", "Ctrl+Alt+F1"
//   - A literal plus as the key: "Super++" or "Super+plus"
//
// An uppercase letter implies Shift: "Super+Q" equals "Super+Shift+q".
func Parse(spec string) (Event, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return Event{}, ErrEmptySpec
	}

	keyPart := spec
	var mods Modifier

	if idx := strings.LastIndex(spec, "+"); idx > 0 {
		modPart := spec[:idx]
		keyPart = spec[idx+1:]
		// "Super++" names the plus key.
		if keyPart == "" && strings.HasSuffix(modPart, "+") {
			modPart = strings.TrimSuffix(modPart, "+")
			keyPart = "+"
		}
		if keyPart == "" {
			return Event{}, fmt.Errorf("%w: missing key in %q", ErrInvalidSpec, spec)
		}
		for _, p := range strings.Split(modPart, "+") {
			mod := ModifierFromName(p)
			if mod == ModNone {
				return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, strings.TrimSpace(p))
			}
			mods = mods.With(mod)
		}
	}

	return parseKeyWithModifiers(strings.TrimSpace(keyPart), mods)
}

// parseKeyWithModifiers parses a key part with already-known modifiers.
func parseKeyWithModifiers(keyPart string, mods Modifier) (Event, error) {
	if keyPart == "" {
		return Event{}, ErrInvalidSpec
	}

	runes := []rune(keyPart)
	if len(runes) == 1 && unicode.IsUpper(runes[0]) {
		mods = mods.With(ModShift)
	}

	k := FromName(keyPart)
	if k == KeyNone {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}
	return Event{Key: k, Modifiers: mods}, nil
}

// MustParse parses a key specification and panics on error.
// Use only for known-valid specs in initialization code.
func MustParse(spec string) Event {
	event, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return event
}

// NormalizeSpec parses and re-formats a key specification to its canonical form.
func NormalizeSpec(spec string) (string, error) {
	event, err := Parse(spec)
	if err != nil {
		return "", err
	}
	return event.String(), nil
}
