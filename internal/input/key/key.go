package key

import (
	"fmt"
	"strings"
	"unicode"
)

// Key identifies a key by its X keysym.
// Printable Latin-1 keys use their code point; letters are lowercase.
type Key uint32

const (
	// KeyNone represents no key.
	KeyNone Key = 0

	KeySpace Key = 0x0020

	// TTY function keys
	KeyBackSpace Key = 0xff08
	KeyTab       Key = 0xff09
	KeyReturn    Key = 0xff0d
	KeyPause     Key = 0xff13
	KeyEscape    Key = 0xff1b
	KeyDelete    Key = 0xffff

	// Cursor control
	KeyHome     Key = 0xff50
	KeyLeft     Key = 0xff51
	KeyUp       Key = 0xff52
	KeyRight    Key = 0xff53
	KeyDown     Key = 0xff54
	KeyPageUp   Key = 0xff55
	KeyPageDown Key = 0xff56
	KeyEnd      Key = 0xff57

	KeyPrint  Key = 0xff61
	KeyInsert Key = 0xff63

	// Function keys
	KeyF1  Key = 0xffbe
	KeyF2  Key = 0xffbf
	KeyF3  Key = 0xffc0
	KeyF4  Key = 0xffc1
	KeyF5  Key = 0xffc2
	KeyF6  Key = 0xffc3
	KeyF7  Key = 0xffc4
	KeyF8  Key = 0xffc5
	KeyF9  Key = 0xffc6
	KeyF10 Key = 0xffc7
	KeyF11 Key = 0xffc8
	KeyF12 Key = 0xffc9

	// XF86 media keys
	KeyMonBrightnessUp   Key = 0x1008ff02
	KeyMonBrightnessDown Key = 0x1008ff03
	KeyAudioLowerVolume  Key = 0x1008ff11
	KeyAudioMute         Key = 0x1008ff12
	KeyAudioRaiseVolume  Key = 0x1008ff13
	KeyAudioPlay         Key = 0x1008ff14
	KeyAudioStop         Key = 0x1008ff15
	KeyAudioPrev         Key = 0x1008ff16
	KeyAudioNext         Key = 0x1008ff17
	KeyAudioMicMute      Key = 0x1008ffb2
)

// namedKeys maps named keys to their canonical display name.
var namedKeys = map[Key]string{
	KeySpace:             "space",
	KeyBackSpace:         "BackSpace",
	KeyTab:               "Tab",
	KeyReturn:            "Return",
	KeyPause:             "Pause",
	KeyEscape:            "Escape",
	KeyDelete:            "Delete",
	KeyHome:              "Home",
	KeyLeft:              "Left",
	KeyUp:                "Up",
	KeyRight:             "Right",
	KeyDown:              "Down",
	KeyPageUp:            "Prior",
	KeyPageDown:          "Next",
	KeyEnd:               "End",
	KeyPrint:             "Print",
	KeyInsert:            "Insert",
	KeyMonBrightnessUp:   "XF86MonBrightnessUp",
	KeyMonBrightnessDown: "XF86MonBrightnessDown",
	KeyAudioLowerVolume:  "XF86AudioLowerVolume",
	KeyAudioMute:         "XF86AudioMute",
	KeyAudioRaiseVolume:  "XF86AudioRaiseVolume",
	KeyAudioPlay:         "XF86AudioPlay",
	KeyAudioStop:         "XF86AudioStop",
	KeyAudioPrev:         "XF86AudioPrev",
	KeyAudioNext:         "XF86AudioNext",
	KeyAudioMicMute:      "XF86AudioMicMute",
}

// keyNameMap maps lowercase key names (and common aliases) to keys.
var keyNameMap = func() map[string]Key {
	m := make(map[string]Key, len(namedKeys)+24)
	for k, name := range namedKeys {
		m[strings.ToLower(name)] = k
	}
	for i := 0; i < 12; i++ {
		m[fmt.Sprintf("f%d", i+1)] = KeyF1 + Key(i)
	}
	aliases := map[string]Key{
		"enter":     KeyReturn,
		"ret":       KeyReturn,
		"esc":       KeyEscape,
		"bs":        KeyBackSpace,
		"del":       KeyDelete,
		"ins":       KeyInsert,
		"pageup":    KeyPageUp,
		"pgup":      KeyPageUp,
		"pagedown":  KeyPageDown,
		"pgdn":      KeyPageDown,
		"plus":      Key('+'),
		"minus":     Key('-'),
		"equal":     Key('='),
		"comma":     Key(','),
		"period":    Key('.'),
		"slash":     Key('/'),
		"backslash": Key('\\'),
		"semicolon": Key(';'),
		"grave":     Key('`'),
	}
	for name, k := range aliases {
		m[name] = k
	}
	return m
}()

// FromRune returns the key for a printable Latin-1 character.
// Letters are folded to their lowercase keysym.
// Returns KeyNone for runes outside the printable Latin-1 range.
func FromRune(r rune) Key {
	r = unicode.ToLower(r)
	if r < 0x20 || r > 0xff || (r >= 0x7f && r < 0xa0) {
		return KeyNone
	}
	return Key(r)
}

// FromName returns the key for a keysym name (case-insensitive) or a
// single printable character. Returns KeyNone if the name is not recognized.
func FromName(name string) Key {
	if name == "" {
		return KeyNone
	}
	if k, ok := keyNameMap[strings.ToLower(name)]; ok {
		return k
	}
	runes := []rune(name)
	if len(runes) == 1 {
		return FromRune(runes[0])
	}
	return KeyNone
}

// String returns the keysym name for the key.
func (k Key) String() string {
	if k == KeyNone {
		return "None"
	}
	if name, ok := namedKeys[k]; ok {
		return name
	}
	if k.IsFunctionKey() {
		return fmt.Sprintf("F%d", k-KeyF1+1)
	}
	if k.IsPrintable() {
		return string(rune(k))
	}
	return fmt.Sprintf("0x%x", uint32(k))
}

// IsPrintable returns true if the key is a printable Latin-1 character.
func (k Key) IsPrintable() bool {
	return (k > 0x20 && k < 0x7f) || (k >= 0xa0 && k <= 0xff)
}

// IsFunctionKey returns true if this is a function key (F1-F12).
func (k Key) IsFunctionKey() bool {
	return k >= KeyF1 && k <= KeyF12
}

// IsArrowKey returns true if this is an arrow key.
func (k Key) IsArrowKey() bool {
	return k >= KeyLeft && k <= KeyDown
}

// IsMediaKey returns true if this is an XF86 vendor key.
// Media keys are usually bound masked so they fire whatever else is held.
func (k Key) IsMediaKey() bool {
	return k&0xffff0000 == 0x10080000
}

// FunctionKey returns the key for Fn, or KeyNone when n is out of range.
func FunctionKey(n int) Key {
	if n < 1 || n > 12 {
		return KeyNone
	}
	return KeyF1 + Key(n-1)
}
