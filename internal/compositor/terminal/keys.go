package terminal

import (
	"unicode"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/tessera/internal/input/key"
)

var namedKeys = map[tcell.Key]key.Key{
	tcell.KeyEnter:      key.KeyReturn,
	tcell.KeyTab:        key.KeyTab,
	tcell.KeyBackspace:  key.KeyBackSpace,
	tcell.KeyBackspace2: key.KeyBackSpace,
	tcell.KeyEscape:     key.KeyEscape,
	tcell.KeyDelete:     key.KeyDelete,
	tcell.KeyInsert:     key.KeyInsert,
	tcell.KeyHome:       key.KeyHome,
	tcell.KeyEnd:        key.KeyEnd,
	tcell.KeyPgUp:       key.KeyPageUp,
	tcell.KeyPgDn:       key.KeyPageDown,
	tcell.KeyUp:         key.KeyUp,
	tcell.KeyDown:       key.KeyDown,
	tcell.KeyLeft:       key.KeyLeft,
	tcell.KeyRight:      key.KeyRight,
	tcell.KeyPause:      key.KeyPause,
	tcell.KeyPrint:      key.KeyPrint,
}

// ConvertMods maps tcell modifiers. Meta is reported as Super since
// terminals pass the logo key, when at all, as Meta.
func ConvertMods(m tcell.ModMask) key.Modifier {
	var mods key.Modifier
	if m&tcell.ModShift != 0 {
		mods = mods.With(key.ModShift)
	}
	if m&tcell.ModCtrl != 0 {
		mods = mods.With(key.ModCtrl)
	}
	if m&tcell.ModAlt != 0 {
		mods = mods.With(key.ModAlt)
	}
	if m&tcell.ModMeta != 0 {
		mods = mods.With(key.ModSuper)
	}
	return mods
}

// ConvertKey maps a tcell key event. It reports false for keys with no
// keysym, such as non-Latin-1 runes.
func ConvertKey(ev *tcell.EventKey) (key.Event, bool) {
	mods := ConvertMods(ev.Modifiers())

	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		r := ev.Rune()
		if unicode.IsUpper(r) {
			mods = mods.With(key.ModShift)
		}
		kk := key.FromRune(r)
		if kk == key.KeyNone {
			return key.Event{}, false
		}
		return key.NewEvent(kk, mods), true

	case k == tcell.KeyBacktab:
		return key.NewEvent(key.KeyTab, mods.With(key.ModShift)), true

	case k >= tcell.KeyF1 && k <= tcell.KeyF12:
		return key.NewEvent(key.FunctionKey(int(k-tcell.KeyF1)+1), mods), true
	}

	if kk, ok := namedKeys[ev.Key()]; ok {
		return key.NewEvent(kk, mods), true
	}

	// Remaining control codes are Ctrl+letter.
	if k := ev.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		letter := key.Key('a' + rune(k-tcell.KeyCtrlA))
		return key.NewEvent(letter, mods.With(key.ModCtrl)), true
	}
	return key.Event{}, false
}
