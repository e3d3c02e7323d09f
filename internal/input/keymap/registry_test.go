package keymap

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/tessera/internal/input/key"
	"github.com/dshills/tessera/internal/logging"
)

// recorder collects the names of fired actions.
type recorder struct {
	fired []string
}

func (r *recorder) action(name string) Action {
	return func() { r.fired = append(r.fired, name) }
}

func (r *recorder) last() string {
	if len(r.fired) == 0 {
		return ""
	}
	return r.fired[len(r.fired)-1]
}

func TestRegistry_ExactDispatch(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry()
	if err := reg.Bind("Super+q", "close", rec.action("close")); err != nil {
		t.Fatal(err)
	}
	if err := reg.Bind("Super+Shift+q", "quit", rec.action("quit")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		mods    key.Modifier
		want    string
		handled bool
	}{
		{"exact Super", key.ModSuper, "close", true},
		{"exact Super+Shift", key.ModSuper | key.ModShift, "quit", true},
		{"no modifiers", key.ModNone, "", false},
		{"superset is not exact", key.ModSuper | key.ModCtrl, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.fired = nil
			handled := reg.Dispatch(key.Key('q'), tt.mods)
			if handled != tt.handled {
				t.Errorf("Dispatch() = %v, want %v", handled, tt.handled)
			}
			if got := rec.last(); got != tt.want {
				t.Errorf("fired %q, want %q", got, tt.want)
			}
			if len(rec.fired) > 1 {
				t.Errorf("fired %d actions, want at most 1", len(rec.fired))
			}
		})
	}
}

func TestRegistry_MaskedEmptySubsetFiresForAnyModifiers(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry()
	if err := reg.BindMasked("XF86AudioMute", "mute", rec.action("mute")); err != nil {
		t.Fatal(err)
	}

	sets := []key.Modifier{
		key.ModNone,
		key.ModShift,
		key.ModSuper | key.ModCtrl,
		key.ModSuper | key.ModCtrl | key.ModAlt | key.ModShift,
	}
	for _, mods := range sets {
		rec.fired = nil
		if !reg.Dispatch(key.KeyAudioMute, mods) {
			t.Errorf("Dispatch(mute, %q) not handled", mods)
		}
		if rec.last() != "mute" {
			t.Errorf("Dispatch(mute, %q) fired %v", mods, rec.fired)
		}
	}
}

func TestRegistry_ExactBeatsMasked(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry()
	// Masked registered first to show order does not matter for this rule.
	_ = reg.BindMasked("XF86AudioMute", "masked", rec.action("masked"))
	_ = reg.Bind("Super+XF86AudioMute", "exact", rec.action("exact"))

	reg.Dispatch(key.KeyAudioMute, key.ModSuper)
	if rec.last() != "exact" {
		t.Errorf("pressed {Super}: fired %q, want exact", rec.last())
	}

	reg.Dispatch(key.KeyAudioMute, key.ModSuper|key.ModShift)
	if rec.last() != "masked" {
		t.Errorf("pressed {Super,Shift}: fired %q, want masked", rec.last())
	}
}

func TestRegistry_MaskedLargestSubsetWins(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry()
	_ = reg.BindMasked("XF86AudioRaiseVolume", "any", rec.action("any"))
	_ = reg.BindMasked("Super+XF86AudioRaiseVolume", "super", rec.action("super"))
	_ = reg.BindMasked("Super+Shift+XF86AudioRaiseVolume", "super-shift", rec.action("super-shift"))

	tests := []struct {
		mods key.Modifier
		want string
	}{
		{key.ModNone, "any"},
		{key.ModShift, "any"},
		{key.ModSuper, "super"},
		{key.ModSuper | key.ModCtrl, "super"},
		{key.ModSuper | key.ModShift, "super-shift"},
		{key.ModSuper | key.ModShift | key.ModAlt, "super-shift"},
	}
	for _, tt := range tests {
		reg.Dispatch(key.KeyAudioRaiseVolume, tt.mods)
		if rec.last() != tt.want {
			t.Errorf("pressed %q: fired %q, want %q", tt.mods, rec.last(), tt.want)
		}
	}
}

func TestRegistry_MaskedTieGoesToEarliest(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry()
	_ = reg.BindMasked("Super+XF86AudioMute", "super", rec.action("super"))
	_ = reg.BindMasked("Ctrl+XF86AudioMute", "ctrl", rec.action("ctrl"))

	reg.Dispatch(key.KeyAudioMute, key.ModSuper|key.ModCtrl)
	if rec.last() != "super" {
		t.Errorf("tie fired %q, want earliest registered (super)", rec.last())
	}
}

func TestRegistry_DuplicateLastWins(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf, Prefix: "test"})

	var handled []Conflict
	rec := &recorder{}
	reg := NewRegistry(WithLogger(log), WithConflictHandler(func(c Conflict) {
		handled = append(handled, c)
	}))

	_ = reg.Bind("Super+f", "first", rec.action("first"))
	_ = reg.Bind("Super+h", "other", rec.action("other"))
	_ = reg.Bind("Super+f", "second", rec.action("second"))

	reg.Dispatch(key.Key('f'), key.ModSuper)
	if rec.last() != "second" {
		t.Errorf("fired %q, want second", rec.last())
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}

	conflicts := reg.Conflicts()
	if len(conflicts) != 1 {
		t.Fatalf("len(Conflicts()) = %d, want 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Replaced != "first" || c.By != "second" || c.Spec() != "Super+f" {
		t.Errorf("conflict = %+v", c)
	}
	if len(handled) != 1 {
		t.Errorf("conflict handler called %d times, want 1", len(handled))
	}
	if !strings.Contains(buf.String(), `level=warn`) || !strings.Contains(buf.String(), `msg="binding replaced"`) {
		t.Errorf("expected warning in log, got %q", buf.String())
	}

	// The replacement moved to the newest position.
	names := make([]string, 0)
	for _, b := range reg.Bindings() {
		names = append(names, b.Name)
	}
	if strings.Join(names, ",") != "other,second" {
		t.Errorf("Bindings() order = %v, want [other second]", names)
	}
}

func TestRegistry_DuplicateMaskedTakesNewestPosition(t *testing.T) {
	rec := &recorder{}
	reg := NewRegistry()
	_ = reg.BindMasked("Super+XF86AudioMute", "super-old", rec.action("super-old"))
	_ = reg.BindMasked("Ctrl+XF86AudioMute", "ctrl", rec.action("ctrl"))
	_ = reg.BindMasked("Super+XF86AudioMute", "super-new", rec.action("super-new"))

	// The Super binding was re-registered after Ctrl, so Ctrl now wins ties.
	reg.Dispatch(key.KeyAudioMute, key.ModSuper|key.ModCtrl)
	if rec.last() != "ctrl" {
		t.Errorf("tie fired %q, want ctrl", rec.last())
	}
	reg.Dispatch(key.KeyAudioMute, key.ModSuper)
	if rec.last() != "super-new" {
		t.Errorf("fired %q, want super-new", rec.last())
	}
}

func TestRegistry_ExactAndMaskedDoNotConflict(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Bind("Super+Return", "exact", func() {})
	_ = reg.BindMasked("Super+Return", "masked", func() {})

	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
	if len(reg.Conflicts()) != 0 {
		t.Errorf("unexpected conflicts: %v", reg.Conflicts())
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(Binding{Key: key.Key('q')}); !errors.Is(err, ErrNilAction) {
		t.Errorf("nil action: err = %v, want ErrNilAction", err)
	}
	if err := reg.Register(Binding{Action: func() {}}); !errors.Is(err, ErrNoKey) {
		t.Errorf("no key: err = %v, want ErrNoKey", err)
	}
	if err := reg.Register(Binding{Key: key.Key('q'), Mods: key.Modifier(1), Action: func() {}}); !errors.Is(err, ErrInvalidModifiers) {
		t.Errorf("bad mods: err = %v, want ErrInvalidModifiers", err)
	}
	if err := reg.Bind("Hyper+q", "x", func() {}); !errors.Is(err, key.ErrInvalidSpec) {
		t.Errorf("bad spec: err = %v, want key.ErrInvalidSpec", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestRegistry_Resolve(t *testing.T) {
	fired := false
	reg := NewRegistry()
	_ = reg.Bind("Super+Tab", "workspace.toggle", func() { fired = true })

	b, ok := reg.Resolve(key.KeyTab, key.ModSuper)
	if !ok {
		t.Fatal("Resolve() found nothing")
	}
	if b.Name != "workspace.toggle" || b.Mode != MatchExact {
		t.Errorf("Resolve() = %v", b)
	}
	if fired {
		t.Error("Resolve() must not invoke the action")
	}

	if _, ok := reg.Resolve(key.KeyTab, key.ModNone); ok {
		t.Error("Resolve() for unmapped press should report false")
	}
}

func TestRegistry_UnmappedIsDropped(t *testing.T) {
	reg := NewRegistry()
	if reg.Dispatch(key.Key('z'), key.ModSuper) {
		t.Error("Dispatch() on empty table should report false")
	}
	if reg.DispatchEvent(key.NewEvent(key.KeyF5, key.ModNone)) {
		t.Error("DispatchEvent() on empty table should report false")
	}
}

func TestRegistry_PanickingActionIsRecovered(t *testing.T) {
	var buf bytes.Buffer
	log := logging.New(logging.Config{Level: logging.LevelInfo, Output: &buf, Prefix: "test"})
	reg := NewRegistry(WithLogger(log))

	_ = reg.Bind("Super+x", "boom", func() { panic("boom") })
	ran := false
	_ = reg.Bind("Super+y", "ok", func() { ran = true })

	if !reg.Dispatch(key.Key('x'), key.ModSuper) {
		t.Error("panicking action should still count as handled")
	}
	if reg.Dispatching() {
		t.Error("dispatching flag should be cleared after a panic")
	}
	reg.Dispatch(key.Key('y'), key.ModSuper)
	if !ran {
		t.Error("registry should keep working after a panicking action")
	}
	if !strings.Contains(buf.String(), `msg="action panicked"`) {
		t.Errorf("expected panic to be logged, got %q", buf.String())
	}
}

func TestRegistry_ReentrantDispatchRejected(t *testing.T) {
	reg := NewRegistry()
	inner := false
	var nested bool
	_ = reg.Bind("Super+i", "inner", func() { inner = true })
	_ = reg.Bind("Super+o", "outer", func() {
		nested = reg.Dispatch(key.Key('i'), key.ModSuper)
	})

	reg.Dispatch(key.Key('o'), key.ModSuper)
	if nested || inner {
		t.Error("nested dispatch should be rejected")
	}
}

func TestRegistry_ReentrantDispatchPanicsInStrictMode(t *testing.T) {
	reg := NewRegistry(WithStrict(true))
	_ = reg.Bind("Super+i", "inner", func() {})
	_ = reg.Bind("Super+o", "outer", func() {
		reg.Dispatch(key.Key('i'), key.ModSuper)
	})

	defer func() {
		rec := recover()
		err, ok := rec.(error)
		if !ok || !errors.Is(err, ErrReentrantDispatch) {
			t.Errorf("recover() = %v, want ErrReentrantDispatch", rec)
		}
		if reg.Dispatching() {
			t.Error("dispatching flag should be cleared")
		}
	}()
	reg.Dispatch(key.Key('o'), key.ModSuper)
	t.Error("strict re-entrant dispatch should panic")
}

func TestBindingString(t *testing.T) {
	b := Binding{Key: key.Key('q'), Mods: key.ModSuper, Name: "seat.close"}
	if got := b.String(); got != "Super+q -> seat.close (exact)" {
		t.Errorf("String() = %q", got)
	}
	b = Binding{Key: key.KeyAudioMute, Mode: MatchMasked}
	if got := b.String(); got != "XF86AudioMute -> <anonymous> (masked)" {
		t.Errorf("String() = %q", got)
	}
}
