package workspace

import (
	"testing"
)

func TestManager_ForCreatesOnFirstUse(t *testing.T) {
	m := NewManager()

	if _, ok := m.Lookup("seat0"); ok {
		t.Fatal("Lookup() before first use should fail")
	}

	d := &recordingDisplay{}
	n := m.For("seat0", d)
	if n == nil {
		t.Fatal("For() returned nil")
	}
	if n.Current() != DefaultID {
		t.Errorf("Current() = %q, want %q", n.Current(), DefaultID)
	}

	_ = n.Show("4")
	again := m.For("seat0", &recordingDisplay{})
	if again != n {
		t.Error("For() should return the existing navigator")
	}
	if again.Current() != "4" {
		t.Errorf("history lost: Current() = %q", again.Current())
	}
	if len(d.shown) != 1 {
		t.Errorf("original display should still be used, shown = %v", d.shown)
	}
}

func TestManager_SeatsAreIndependent(t *testing.T) {
	m := NewManager(WithInitial("2"))
	a := m.For("seat-a", &recordingDisplay{})
	b := m.For("seat-b", &recordingDisplay{})

	_ = a.Show("5")
	if b.Current() != "2" {
		t.Errorf("seat-b Current() = %q, want 2", b.Current())
	}

	seats := m.Seats()
	if len(seats) != 2 || seats[0] != "seat-a" || seats[1] != "seat-b" {
		t.Errorf("Seats() = %v", seats)
	}
}

func TestManager_StrictNavigators(t *testing.T) {
	m := NewManager(WithStrictNavigators(true))
	d := &recordingDisplay{}
	n := m.For("seat0", d)
	if !n.strict {
		t.Error("navigator should inherit strict mode")
	}
}
