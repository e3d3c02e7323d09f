package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/tessera/internal/config"
	"github.com/dshills/tessera/internal/input/keymap"
)

// recordingResolver resolves every command to an action that records it.
type recordingResolver struct {
	ran []string
}

func (r *recordingResolver) ResolveAction(cmd keymap.Command) (keymap.Action, error) {
	if cmd.Name == "bogus" {
		return nil, errors.New("unknown action")
	}
	return func() { r.ran = append(r.ran, cmd.String()) }, nil
}

func newRuntime(t *testing.T, cfg *config.Config) *Runtime {
	t.Helper()
	r := New(cfg, WithHostname("box"))
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRuntime_Bind(t *testing.T) {
	cfg := config.Default()
	r := newRuntime(t, cfg)

	err := r.DoString(`
		tessera.bind("Super+Return", "exec.spawn footclient")
		tessera.bind("Super+b", {"exec.spawn", "firefox", "--private-window"})
		tessera.bind_masked("XF86AudioMute", {{"exec.spawn", "wpctl"}, {"workspace.show", 2}})
		tessera.bind("Super+x", function() end)
	`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	if len(cfg.Bindings) != 4 {
		t.Fatalf("Bindings = %d, want 4", len(cfg.Bindings))
	}

	tests := []struct {
		idx    int
		masked bool
		want   []string
	}{
		{0, false, []string{"exec.spawn footclient"}},
		{1, false, []string{"exec.spawn firefox --private-window"}},
		{2, true, []string{"exec.spawn wpctl", "workspace.show 2"}},
		{3, false, []string{"lua.call 0"}},
	}
	for _, tt := range tests {
		b := cfg.Bindings[tt.idx]
		if b.Masked != tt.masked {
			t.Errorf("binding %d masked = %v", tt.idx, b.Masked)
		}
		spec := b.Spec()
		var got []string
		for _, c := range spec.Commands {
			got = append(got, c.String())
		}
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("binding %d commands = %v, want %v", tt.idx, got, tt.want)
		}
	}
	if r.Functions() != 1 {
		t.Errorf("Functions() = %d, want 1", r.Functions())
	}
}

func TestRuntime_BindErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"number action", `tessera.bind("Super+x", 5)`},
		{"empty list", `tessera.bind("Super+x", {})`},
		{"mixed list", `tessera.bind("Super+x", {{"seat.close"}, "x"})`},
		{"missing keys", `tessera.bind()`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRuntime(t, config.Default())
			if err := r.DoString(tt.code); err == nil {
				t.Error("DoString() should fail")
			}
		})
	}
}

func TestRuntime_SetAndStartup(t *testing.T) {
	cfg := config.Default()
	r := newRuntime(t, cfg)

	err := r.DoString(`
		if tessera.hostname() == "box" then
			tessera.set("input.repeat_rate", 30)
			tessera.set("input.tap_to_click", false)
			tessera.set("status.format", "%H:%M")
		end
		tessera.startup("waybar", "-c", 1)
	`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}
	if cfg.Input.RepeatRate != 30 || cfg.Input.TapToClick || cfg.Status.Format != "%H:%M" {
		t.Errorf("settings not applied: %+v %+v", cfg.Input, cfg.Status)
	}
	last := cfg.Startup[len(cfg.Startup)-1]
	if last.Program != "waybar" || strings.Join(last.Args, " ") != "-c 1" {
		t.Errorf("startup = %+v", last)
	}

	if err := r.DoString(`tessera.set("input.volume", 3)`); err == nil {
		t.Error("unknown setting should fail")
	}
}

func TestRuntime_Sandbox(t *testing.T) {
	r := newRuntime(t, config.Default())
	for _, code := range []string{
		`os.execute("true")`,
		`io.open("/etc/passwd")`,
		`dofile("/tmp/x.lua")`,
		`require("os")`,
	} {
		if err := r.DoString(code); err == nil {
			t.Errorf("DoString(%q) should fail in the sandbox", code)
		}
	}
}

func TestRuntime_Timeout(t *testing.T) {
	r := New(config.Default(), WithTimeout(50*time.Millisecond))
	defer r.Close()

	done := make(chan error, 1)
	go func() { done <- r.DoString(`while true do end`) }()
	select {
	case err := <-done:
		if err == nil {
			t.Error("endless loop should be interrupted")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("DoString() was not interrupted")
	}
}

func TestRuntime_Resolver(t *testing.T) {
	cfg := config.Default()
	r := newRuntime(t, cfg)
	next := &recordingResolver{}
	res := r.Resolver(next)

	err := r.DoString(`
		calls = 0
		tessera.bind("Super+x", function()
			calls = calls + 1
			tessera.run("workspace.show", "3")
			tessera.run("seat.close")
		end)
		tessera.bind("Super+y", function()
			tessera.run("lua.call 0")
		end)
		tessera.bind("Super+z", function()
			tessera.run("bogus")
		end)
	`)
	if err != nil {
		t.Fatalf("DoString() error = %v", err)
	}

	action, err := res.ResolveAction(keymap.Command{Name: CallAction, Args: []string{"0"}})
	if err != nil {
		t.Fatalf("ResolveAction(lua.call 0) error = %v", err)
	}
	action()
	if strings.Join(next.ran, "|") != "workspace.show 3|seat.close" {
		t.Errorf("ran = %v", next.ran)
	}

	nested, err := res.ResolveAction(keymap.Command{Name: CallAction, Args: []string{"1"}})
	if err != nil {
		t.Fatal(err)
	}
	nested()
	if got := r.L.GetGlobal("calls").String(); got != "2" {
		t.Errorf("calls = %s, want 2", got)
	}

	if err := r.Call(2); err == nil {
		t.Error("Call() of a function running a bogus action should fail")
	}

	if _, err := res.ResolveAction(keymap.Command{Name: CallAction, Args: []string{"9"}}); !errors.Is(err, ErrNoFunction) {
		t.Errorf("ResolveAction(lua.call 9) error = %v, want ErrNoFunction", err)
	}
	if _, err := res.ResolveAction(keymap.Command{Name: CallAction}); err == nil {
		t.Error("ResolveAction(lua.call) without an index should fail")
	}

	passed, err := res.ResolveAction(keymap.Command{Name: "session.quit"})
	if err != nil {
		t.Fatal(err)
	}
	passed()
	if next.ran[len(next.ran)-1] != "session.quit" {
		t.Errorf("non-lua command not passed through: %v", next.ran)
	}
}

func TestRuntime_RunWithoutResolver(t *testing.T) {
	r := newRuntime(t, config.Default())
	err := r.DoString(`tessera.run("seat.close")`)
	if err == nil || !strings.Contains(err.Error(), ErrNoDispatcher.Error()) {
		t.Errorf("DoString() error = %v, want no resolver", err)
	}
}

func TestEval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "init.lua")
	if err := os.WriteFile(path, []byte(`tessera.bind("Super+p", "exec.spawn fuzzel")`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	r, err := Eval(cfg, path)
	if err != nil {
		t.Fatalf("Eval() error = %v", err)
	}
	defer r.Close()
	if len(cfg.Bindings) != 1 {
		t.Errorf("Bindings = %v", cfg.Bindings)
	}

	if _, err := Eval(config.Default(), filepath.Join(dir, "missing.lua")); err == nil {
		t.Error("Eval() of a missing file should fail")
	}

	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.DoString("x = 1"); !errors.Is(err, ErrClosed) {
		t.Errorf("DoString() after Close = %v, want ErrClosed", err)
	}
}
