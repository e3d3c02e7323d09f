package config

import (
	"fmt"

	"github.com/dshills/tessera/internal/compositor"
)

// DefaultProfileName is the profile used when no entry matches the host.
const DefaultProfileName = "default"

// DefaultProfiles returns the built-in host profiles.
func DefaultProfiles() map[string]ProfileConfig {
	return map[string]ProfileConfig{
		"dtopPC2":          {GfxAPI: compositor.OpenGL, Keymap: "us"},
		DefaultProfileName: {GfxAPI: compositor.Vulkan, Keymap: "it"},
	}
}

func bind(keys, action string, args ...string) BindingConfig {
	return BindingConfig{Keys: keys, Action: action, Args: args}
}

func spawn(keys, program string, args ...string) BindingConfig {
	return BindingConfig{Keys: keys, Action: "exec.spawn", Args: append([]string{program}, args...)}
}

func masked(keys, program string, args ...string) BindingConfig {
	b := spawn(keys, program, args...)
	b.Masked = true
	return b
}

// DefaultBindings returns the built-in binding table.
func DefaultBindings() []BindingConfig {
	b := []BindingConfig{
		bind("Super+Shift+q", "session.quit"),
		{
			Keys: "Super+Shift+r",
			Actions: []ActionConfig{
				{Action: "exec.spawn", Args: []string{"notify", "tessera", "Reloading config"}},
				{Action: "session.reload"},
			},
		},
		bind("Super+q", "seat.close"),

		bind("Super+h", "seat.focus", "left"),
		bind("Super+l", "seat.focus", "right"),
		bind("Super+j", "seat.focus", "down"),
		bind("Super+k", "seat.focus", "up"),
		bind("Super+Shift+h", "seat.move", "left"),
		bind("Super+Shift+l", "seat.move", "right"),
		bind("Super+Shift+j", "seat.move", "down"),
		bind("Super+Shift+k", "seat.move", "up"),

		bind("Super+f", "seat.fullscreen"),
		bind("Super+s", "seat.split", "horizontal"),
		bind("Super+v", "seat.split", "vertical"),
	}

	for i := 1; i <= 9; i++ {
		b = append(b, bind(fmt.Sprintf("Ctrl+Alt+F%d", i), "session.vt", fmt.Sprint(i)))
	}
	for i := 1; i <= 9; i++ {
		id := fmt.Sprint(i)
		b = append(b,
			bind("Super+"+id, "workspace.show", id),
			bind("Super+Shift+"+id, "workspace.set", id),
		)
	}
	b = append(b, bind("Super+Tab", "workspace.toggle"))

	b = append(b,
		masked("XF86AudioLowerVolume", "wpctl", "set-volume", "-l", "1.5", "@DEFAULT_AUDIO_SINK@", "2%-"),
		masked("XF86AudioRaiseVolume", "wpctl", "set-volume", "-l", "1.5", "@DEFAULT_AUDIO_SINK@", "2%+"),
		masked("XF86AudioMute", "wpctl", "set-mute", "@DEFAULT_AUDIO_SINK@", "toggle"),

		spawn("Super+p", "fuzzel"),
		spawn("Super+Shift+Return", "footclient"),
		spawn("Super+Ctrl+a", "dmenuplaylist"),
		spawn("Super+Ctrl+b", "firefox"),
		spawn("Super+Ctrl+f", "footclient", "lf"),
		spawn("Super+Ctrl+m", "start_torrserver", "-n", "9090", ".local/state/mpv/torrserver"),
		spawn("Super+Ctrl+n", "dmenuumount"),
		spawn("Super+Ctrl+r", "mangareader.py"),
		spawn("Super+Ctrl+t", "dmenutorrent"),
		spawn("Super+Ctrl+x", "dmenupower"),
	)
	return b
}
