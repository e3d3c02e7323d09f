// Package config loads tessera's configuration.
//
// Configuration comes from, in increasing priority:
//
//	┌─────────────────────────────┐
//	│  4. Lua init script         │  ← script = "init.lua"
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← TESSERA_STATUS_PERIOD, ...
//	├─────────────────────────────┤
//	│  2. Config file             │  ← ~/.config/tessera/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// The file may be TOML (the default) or YAML, chosen by extension. Absent
// keys keep their defaults. Bindings from the file are registered after the
// built-in ones, so a file binding for the same keys replaces the default
// unless replace_bindings drops the defaults altogether.
//
// # Example
//
//	[status]
//	period = "5s"
//	format = "%Y-%m-%d %H:%M"
//
//	[input]
//	repeat_rate = 60
//	repeat_delay = 250
//
//	[profiles.laptop]
//	gfx_api = "vulkan"
//	keymap = "it"
//
//	[[bindings]]
//	keys = "Super+Return"
//	action = "exec.spawn"
//	args = ["footclient"]
//
//	[[bindings]]
//	keys = "Super+Shift+r"
//	actions = [
//	    { action = "exec.spawn", args = ["notify", "tessera", "Reloading config"] },
//	    { action = "session.reload" },
//	]
//
// The Lua script is evaluated by the script subpackage; the file watcher for
// live reload lives in the watcher subpackage.
package config
