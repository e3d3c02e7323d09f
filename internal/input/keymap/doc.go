// Package keymap resolves key presses to compositor actions.
//
// A Registry holds bindings indexed by key. Each binding either requires an
// exact modifier set or is masked: it fires when its modifier subset is
// contained in whatever the user is holding.
//
// # Resolution
//
// For a press of key k with modifiers m:
//  1. An exact binding for (k, m) wins outright.
//  2. Otherwise the masked binding for k whose subset is the largest subset
//     of m fires. Ties go to the binding registered first.
//  3. Otherwise the press is dropped.
//
// Registering a second binding for the same (key, modifiers, mode) replaces
// the first. The replacement takes the newest registration position, the
// registry logs a warning and records a Conflict.
//
// # Usage
//
//	reg := keymap.NewRegistry(keymap.WithLogger(log))
//	reg.Bind("Super+Shift+q", "session.quit", quit)
//	reg.BindMasked("XF86AudioMute", "exec.spawn wpctl", mute)
//
//	reg.Dispatch(key.Key('q'), key.ModSuper|key.ModShift)
//
// A Registry is owned by a single event loop goroutine and is not safe for
// concurrent use.
package keymap
