// Package key provides key event types and parsing for the input system.
//
// This package defines the fundamental types for representing keyboard input:
//
//   - Key: Identifies a keyboard key by its X keysym, independent of modifiers
//   - Modifier: The set of held modifier keys (Shift, Ctrl, Alt, Super)
//   - Event: A single key press with modifiers and timestamp
//
// # Key Specifications
//
// Bindings are written as modifiers joined to a key name with "+":
//
//   - Simple keys: "q", "1", "Return", "Tab", "F1"
//   - With modifiers: "Super+q", "Super+Shift+Return", "Ctrl+Alt+F2"
//   - Media keys: "XF86AudioMute", "XF86AudioRaiseVolume"
//
// Letter keys are always lowercase keysyms. An uppercase letter in a
// specification ("Super+Q") is read as the lowercase key with Shift held.
package key
