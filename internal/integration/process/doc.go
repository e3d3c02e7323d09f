// Package process launches programs on behalf of key bindings and startup
// hooks.
//
// Launches are fire-and-forget: the child runs in its own session, is never
// signalled by the compositor, and its exit is only observed so it can be
// reaped and logged.
//
//	l := process.NewLauncher(process.WithFailureHandler(func(f process.Failure) {
//	    failures <- f
//	}))
//	defer l.Close()
//
//	l.Spawn("footclient")
//	l.Spawn("wpctl", "set-mute", "@DEFAULT_AUDIO_SINK@", "toggle")
//
// A failed start is returned by Spawn and also reported to the failure
// handler, so callers that drop the error still get it surfaced.
package process
