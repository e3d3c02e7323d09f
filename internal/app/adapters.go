package app

import (
	"context"

	"github.com/dshills/tessera/internal/action"
	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/input/device"
	"github.com/dshills/tessera/internal/input/key"
)

// Compile-time interface checks.
var (
	_ compositor.Events = (*loopEvents)(nil)
	_ action.Lifecycle  = loopLifecycle{}
)

// loopEvents forwards backend events into the loop. Each call blocks until
// the loop takes the event or ctx is done.
type loopEvents struct {
	app *Application
	ctx context.Context
}

func (e *loopEvents) KeyPressed(ev key.Event) {
	select {
	case e.app.keys <- ev:
	case <-e.ctx.Done():
	}
}

func (e *loopEvents) DeviceAdded(dev device.Device) {
	select {
	case e.app.attached <- dev:
	case <-e.ctx.Done():
	}
}

func (e *loopEvents) GraphicsReady() {
	select {
	case e.app.ready <- struct{}{}:
	case <-e.ctx.Done():
	}
}
