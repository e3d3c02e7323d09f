// Package compositor defines the surfaces the configuration core drives:
// the seat, the session lifecycle and the events a backend delivers.
//
// The core never talks to a display server directly. Backends implement
// these interfaces; headless and terminal backends ship with tessera.
package compositor

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/tessera/internal/input/device"
	"github.com/dshills/tessera/internal/input/key"
	"github.com/dshills/tessera/internal/workspace"
)

// ErrUnsupported is returned by operations a backend cannot perform.
var ErrUnsupported = errors.New("operation not supported by backend")

// Direction is a focus or move direction.
type Direction int

const (
	Left Direction = iota
	Down
	Up
	Right
)

var directionNames = []string{"left", "down", "up", "right"}

// String returns the direction name.
func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// ParseDirection parses "left", "down", "up" or "right". Vim letters
// h, j, k and l are accepted as well.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "h":
		return Left, nil
	case "down", "j":
		return Down, nil
	case "up", "k":
		return Up, nil
	case "right", "l":
		return Right, nil
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}

// Axis is the orientation of a new split container.
type Axis int

const (
	Horizontal Axis = iota
	Vertical
)

// String returns the axis name.
func (a Axis) String() string {
	switch a {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// ParseAxis parses "horizontal" or "vertical" (or "h"/"v").
func ParseAxis(s string) (Axis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "horizontal", "h":
		return Horizontal, nil
	case "vertical", "v":
		return Vertical, nil
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// GfxAPI selects the rendering API.
type GfxAPI int

const (
	OpenGL GfxAPI = iota
	Vulkan
)

// String returns the API name.
func (g GfxAPI) String() string {
	switch g {
	case OpenGL:
		return "opengl"
	case Vulkan:
		return "vulkan"
	default:
		return fmt.Sprintf("GfxAPI(%d)", int(g))
	}
}

// ParseGfxAPI parses "opengl" (or "gl") and "vulkan" (or "vk").
func ParseGfxAPI(s string) (GfxAPI, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "opengl", "gl":
		return OpenGL, nil
	case "vulkan", "vk":
		return Vulkan, nil
	}
	return 0, fmt.Errorf("unknown graphics API %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (g GfxAPI) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GfxAPI) UnmarshalText(b []byte) error {
	v, err := ParseGfxAPI(string(b))
	if err != nil {
		return err
	}
	*g = v
	return nil
}

// Seat is the per-seat action surface.
type Seat interface {
	workspace.Display

	// Name identifies the seat, e.g. "default".
	Name() string

	Focus(dir Direction)
	Move(dir Direction)
	ToggleFullscreen()
	CreateSplit(axis Axis)
	Close()

	// SetKeymap selects the keyboard layout by name.
	SetKeymap(layout string) error
	SetRepeatRate(rate, delay int)
	SetFocusFollowsMouse(enabled bool)
}

// Session is the compositor lifecycle surface.
type Session interface {
	// SwitchVT activates virtual terminal n (1-based).
	SwitchVT(n int) error

	// SetGfxAPI selects the rendering API used from the next frame.
	SetGfxAPI(api GfxAPI) error
}

// Events receives what a backend observes. Implementations must not block
// the backend for long.
type Events interface {
	KeyPressed(ev key.Event)
	DeviceAdded(dev device.Device)
	GraphicsReady()
}
