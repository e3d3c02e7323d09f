package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/tessera/internal/compositor"
	"github.com/dshills/tessera/internal/input/device"
	"github.com/dshills/tessera/internal/input/keymap"
	"github.com/dshills/tessera/internal/status"
	"github.com/dshills/tessera/internal/workspace"
)

// Config is the complete configuration.
type Config struct {
	Status    StatusConfig             `toml:"status" yaml:"status"`
	Input     InputConfig              `toml:"input" yaml:"input"`
	Workspace WorkspaceConfig          `toml:"workspace" yaml:"workspace"`
	Profiles  map[string]ProfileConfig `toml:"profiles" yaml:"profiles"`

	// Bindings are registered after the built-in defaults.
	Bindings []BindingConfig `toml:"bindings" yaml:"bindings"`

	// ReplaceBindings drops the built-in bindings.
	ReplaceBindings bool `toml:"replace_bindings" yaml:"replace_bindings"`

	// Startup commands run once when graphics are ready.
	Startup []CommandConfig `toml:"startup" yaml:"startup"`

	// Script is a Lua file evaluated after the file is loaded.
	// Relative paths are resolved against the config file's directory.
	Script string `toml:"script" yaml:"script"`

	// Source is the file the configuration was loaded from, if any.
	Source string `toml:"-" yaml:"-"`
}

// StatusConfig configures the status clock.
type StatusConfig struct {
	Period Duration `toml:"period" yaml:"period"`
	Format string   `toml:"format" yaml:"format"`
}

// Schedule converts the section to a status schedule.
func (s StatusConfig) Schedule() status.Config {
	return status.Config{Period: s.Period.Duration, Format: s.Format}
}

// InputConfig configures the seat and input devices.
type InputConfig struct {
	RepeatRate        int  `toml:"repeat_rate" yaml:"repeat_rate"`
	RepeatDelay       int  `toml:"repeat_delay" yaml:"repeat_delay"`
	NaturalScrolling  bool `toml:"natural_scrolling" yaml:"natural_scrolling"`
	TapToClick        bool `toml:"tap_to_click" yaml:"tap_to_click"`
	FocusFollowsMouse bool `toml:"focus_follows_mouse" yaml:"focus_follows_mouse"`
}

// DeviceDefaults returns the per-device settings.
func (i InputConfig) DeviceDefaults() device.Defaults {
	return device.Defaults{NaturalScrolling: i.NaturalScrolling, TapToClick: i.TapToClick}
}

// WorkspaceConfig configures workspace navigation.
type WorkspaceConfig struct {
	// Default is the workspace each seat starts on.
	Default string `toml:"default" yaml:"default"`
}

// ProfileConfig is a host-specific profile entry.
type ProfileConfig struct {
	GfxAPI compositor.GfxAPI `toml:"gfx_api" yaml:"gfx_api"`
	Keymap string            `toml:"keymap" yaml:"keymap"`
}

// ActionConfig names an action and its arguments.
type ActionConfig struct {
	Action string   `toml:"action" yaml:"action"`
	Args   []string `toml:"args" yaml:"args"`
}

// Command converts the entry. An action written with inline arguments,
// such as "workspace.show 3", is split on whitespace when Args is empty.
func (a ActionConfig) Command() keymap.Command {
	if len(a.Args) == 0 {
		fields := strings.Fields(a.Action)
		if len(fields) > 1 {
			return keymap.Command{Name: fields[0], Args: fields[1:]}
		}
	}
	return keymap.Command{Name: strings.TrimSpace(a.Action), Args: a.Args}
}

// BindingConfig is one [[bindings]] entry.
// Either Action (with Args) or Actions is set; Action runs first when both are.
type BindingConfig struct {
	Keys    string         `toml:"keys" yaml:"keys"`
	Masked  bool           `toml:"masked" yaml:"masked"`
	Action  string         `toml:"action" yaml:"action"`
	Args    []string       `toml:"args" yaml:"args"`
	Actions []ActionConfig `toml:"actions" yaml:"actions"`
}

// Spec converts the entry to a keymap specification.
func (b BindingConfig) Spec() keymap.Spec {
	spec := keymap.Spec{Keys: b.Keys, Masked: b.Masked}
	if b.Action != "" {
		spec.Commands = append(spec.Commands, ActionConfig{Action: b.Action, Args: b.Args}.Command())
	}
	for _, a := range b.Actions {
		spec.Commands = append(spec.Commands, a.Command())
	}
	return spec
}

// CommandConfig is a program launched by the compositor.
type CommandConfig struct {
	Program string   `toml:"program" yaml:"program"`
	Args    []string `toml:"args" yaml:"args"`
}

// Duration is a time.Duration written as a string like "5s".
// A bare number is read as seconds.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		d.Duration = time.Duration(n * float64(time.Second))
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Status: StatusConfig{
			Period: Duration{status.DefaultPeriod},
			Format: status.DefaultFormat,
		},
		Input: InputConfig{
			RepeatRate:        60,
			RepeatDelay:       250,
			NaturalScrolling:  true,
			TapToClick:        true,
			FocusFollowsMouse: true,
		},
		Workspace: WorkspaceConfig{Default: string(workspace.DefaultID)},
		Profiles:  DefaultProfiles(),
		Startup: []CommandConfig{
			{Program: "foot", Args: []string{"--server"}},
		},
	}
}

// AllBindings returns the bindings to register, defaults first.
func (c *Config) AllBindings() []BindingConfig {
	if c.ReplaceBindings {
		out := make([]BindingConfig, len(c.Bindings))
		copy(out, c.Bindings)
		return out
	}
	defaults := DefaultBindings()
	out := make([]BindingConfig, 0, len(defaults)+len(c.Bindings))
	out = append(out, defaults...)
	return append(out, c.Bindings...)
}

// Specs converts AllBindings to keymap specifications.
func (c *Config) Specs() []keymap.Spec {
	all := c.AllBindings()
	specs := make([]keymap.Spec, len(all))
	for i, b := range all {
		specs[i] = b.Spec()
	}
	return specs
}

// Validate checks value ranges. Binding entries are checked when they are
// loaded into a registry, where bad entries are skipped rather than fatal.
func (c *Config) Validate() error {
	var errs []error

	if c.Status.Period.Duration < time.Second {
		errs = append(errs, &ValidationError{
			Path:    "status.period",
			Message: "must be at least 1s",
			Value:   c.Status.Period.Duration,
			Code:    ErrCodeOutOfRange,
		})
	}
	if strings.TrimSpace(c.Status.Format) == "" {
		errs = append(errs, &ValidationError{
			Path:    "status.format",
			Message: "must not be empty",
			Value:   c.Status.Format,
			Code:    ErrCodeRequiredMissing,
		})
	}
	if c.Input.RepeatRate < 0 || c.Input.RepeatRate > 1000 {
		errs = append(errs, &ValidationError{
			Path:    "input.repeat_rate",
			Message: "must be between 0 and 1000",
			Value:   c.Input.RepeatRate,
			Code:    ErrCodeOutOfRange,
		})
	}
	if c.Input.RepeatDelay < 0 || c.Input.RepeatDelay > 10000 {
		errs = append(errs, &ValidationError{
			Path:    "input.repeat_delay",
			Message: "must be between 0 and 10000",
			Value:   c.Input.RepeatDelay,
			Code:    ErrCodeOutOfRange,
		})
	}
	if strings.TrimSpace(c.Workspace.Default) == "" {
		errs = append(errs, &ValidationError{
			Path:    "workspace.default",
			Message: "must not be empty",
			Value:   c.Workspace.Default,
			Code:    ErrCodeRequiredMissing,
		})
	}
	for name, p := range c.Profiles {
		if p.GfxAPI != compositor.OpenGL && p.GfxAPI != compositor.Vulkan {
			errs = append(errs, &ValidationError{
				Path:    "profiles." + name + ".gfx_api",
				Message: "must be opengl or vulkan",
				Value:   p.GfxAPI,
				Code:    ErrCodeInvalidEnum,
			})
		}
	}
	for i, s := range c.Startup {
		if strings.TrimSpace(s.Program) == "" {
			errs = append(errs, &ValidationError{
				Path:    fmt.Sprintf("startup[%d].program", i),
				Message: "must not be empty",
				Value:   s.Program,
				Code:    ErrCodeRequiredMissing,
			})
		}
	}

	return errors.Join(errs...)
}
