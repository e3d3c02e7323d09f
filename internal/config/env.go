package config

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TESSERA_"

// ErrUnknownSetting is returned by Set for a path with no scalar setting.
var ErrUnknownSetting = errors.New("unknown setting")

// LookupFunc reads an environment variable. os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// setter applies a textual value to one setting.
type setter func(c *Config, value string) error

// setters maps scalar setting paths to their setters.
var setters = map[string]setter{
	"status.period": func(c *Config, v string) error {
		return c.Status.Period.UnmarshalText([]byte(v))
	},
	"status.format": func(c *Config, v string) error {
		c.Status.Format = v
		return nil
	},
	"workspace.default": func(c *Config, v string) error {
		c.Workspace.Default = strings.TrimSpace(v)
		return nil
	},
	"input.repeat_rate": func(c *Config, v string) error {
		return setInt(&c.Input.RepeatRate, v)
	},
	"input.repeat_delay": func(c *Config, v string) error {
		return setInt(&c.Input.RepeatDelay, v)
	},
	"input.natural_scrolling": func(c *Config, v string) error {
		return setBool(&c.Input.NaturalScrolling, v)
	},
	"input.tap_to_click": func(c *Config, v string) error {
		return setBool(&c.Input.TapToClick, v)
	},
	"input.focus_follows_mouse": func(c *Config, v string) error {
		return setBool(&c.Input.FocusFollowsMouse, v)
	},
}

// Settings returns the scalar setting paths accepted by Set, sorted.
func Settings() []string {
	paths := make([]string, 0, len(setters))
	for p := range setters {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// EnvName converts a setting path to its environment variable,
// e.g. "input.repeat_rate" to TESSERA_INPUT_REPEAT_RATE.
func EnvName(path string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

// Set assigns a scalar setting from its textual form.
func (c *Config) Set(path, value string) error {
	set, ok := setters[path]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSetting, path)
	}
	if err := set(c, value); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides settings from environment variables. Every malformed
// value is reported; well-formed ones are still applied.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		return nil
	}
	var errs []error
	for _, path := range Settings() {
		name := EnvName(path)
		v, ok := lookup(name)
		if !ok {
			continue
		}
		if err := setters[path](c, v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid integer %q", v)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	default:
		return fmt.Errorf("invalid boolean %q", v)
	}
	return nil
}
