package config

import (
	"github.com/dshills/tessera/internal/compositor"
)

// Profile is the host-specific setup, resolved once at startup.
type Profile struct {
	Name   string
	GfxAPI compositor.GfxAPI
	Keymap string
}

// ResolveProfile returns the profile named host, falling back to the
// "default" entry and then to the built-in default profile.
func (c *Config) ResolveProfile(host string) Profile {
	if p, ok := c.Profiles[host]; ok {
		return Profile{Name: host, GfxAPI: p.GfxAPI, Keymap: p.Keymap}
	}
	if p, ok := c.Profiles[DefaultProfileName]; ok {
		return Profile{Name: DefaultProfileName, GfxAPI: p.GfxAPI, Keymap: p.Keymap}
	}
	p := DefaultProfiles()[DefaultProfileName]
	return Profile{Name: DefaultProfileName, GfxAPI: p.GfxAPI, Keymap: p.Keymap}
}
