// Package flags provides feature flag support for controlled feature rollout.
// Flags are read-only after initialization and provide safe defaults for unknown flags.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/skins/internal/log"
)

const (
	// FlagStrictDefaults makes a hook that would fall back to its process-wide
	// default a load error instead of a warning.
	FlagStrictDefaults = "strict-defaults"

	// FlagResolveCache memoizes resolved styles per theme revision, skin and
	// variant set.
	FlagResolveCache = "resolve-cache"
)

// Flag describes one known flag.
type Flag struct {
	Name        string
	Description string
	Default     bool
}

var known = []Flag{
	{FlagResolveCache, "memoize resolved styles", true},
	{FlagStrictDefaults, "fail theme loads that leave a hook on its default", false},
}

// Known returns the flags skins understands, ordered by name.
func Known() []Flag { return slices.Clone(known) }

// IsKnown reports whether name is a known flag.
func IsKnown(name string) bool {
	return slices.ContainsFunc(known, func(f Flag) bool { return f.Name == name })
}

// Defaults returns the flag values used when the configuration names none.
func Defaults() map[string]bool {
	out := make(map[string]bool, len(known))
	for _, f := range known {
		out[f.Name] = f.Default
	}
	return out
}

// Registry holds feature flag state loaded from configuration.
type Registry struct {
	flags map[string]bool
}

// New creates a Registry from a config map. Known flags missing from it keep
// their defaults; a nil map therefore gives the defaults.
func New(values map[string]bool) *Registry {
	r := &Registry{flags: Defaults()}
	maps.Copy(r.flags, values)
	log.Debug(log.CatConfig, "Feature flags initialized", "enabled", r.Enabled())
	return r
}

// On returns true if the named flag is on. Unknown flags and a nil registry
// report false.
func (r *Registry) On(name string) bool {
	if r == nil {
		return false
	}
	if !IsKnown(name) {
		log.Debug(log.CatConfig, "Unknown flag accessed", "flag", name)
	}
	return r.flags[name]
}

// Enabled returns the names of the flags that are on, sorted.
func (r *Registry) Enabled() []string {
	if r == nil {
		return nil
	}
	var out []string
	for name, on := range r.flags {
		if on {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}
