package cascade

import (
	"maps"
	"slices"

	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/variant"
)

// Entry is the resolved value of one hook plus where it came from.
type Entry struct {
	Hook      string
	Value     string
	From      string     // skin point whose rule won; empty when defaulted
	Rule      theme.Rule // winning rule at From
	Defaulted bool       // process-wide default used
}

// Style is an immutable snapshot of every exposed hook of one skin point
// under one theme and variant set.
type Style struct {
	theme    string
	revision uint64
	skin     string
	variants variant.Set
	hooks    []string
	entries  map[string]Entry
	warnings []string
}

// Theme returns the id of the theme the style was computed from.
func (s Style) Theme() string { return s.theme }

// Revision returns the theme revision the style was computed from.
func (s Style) Revision() uint64 { return s.revision }

// Skin returns the skin identifier.
func (s Style) Skin() string { return s.skin }

// Variants returns the active variant set used.
func (s Style) Variants() variant.Set { return s.variants }

// Hooks returns the exposed hooks in declaration order.
func (s Style) Hooks() []string { return slices.Clone(s.hooks) }

// Get returns the value for hook.
func (s Style) Get(hook string) (string, bool) {
	e, ok := s.entries[hook]
	return e.Value, ok
}

// Value returns the value for hook or "".
func (s Style) Value(hook string) string {
	return s.entries[hook].Value
}

// Entry returns the full resolution record for hook.
func (s Style) Entry(hook string) (Entry, bool) {
	e, ok := s.entries[hook]
	return e, ok
}

// Values returns a copy of the hook -> value map.
func (s Style) Values() map[string]string {
	out := make(map[string]string, len(s.entries))
	for h, e := range s.entries {
		out[h] = e.Value
	}
	return out
}

// Warnings returns non-fatal diagnostics, such as defaulted hooks.
func (s Style) Warnings() []string { return slices.Clone(s.warnings) }

// IsZero reports whether the style is the zero value.
func (s Style) IsZero() bool { return s.skin == "" }

// Equal reports whether both styles carry the same values for the same
// skin, theme and variant set.
func (s Style) Equal(o Style) bool {
	return s.theme == o.theme &&
		s.revision == o.revision &&
		s.skin == o.skin &&
		s.variants.Equal(o.variants) &&
		slices.Equal(s.hooks, o.hooks) &&
		maps.EqualFunc(s.entries, o.entries, func(a, b Entry) bool {
			return a.Value == b.Value && a.From == b.From && a.Defaulted == b.Defaulted && a.Rule.Seq == b.Rule.Seq
		})
}
