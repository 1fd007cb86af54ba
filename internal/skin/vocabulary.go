package skin

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/zjrosen/skins/internal/log"
)

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// Decl is a declared skin point: the structural description a component type
// contributes, independent of any mounted instance.
type Decl struct {
	ID     string
	Parent string   // empty for a component root
	Hooks  []string // ordered, drawn from the hook vocabulary
}

// IsRoot reports whether the declaration is a component root.
func (d Decl) IsRoot() bool { return d.Parent == "" }

// Exposes reports whether the skin point exposes hook.
func (d Decl) Exposes(hook string) bool { return slices.Contains(d.Hooks, hook) }

// ValidIdentifier reports whether id is dash-joined lowercase segments.
func ValidIdentifier(id string) bool { return identPattern.MatchString(id) }

// ExtendsParent reports whether child follows the ancestor-prefix rule for parent.
func ExtendsParent(child, parent string) bool {
	return strings.HasPrefix(child, parent+"-")
}

// Vocabulary is the declared, process-wide structure themes are validated
// against: every known skin point plus the hook table.
type Vocabulary struct {
	decls map[string]Decl
	order []string
	hooks map[string]Hook
}

// NewVocabulary returns a vocabulary with the fixed hook table and no skin points.
func NewVocabulary() *Vocabulary {
	hooks := make(map[string]Hook)
	for _, name := range AllHooks() {
		hooks[name] = Hook{Name: name}
	}
	return &Vocabulary{
		decls: make(map[string]Decl),
		hooks: hooks,
	}
}

// Declare adds skin point declarations. Parents must be declared before (or
// earlier in the same call than) their children. The call is atomic: on error
// nothing is added.
func (v *Vocabulary) Declare(decls ...Decl) error {
	staged := make(map[string]Decl, len(decls))
	for _, d := range decls {
		if !ValidIdentifier(d.ID) {
			return fmt.Errorf("%w: %q", ErrInvalidIdentifier, d.ID)
		}
		if _, ok := v.decls[d.ID]; ok {
			return fmt.Errorf("%w: %q already declared", ErrDuplicateIdentifier, d.ID)
		}
		if _, ok := staged[d.ID]; ok {
			return fmt.Errorf("%w: %q declared twice", ErrDuplicateIdentifier, d.ID)
		}
		if d.Parent != "" {
			_, known := v.decls[d.Parent]
			_, stagedParent := staged[d.Parent]
			if !known && !stagedParent {
				return fmt.Errorf("%w: parent %q of %q", ErrUnknownSkin, d.Parent, d.ID)
			}
			if !ExtendsParent(d.ID, d.Parent) {
				return fmt.Errorf("%w: %q under %q", ErrPrefixViolation, d.ID, d.Parent)
			}
		}
		seen := make(map[string]bool, len(d.Hooks))
		for _, h := range d.Hooks {
			if !IsHook(h) {
				return fmt.Errorf("%w: %q on %q", ErrUnknownHook, h, d.ID)
			}
			if seen[h] {
				return fmt.Errorf("%w: %q listed twice on %q", ErrUnknownHook, h, d.ID)
			}
			seen[h] = true
		}
		d.Hooks = slices.Clone(d.Hooks)
		staged[d.ID] = d
	}

	for _, d := range decls {
		v.decls[d.ID] = staged[d.ID]
		v.order = append(v.order, d.ID)
		log.Debug(log.CatRegistry, "Declared skin point", "skin", d.ID, "parent", d.Parent, "hooks", d.Hooks)
	}
	return nil
}

// Lookup returns the declaration for id or ErrUnknownSkin.
func (v *Vocabulary) Lookup(id string) (Decl, error) {
	d, ok := v.decls[id]
	if !ok {
		return Decl{}, fmt.Errorf("%w: %q", ErrUnknownSkin, id)
	}
	return d, nil
}

// Has reports whether id is declared.
func (v *Vocabulary) Has(id string) bool {
	_, ok := v.decls[id]
	return ok
}

// Decls returns all declarations in declaration order.
func (v *Vocabulary) Decls() []Decl {
	out := make([]Decl, 0, len(v.order))
	for _, id := range v.order {
		out = append(out, v.decls[id])
	}
	return out
}

// Chain returns the ancestor chain of id ordered root first, id last.
func (v *Vocabulary) Chain(id string) ([]Decl, error) {
	d, err := v.Lookup(id)
	if err != nil {
		return nil, err
	}
	chain := []Decl{d}
	for d.Parent != "" {
		d = v.decls[d.Parent]
		chain = append(chain, d)
	}
	slices.Reverse(chain)
	return chain, nil
}

// Hook returns the hook vocabulary entry for name.
func (v *Vocabulary) Hook(name string) (Hook, bool) {
	h, ok := v.hooks[name]
	return h, ok
}

// HasHook reports whether name is in the hook vocabulary.
func (v *Vocabulary) HasHook(name string) bool {
	_, ok := v.hooks[name]
	return ok
}

// SetDefault sets the process-wide default value for hook.
func (v *Vocabulary) SetDefault(hook, value string) error {
	h, ok := v.hooks[hook]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownHook, hook)
	}
	h.Default = value
	v.hooks[hook] = h
	return nil
}

// SetInherits switches ancestor fallback on or off for hook.
func (v *Vocabulary) SetInherits(hook string, inherits bool) error {
	h, ok := v.hooks[hook]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownHook, hook)
	}
	h.Inherits = inherits
	v.hooks[hook] = h
	return nil
}
