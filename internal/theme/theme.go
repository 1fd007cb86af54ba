// Package theme holds loaded themes: ordered skin rules keyed by skin point,
// hook and variant set, plus the store that validates and activates them.
package theme

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/zjrosen/skins/internal/variant"
)

// Rule assigns a value to one hook of one skin point, optionally only while a
// set of variants is active.
type Rule struct {
	Skin     string
	Hook     string
	Variants variant.Set // empty = base rule
	Value    Value

	Source string // file or origin the rule came from
	Line   int    // 0 when unknown
	Seq    int    // position in the theme's global declaration order
}

// IsBase reports whether the rule applies without any variant.
func (r Rule) IsBase() bool { return r.Variants.Empty() }

func (r Rule) key() ruleKey { return ruleKey{r.Skin, r.Hook, r.Variants.Key()} }

func (r Rule) String() string {
	sel := r.Skin + "." + r.Hook
	if !r.IsBase() {
		sel += "[" + r.Variants.Key() + "]"
	}
	return sel + " = " + r.Value.String()
}

// Where formats the rule's origin for error messages.
func (r Rule) Where() string {
	if r.Line > 0 {
		return fmt.Sprintf("%s:%d", r.Source, r.Line)
	}
	if r.Source != "" {
		return r.Source
	}
	return "<inline>"
}

type ruleKey struct {
	skin, hook, variants string
}

type target struct {
	skin, hook string
}

// Definition is an unvalidated theme as produced by a loader. Rules are in
// global declaration order across every imported source.
type Definition struct {
	ID       string
	Extends  string
	Variants []variant.Declaration
	Rules    []Rule
	Sources  []string // every file that contributed, in import order
	Warnings []string
}

// Theme is an immutable, compiled theme.
type Theme struct {
	id       string
	parent   string
	rules    []Rule
	index    map[target][]Rule
	variants *variant.Resolver
	sources  []string
	warnings []string
	revision uint64
	def      Definition // kept to merge again when the parent reloads
}

// ID returns the theme identifier.
func (t *Theme) ID() string { return t.id }

// Parent returns the id of the theme this one extends, if any.
func (t *Theme) Parent() string { return t.parent }

// Rules returns the effective rules in declaration order, inherited parent
// rules first.
func (t *Theme) Rules() []Rule { return slices.Clone(t.rules) }

// RulesFor returns every rule for (skin, hook) in declaration order.
func (t *Theme) RulesFor(skin, hook string) []Rule {
	return t.index[target{skin, hook}]
}

// Defines reports whether any rule targets (skin, hook).
func (t *Theme) Defines(skin, hook string) bool {
	return len(t.index[target{skin, hook}]) > 0
}

// Variants returns the variant resolver the theme was validated with.
func (t *Theme) Variants() *variant.Resolver { return t.variants }

// Sources returns the files that contributed rules.
func (t *Theme) Sources() []string { return slices.Clone(t.sources) }

// Warnings returns non-fatal load diagnostics.
func (t *Theme) Warnings() []string { return slices.Clone(t.warnings) }

// Revision changes every time a theme with this id is (re)loaded.
func (t *Theme) Revision() uint64 { return t.revision }

// mergeRules flattens parent and own rules into one ordered list. Within a
// source a repeated triple is a definition error; across sources (and from a
// parent theme) the later rule replaces the earlier one and takes its later
// position.
func mergeRules(parent []Rule, own []Rule) ([]Rule, error) {
	merged := slices.Clone(parent)
	dead := make([]bool, len(merged), len(merged)+len(own))
	pos := make(map[ruleKey]int, len(merged)+len(own))
	for i, r := range merged {
		pos[r.key()] = i
	}
	ownSource := make(map[ruleKey]Rule, len(own))

	var errs error
	for _, r := range own {
		k := r.key()
		if prev, dup := ownSource[k]; dup && prev.Source == r.Source {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s at %s, first defined at %s", ErrDuplicateRule, r, r.Where(), prev.Where()))
			continue
		}
		ownSource[k] = r
		if i, ok := pos[k]; ok {
			dead[i] = true
		}
		pos[k] = len(merged)
		merged = append(merged, r)
		dead = append(dead, false)
	}
	if errs != nil {
		return nil, errs
	}

	out := make([]Rule, 0, len(merged))
	for i, r := range merged {
		if dead[i] {
			continue
		}
		r.Seq = len(out)
		out = append(out, r)
	}
	return out, nil
}

func indexRules(rules []Rule) map[target][]Rule {
	idx := make(map[target][]Rule)
	for _, r := range rules {
		k := target{r.Skin, r.Hook}
		idx[k] = append(idx[k], r)
	}
	return idx
}

// Compile builds a theme from def on top of parent (may be nil) without
// checking it against any vocabulary. Store.LoadTheme is the validated path;
// Compile serves tools that inspect definitions as written.
func Compile(def Definition, parent *Theme) (*Theme, error) {
	var parentRules []Rule
	if parent != nil {
		parentRules = parent.rules
	}
	rules, err := mergeRules(parentRules, def.Rules)
	if err != nil {
		return nil, err
	}
	return &Theme{
		id:       def.ID,
		parent:   def.Extends,
		rules:    rules,
		index:    indexRules(rules),
		sources:  slices.Clone(def.Sources),
		warnings: slices.Clone(def.Warnings),
	}, nil
}
