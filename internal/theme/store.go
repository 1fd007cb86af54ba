package theme

import (
	"fmt"
	"slices"

	"go.uber.org/multierr"

	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/variant"
)

// Validator is an additional load-time check run against a fully built theme.
// It returns non-fatal warnings and a (possibly combined) error.
type Validator func(*Theme) (warnings []string, err error)

// Option configures a Store.
type Option func(*Store)

// WithValidator adds a load-time check.
func WithValidator(v Validator) Option {
	return func(s *Store) { s.validators = append(s.validators, v) }
}

// Store holds loaded themes and which one is active per scope. Like the
// registry it is owned by the UI thread and not locked.
type Store struct {
	vocab      *skin.Vocabulary
	variants   *variant.Resolver
	validators []Validator

	themes   map[string]*Theme
	order    []string
	active   string
	scopes   map[skin.InstanceID]string
	revision uint64
}

// NewStore creates an empty store validating against vocab. Custom variants
// declared by loaded themes are added on top of variants.
func NewStore(vocab *skin.Vocabulary, variants *variant.Resolver, opts ...Option) *Store {
	s := &Store{
		vocab:    vocab,
		variants: variants,
		themes:   make(map[string]*Theme),
		scopes:   make(map[skin.InstanceID]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Vocabulary returns the declared vocabulary themes are validated against.
func (s *Store) Vocabulary() *skin.Vocabulary { return s.vocab }

// Variants returns every variant declared so far, built-in, component and
// theme-declared.
func (s *Store) Variants() *variant.Resolver { return s.variants }

// LoadTheme validates def and stores it. Every problem found is reported in
// one combined error; on error nothing is stored. Loading an id again
// replaces the previous theme and bumps its revision, and themes extending it
// are merged again on top of the new rules.
func (s *Store) LoadTheme(def Definition) error {
	t, resolver, err := s.build(def)
	if err != nil {
		log.Warn(log.CatTheme, "Rejected theme", "theme", def.ID, "errors", len(multierr.Errors(err)))
		return fmt.Errorf("load theme %q: %w", def.ID, err)
	}

	_, reloaded := s.themes[t.id]
	s.store(t, resolver)
	if reloaded {
		s.remergeChildren(t.id)
	}
	return nil
}

func (s *Store) store(t *Theme, resolver *variant.Resolver) {
	s.revision++
	t.revision = s.revision
	if _, exists := s.themes[t.id]; !exists {
		s.order = append(s.order, t.id)
	}
	s.themes[t.id] = t
	s.variants = resolver

	log.Info(log.CatTheme, "Loaded theme", "theme", t.id, "rules", len(t.rules), "revision", t.revision, "warnings", len(t.warnings))
	for _, w := range t.warnings {
		log.Warn(log.CatTheme, w, "theme", t.id)
	}
}

// remergeChildren rebuilds every theme extending id from its own definition.
// A child that no longer validates against the new parent keeps its previous
// rules and is named in a warning.
func (s *Store) remergeChildren(id string) {
	for _, childID := range slices.Clone(s.order) {
		child := s.themes[childID]
		if child.parent != id {
			continue
		}
		t, resolver, err := s.build(child.def)
		if err != nil {
			log.Warn(log.CatTheme, "Child theme keeps stale parent rules", "theme", childID, "parent", id, "error", err)
			continue
		}
		s.store(t, resolver)
		s.remergeChildren(childID)
	}
}

func (s *Store) build(def Definition) (*Theme, *variant.Resolver, error) {
	if !skin.ValidIdentifier(def.ID) {
		return nil, nil, fmt.Errorf("%w: theme id %q", ErrInvalidValue, def.ID)
	}

	var parentRules []Rule
	if def.Extends != "" {
		parent, ok := s.themes[def.Extends]
		if !ok || def.Extends == def.ID {
			return nil, nil, fmt.Errorf("%w: %q extends %q", ErrUnknownTheme, def.ID, def.Extends)
		}
		for p := parent; p.parent != ""; p = s.themes[p.parent] {
			if p.parent == def.ID {
				return nil, nil, fmt.Errorf("%w: %q extends itself through %q", ErrCyclicReference, def.ID, p.id)
			}
		}
		parentRules = parent.rules
	}

	resolver, err := s.variants.Extend(def.Variants...)
	if err != nil {
		return nil, nil, err
	}

	var errs error
	for _, r := range def.Rules {
		errs = multierr.Append(errs, s.checkRule(r, resolver))
	}

	rules, err := mergeRules(parentRules, def.Rules)
	errs = multierr.Append(errs, err)
	if errs != nil {
		return nil, nil, errs
	}

	for _, c := range buildGraph(rules, s.vocab).cycles() {
		errs = multierr.Append(errs, cycleError(c))
	}
	if errs != nil {
		return nil, nil, errs
	}

	t := &Theme{
		id:       def.ID,
		parent:   def.Extends,
		def:      def,
		rules:    rules,
		index:    indexRules(rules),
		variants: resolver,
		sources:  slices.Clone(def.Sources),
		warnings: slices.Clone(def.Warnings),
	}
	for _, v := range s.validators {
		warnings, err := v(t)
		t.warnings = append(t.warnings, warnings...)
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return nil, nil, errs
	}
	return t, resolver, nil
}

func (s *Store) checkRule(r Rule, resolver *variant.Resolver) error {
	decl, err := s.vocab.Lookup(r.Skin)
	if err != nil {
		return fmt.Errorf("%w: skin %q at %s", ErrUnknownTarget, r.Skin, r.Where())
	}
	if !decl.Exposes(r.Hook) {
		return fmt.Errorf("%w: %q does not expose --%s at %s", ErrUnknownTarget, r.Skin, r.Hook, r.Where())
	}
	if err := resolver.Check(r.Variants); err != nil {
		return fmt.Errorf("%w at %s", err, r.Where())
	}

	var errs error
	for v := &r.Value; v != nil; v = v.Fallback {
		switch v.Kind {
		case Reference:
			ref := v.Ref.Target(r.Skin)
			d, err := s.vocab.Lookup(ref.Skin)
			if err != nil || !d.Exposes(ref.Hook) {
				errs = multierr.Append(errs, fmt.Errorf("%w: reference %s at %s", ErrUnknownTarget, v.Ref, r.Where()))
			}
		case Inherit:
			parent, err := s.vocab.Lookup(decl.Parent)
			if decl.IsRoot() || err != nil || !parent.Exposes(r.Hook) {
				errs = multierr.Append(errs, fmt.Errorf("%w: %q has no parent exposing --%s to inherit at %s", ErrUnknownTarget, r.Skin, r.Hook, r.Where()))
			}
		}
	}
	return errs
}

// Activate makes id the globally active theme.
func (s *Store) Activate(id string) error {
	if _, ok := s.themes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}
	s.active = id
	log.Info(log.CatTheme, "Activated theme", "theme", id)
	return nil
}

// ActivateScope makes id the active theme for the subtree rooted at scope.
func (s *Store) ActivateScope(scope skin.InstanceID, id string) error {
	if _, ok := s.themes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}
	s.scopes[scope] = id
	log.Info(log.CatTheme, "Activated scoped theme", "theme", id, "scope", scope)
	return nil
}

// ClearScope removes a subtree override.
func (s *Store) ClearScope(scope skin.InstanceID) {
	delete(s.scopes, scope)
}

// ScopeOf returns the theme activated directly on scope, if any.
func (s *Store) ScopeOf(scope skin.InstanceID) (string, bool) {
	id, ok := s.scopes[scope]
	return id, ok
}

// ThemeFor returns the theme governing an instance given its ancestor chain
// (root first). The nearest scoped override wins; otherwise the global theme.
func (s *Store) ThemeFor(chain []skin.InstanceID) (*Theme, error) {
	for i := len(chain) - 1; i >= 0; i-- {
		if id, ok := s.scopes[chain[i]]; ok {
			return s.themes[id], nil
		}
	}
	return s.Active()
}

// Active returns the globally active theme.
func (s *Store) Active() (*Theme, error) {
	if s.active == "" {
		return nil, ErrNoActiveTheme
	}
	return s.themes[s.active], nil
}

// ActiveID returns the globally active theme id, empty if none.
func (s *Store) ActiveID() string { return s.active }

// Theme returns a loaded theme by id.
func (s *Store) Theme(id string) (*Theme, error) {
	t, ok := s.themes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTheme, id)
	}
	return t, nil
}

// Themes returns the loaded themes in load order.
func (s *Store) Themes() []*Theme {
	out := make([]*Theme, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.themes[id])
	}
	return out
}

// Revision increases on every successful load.
func (s *Store) Revision() uint64 { return s.revision }
