// Package cascade computes the effective value of every hook of a skin point:
// an ancestor-ordered, variant-aware, last-declared-wins merge over the rules
// of a theme.
package cascade

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/multierr"

	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/variant"
)

var (
	// ErrCyclicReference is returned when a reference chain revisits a hook.
	ErrCyclicReference = theme.ErrCyclicReference
	// ErrUnresolvedVariable is returned when a hook has no value and no default.
	ErrUnresolvedVariable = theme.ErrUnresolvedVariable
)

// Evaluator resolves styles against the declared vocabulary. It holds no
// per-call state and may be shared.
type Evaluator struct {
	vocab *skin.Vocabulary
}

// New creates an evaluator over vocab.
func New(vocab *skin.Vocabulary) *Evaluator {
	return &Evaluator{vocab: vocab}
}

// Resolve computes the style of skinID under t with variants active. Hooks
// that fall back to the process-wide default add a warning to the style.
func (e *Evaluator) Resolve(t *theme.Theme, skinID string, variants variant.Set) (Style, error) {
	decl, err := e.vocab.Lookup(skinID)
	if err != nil {
		return Style{}, err
	}

	s := e.newStyle(t, decl, variants)
	var errs error
	for _, hook := range decl.Hooks {
		entry, warning, err := e.resolveHook(t, skinID, hook, variants)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if warning != "" {
			s.warnings = append(s.warnings, warning)
		}
		s.entries[hook] = entry
	}
	if errs != nil {
		return Style{}, errs
	}
	return s, nil
}

// ResolveVar resolves a single hook.
func (e *Evaluator) ResolveVar(t *theme.Theme, skinID, hook string, variants variant.Set) (Entry, error) {
	decl, err := e.vocab.Lookup(skinID)
	if err != nil {
		return Entry{}, err
	}
	if !decl.Exposes(hook) {
		return Entry{}, fmt.Errorf("%w: %q does not expose --%s", theme.ErrUnknownTarget, skinID, hook)
	}
	entry, _, err := e.resolveHook(t, skinID, hook, variants)
	return entry, err
}

// ResolveOrDefault is the render path: it never fails. Hooks that cannot be
// resolved get the process-wide default (or "") and the failure is logged.
func (e *Evaluator) ResolveOrDefault(t *theme.Theme, skinID string, variants variant.Set) Style {
	decl, err := e.vocab.Lookup(skinID)
	if err != nil {
		log.ErrorErr(log.CatCascade, "Resolve failed", err, "skin", skinID)
		return Style{skin: skinID, variants: variants, entries: map[string]Entry{}}
	}

	s := e.newStyle(t, decl, variants)
	for _, hook := range decl.Hooks {
		entry, warning, err := e.resolveHook(t, skinID, hook, variants)
		if err != nil {
			log.ErrorErr(log.CatCascade, "Resolve failed, using default", err, "skin", skinID, "hook", hook)
			h, _ := e.vocab.Hook(hook)
			entry = Entry{Hook: hook, Value: h.Default, Defaulted: true}
			s.warnings = append(s.warnings, err.Error())
		} else if warning != "" {
			s.warnings = append(s.warnings, warning)
		}
		s.entries[hook] = entry
	}
	return s
}

func (e *Evaluator) newStyle(t *theme.Theme, decl skin.Decl, variants variant.Set) Style {
	s := Style{
		skin:     decl.ID,
		variants: variants,
		hooks:    decl.Hooks,
		entries:  make(map[string]Entry, len(decl.Hooks)),
	}
	if t != nil {
		s.theme = t.ID()
		s.revision = t.Revision()
	}
	return s
}

func (e *Evaluator) resolveHook(t *theme.Theme, skinID, hook string, variants variant.Set) (Entry, string, error) {
	if t == nil {
		return Entry{}, "", theme.ErrNoActiveTheme
	}
	w := &walk{e: e, t: t, vars: variants}
	entry, ok, err := w.hook(skinID, hook)
	if err != nil {
		return Entry{}, "", err
	}
	if ok {
		return entry, "", nil
	}

	h, _ := e.vocab.Hook(hook)
	if h.Default == "" {
		return Entry{}, "", fmt.Errorf("%w: --%s on %q in theme %q with %s", ErrUnresolvedVariable, hook, skinID, t.ID(), variants)
	}
	warning := fmt.Sprintf("--%s on %q is not themed by %q for %s; using default %s", hook, skinID, t.ID(), variants, h.Default)
	log.Debug(log.CatCascade, "Using default", "skin", skinID, "hook", hook, "theme", t.ID(), "default", h.Default)
	return Entry{Hook: hook, Value: h.Default, Defaulted: true}, warning, nil
}

// walk is one resolution: the visited stack detects reference cycles.
type walk struct {
	e     *Evaluator
	t     *theme.Theme
	vars  variant.Set
	stack []theme.Ref
	rules int // rule values being resolved; the outermost one names itself in errors
}

// hook resolves (skinID, hook). The deepest defining point in the chain wins;
// ancestors are only consulted for hooks that inherit.
func (w *walk) hook(skinID, hook string) (Entry, bool, error) {
	ref := theme.Ref{Skin: skinID, Hook: hook}
	if i := slices.Index(w.stack, ref); i >= 0 {
		return Entry{}, false, fmt.Errorf("%w: %s", ErrCyclicReference, w.path(i, ref))
	}
	w.stack = append(w.stack, ref)
	defer func() { w.stack = w.stack[:len(w.stack)-1] }()

	r, ok := Select(w.t.RulesFor(skinID, hook), w.vars)
	if !ok {
		if h, _ := w.e.vocab.Hook(hook); !h.Inherits {
			return Entry{}, false, nil
		}
		decl, err := w.e.vocab.Lookup(skinID)
		if err != nil {
			return Entry{}, false, err
		}
		if decl.IsRoot() {
			return Entry{}, false, nil
		}
		return w.hook(decl.Parent, hook)
	}

	w.rules++
	value, found, err := w.value(r.Value, skinID, hook)
	w.rules--
	if err != nil {
		if w.rules == 0 {
			err = fmt.Errorf("%s at %s: %w", r, r.Where(), err)
		}
		return Entry{}, false, err
	}
	if !found {
		return Entry{}, false, nil
	}
	return Entry{Hook: hook, Value: value, From: skinID, Rule: r}, true, nil
}

func (w *walk) value(v theme.Value, at, hook string) (string, bool, error) {
	switch v.Kind {
	case theme.Literal:
		return v.Literal, true, nil
	case theme.Inherit:
		decl, err := w.e.vocab.Lookup(at)
		if err != nil || decl.IsRoot() {
			return "", false, nil
		}
		entry, ok, err := w.hook(decl.Parent, hook)
		return entry.Value, ok, err
	}

	target := v.Ref.Target(at)
	entry, ok, err := w.hook(target.Skin, target.Hook)
	if err != nil {
		return "", false, err
	}
	if !ok && v.Fallback != nil {
		return w.value(*v.Fallback, at, hook)
	}
	return entry.Value, ok, nil
}

// path renders the cycle that starts at w.stack[from] and closes on last.
func (w *walk) path(from int, last theme.Ref) string {
	var b strings.Builder
	for _, r := range w.stack[from:] {
		b.WriteString(r.String())
		b.WriteString(" -> ")
	}
	b.WriteString(last.String())
	return b.String()
}

// Select picks the winning rule among rules for one (skin, hook): the base
// rule is the starting value, then every variant rule whose set is contained
// in active overrides it in declaration order.
func Select(rules []theme.Rule, active variant.Set) (theme.Rule, bool) {
	var (
		winner theme.Rule
		found  bool
	)
	for _, r := range rules {
		if r.IsBase() {
			winner, found = r, true
			break
		}
	}
	for _, r := range rules {
		if !r.IsBase() && r.Variants.SubsetOf(active) {
			winner, found = r, true
		}
	}
	return winner, found
}
