package variant

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Built-in variant names.
const (
	Hover    = "hover"
	Active   = "active"
	Focus    = "focus"
	Disabled = "disabled"
)

var builtins = []string{Active, Disabled, Focus, Hover}

// Builtins returns the built-in variant names.
func Builtins() []string { return slices.Clone(builtins) }

// IsBuiltin reports whether name is a built-in variant.
func IsBuiltin(name string) bool { return slices.Contains(builtins, name) }

var (
	// ErrUnknownVariant is returned when a rule names a variant nobody declared.
	ErrUnknownVariant = errors.New("unknown variant")
	// ErrDuplicateVariant is returned when a variant name is declared twice with
	// different conditions.
	ErrDuplicateVariant = errors.New("duplicate variant")
	// ErrInvalidVariant is returned for malformed declarations.
	ErrInvalidVariant = errors.New("invalid variant")
)

var namePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// Block is one level of a long-form variant declaration. Selector narrows the
// condition; Slot marks where the variant's rules are injected.
type Block struct {
	Selector string
	Slot     bool
	Children []Block
}

// Declaration declares a custom variant. Exactly one of Selector (short form)
// or Blocks (long form) is set.
type Declaration struct {
	Name     string
	Selector string
	Blocks   []Block
}

// Compile turns the declaration into a predicate.
func (d Declaration) Compile() (Predicate, error) {
	switch {
	case d.Selector != "" && len(d.Blocks) > 0:
		return nil, fmt.Errorf("%w %q: both short and long form given", ErrInvalidVariant, d.Name)
	case d.Selector != "":
		return ParseSelector(d.Selector)
	case len(d.Blocks) > 0:
		var alts anyOf
		for _, b := range d.Blocks {
			if err := compileBlock(b, nil, &alts); err != nil {
				return nil, fmt.Errorf("variant %q: %w", d.Name, err)
			}
		}
		switch len(alts) {
		case 0:
			return nil, fmt.Errorf("%w %q: long form has no @slot", ErrInvalidVariant, d.Name)
		case 1:
			return alts[0], nil
		}
		return alts, nil
	}
	return nil, fmt.Errorf("%w %q: empty declaration", ErrInvalidVariant, d.Name)
}

// compileBlock walks the nested blocks; each path ending in a slot becomes the
// conjunction of every selector on the way down.
func compileBlock(b Block, path allOf, out *anyOf) error {
	if strings.TrimSpace(b.Selector) != "" {
		pred, err := ParseSelector(b.Selector)
		if err != nil {
			return err
		}
		path = append(slices.Clip(path), pred)
	}
	if b.Slot {
		if len(path) == 0 {
			return fmt.Errorf("%w: @slot outside any selector", ErrInvalidVariant)
		}
		if len(path) == 1 {
			*out = append(*out, path[0])
		} else {
			*out = append(*out, slices.Clone(path))
		}
	}
	for _, c := range b.Children {
		if err := compileBlock(c, path, out); err != nil {
			return err
		}
	}
	return nil
}

// Resolver evaluates which variants are active for an element. It is
// immutable once constructed.
type Resolver struct {
	preds map[string]Predicate
	names []string
}

// NewResolver builds a resolver with the built-ins plus decls.
func NewResolver(decls ...Declaration) (*Resolver, error) {
	r := &Resolver{preds: make(map[string]Predicate, len(builtins)+len(decls))}
	for _, b := range builtins {
		r.preds[b] = pseudo(b)
	}
	if err := r.add(decls); err != nil {
		return nil, err
	}
	r.sortNames()
	return r, nil
}

// Extend returns a new resolver with decls added. Redeclaring an existing
// custom variant with an identical condition is allowed.
func (r *Resolver) Extend(decls ...Declaration) (*Resolver, error) {
	next := &Resolver{preds: make(map[string]Predicate, len(r.preds)+len(decls))}
	for k, v := range r.preds {
		next.preds[k] = v
	}
	if err := next.add(decls); err != nil {
		return nil, err
	}
	next.sortNames()
	return next, nil
}

func (r *Resolver) add(decls []Declaration) error {
	for _, d := range decls {
		if !namePattern.MatchString(d.Name) {
			return fmt.Errorf("%w: name %q", ErrInvalidVariant, d.Name)
		}
		pred, err := d.Compile()
		if err != nil {
			return err
		}
		if existing, ok := r.preds[d.Name]; ok {
			if IsBuiltin(d.Name) || existing.String() != pred.String() {
				return fmt.Errorf("%w: %q", ErrDuplicateVariant, d.Name)
			}
			continue
		}
		r.preds[d.Name] = pred
	}
	return nil
}

func (r *Resolver) sortNames() {
	r.names = make([]string, 0, len(r.preds))
	for n := range r.preds {
		r.names = append(r.names, n)
	}
	slices.Sort(r.names)
}

// ActiveVariants evaluates every declared variant against state.
func (r *Resolver) ActiveVariants(state ElementState) Set {
	var active []string
	for _, n := range r.names {
		if r.preds[n].Match(state) {
			active = append(active, n)
		}
	}
	// names are already sorted and unique
	return Set{names: active}
}

// Has reports whether name is declared.
func (r *Resolver) Has(name string) bool {
	_, ok := r.preds[name]
	return ok
}

// Names returns every declared variant name, sorted.
func (r *Resolver) Names() []string { return slices.Clone(r.names) }

// Predicate returns the compiled condition for name.
func (r *Resolver) Predicate(name string) (Predicate, bool) {
	p, ok := r.preds[name]
	return p, ok
}

// Check returns ErrUnknownVariant for the first undeclared name in s.
func (r *Resolver) Check(s Set) error {
	for _, n := range s.names {
		if !r.Has(n) {
			return fmt.Errorf("%w: %q", ErrUnknownVariant, n)
		}
	}
	return nil
}
