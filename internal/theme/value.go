package theme

import (
	"fmt"
	"strings"
)

// ValueKind tells how a rule value is produced.
type ValueKind int

const (
	// Literal is a concrete value such as "#1f2937".
	Literal ValueKind = iota
	// Reference points at another skin point's hook: var(--skin-hook).
	Reference
	// Inherit takes the parent skin point's value for the same hook.
	Inherit
)

func (k ValueKind) String() string {
	switch k {
	case Reference:
		return "reference"
	case Inherit:
		return "inherit"
	}
	return "literal"
}

// Ref names a hook on a skin point. An empty Skin means the referring skin
// point itself.
type Ref struct {
	Skin string
	Hook string
}

func (r Ref) String() string {
	if r.Skin == "" {
		return "--" + r.Hook
	}
	return "--" + r.Skin + "-" + r.Hook
}

// Value is the right-hand side of a rule.
type Value struct {
	Kind     ValueKind
	Literal  string
	Ref      Ref
	Fallback *Value // only for references
}

// Lit returns a literal value.
func Lit(s string) Value { return Value{Kind: Literal, Literal: s} }

// VarRef returns a reference to skin's hook.
func VarRef(skin, hook string) Value { return Value{Kind: Reference, Ref: Ref{Skin: skin, Hook: hook}} }

// ParseValue parses a declaration value: a literal, `inherit`, or
// `var(--skin-hook[, fallback])`. The skin/hook split is at the last dash,
// hook names never contain one.
func ParseValue(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{}, fmt.Errorf("%w: empty value", ErrInvalidValue)
	}
	if strings.EqualFold(s, "inherit") {
		return Value{Kind: Inherit}, nil
	}
	if !strings.HasPrefix(strings.ToLower(s), "var(") {
		return Lit(s), nil
	}
	if !strings.HasSuffix(s, ")") {
		return Value{}, fmt.Errorf("%w: unterminated %q", ErrInvalidValue, s)
	}

	inner := s[len("var(") : len(s)-1]
	name, fallback, hasFallback := splitTopLevelComma(inner)
	name = strings.TrimSpace(name)
	if !strings.HasPrefix(name, "--") || len(name) == 2 {
		return Value{}, fmt.Errorf("%w: %q is not a custom property", ErrInvalidValue, name)
	}
	ref := parseRef(name[2:])

	v := Value{Kind: Reference, Ref: ref}
	if hasFallback {
		fb, err := ParseValue(fallback)
		if err != nil {
			return Value{}, fmt.Errorf("fallback of %q: %w", s, err)
		}
		if fb.Kind == Inherit {
			return Value{}, fmt.Errorf("%w: inherit is not allowed as a fallback", ErrInvalidValue)
		}
		v.Fallback = &fb
	}
	return v, nil
}

func parseRef(name string) Ref {
	i := strings.LastIndexByte(name, '-')
	if i < 0 {
		return Ref{Hook: name}
	}
	return Ref{Skin: name[:i], Hook: name[i+1:]}
}

func splitTopLevelComma(s string) (head, tail string, ok bool) {
	depth := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

func (v Value) String() string {
	switch v.Kind {
	case Inherit:
		return "inherit"
	case Reference:
		if v.Fallback != nil {
			return "var(" + v.Ref.String() + ", " + v.Fallback.String() + ")"
		}
		return "var(" + v.Ref.String() + ")"
	}
	return v.Literal
}

// Target resolves an empty skin in the reference to self.
func (r Ref) Target(self string) Ref {
	if r.Skin == "" {
		r.Skin = self
	}
	return r
}
