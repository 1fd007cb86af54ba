package variant

import (
	"fmt"
	"maps"
	"strings"
)

// ElementState is the observable state of one element at one instant.
type ElementState struct {
	Hovered  bool // pointer currently over the element
	Pressed  bool // pointer held down on the element
	Focused  bool // element has keyboard focus
	Disabled bool
	Attrs    map[string]string
}

// Attr returns the attribute value and whether it is present.
func (s ElementState) Attr(name string) (string, bool) {
	v, ok := s.Attrs[name]
	return v, ok
}

// WithAttr returns a copy of s with name set to value.
func (s ElementState) WithAttr(name, value string) ElementState {
	attrs := make(map[string]string, len(s.Attrs)+1)
	maps.Copy(attrs, s.Attrs)
	attrs[name] = value
	s.Attrs = attrs
	return s
}

// WithoutAttr returns a copy of s without name.
func (s ElementState) WithoutAttr(name string) ElementState {
	if _, ok := s.Attrs[name]; !ok {
		return s
	}
	attrs := maps.Clone(s.Attrs)
	delete(attrs, name)
	s.Attrs = attrs
	return s
}

// Predicate is a pure, side-effect free condition over element state.
type Predicate interface {
	Match(ElementState) bool
	String() string
}

type pseudo string

func (p pseudo) Match(s ElementState) bool {
	switch string(p) {
	case Hover:
		return s.Hovered
	case Active:
		return s.Pressed
	case Focus:
		return s.Focused
	case Disabled:
		return s.Disabled
	case "enabled":
		return !s.Disabled
	}
	return false
}

func (p pseudo) String() string { return "&:" + string(p) }

type attrEquals struct{ name, value string }

func (a attrEquals) Match(s ElementState) bool {
	v, ok := s.Attr(a.name)
	return ok && v == a.value
}

func (a attrEquals) String() string { return fmt.Sprintf("&[%s=%q]", a.name, a.value) }

type attrPresent struct{ name string }

func (a attrPresent) Match(s ElementState) bool {
	_, ok := s.Attr(a.name)
	return ok
}

func (a attrPresent) String() string { return "&[" + a.name + "]" }

type allOf []Predicate

func (a allOf) Match(s ElementState) bool {
	for _, p := range a {
		if !p.Match(s) {
			return false
		}
	}
	return true
}

func (a allOf) String() string {
	parts := make([]string, len(a))
	for i, p := range a {
		parts[i] = strings.TrimPrefix(p.String(), "&")
	}
	return "&" + strings.Join(parts, "")
}

type anyOf []Predicate

func (a anyOf) Match(s ElementState) bool {
	for _, p := range a {
		if p.Match(s) {
			return true
		}
	}
	return false
}

func (a anyOf) String() string {
	parts := make([]string, len(a))
	for i, p := range a {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

type not struct{ inner Predicate }

func (n not) Match(s ElementState) bool { return !n.inner.Match(s) }

func (n not) String() string { return "&:not(" + n.inner.String() + ")" }

// AttrEquals returns the short-form predicate `&[name="value"]`.
func AttrEquals(name, value string) Predicate { return attrEquals{name: name, value: value} }
