package variant

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSet_Basics(t *testing.T) {
	s := NewSet("hover", " disabled", "hover", "")
	require.Equal(t, []string{"disabled", "hover"}, s.Names())
	require.Equal(t, "disabled+hover", s.Key())
	require.Equal(t, "{disabled, hover}", s.String())
	require.True(t, s.Contains("hover"))
	require.False(t, s.Contains("focus"))

	require.True(t, NewSet("hover").SubsetOf(s))
	require.False(t, s.SubsetOf(NewSet("hover")))
	require.True(t, Set{}.SubsetOf(s))
	require.True(t, s.Equal(NewSet("hover", "disabled")))
	require.Equal(t, "{}", Set{}.String())
	require.Equal(t, []string{"disabled", "focus", "hover"}, s.Union(NewSet("focus")).Names())
}

func TestParseSelector(t *testing.T) {
	selected := ElementState{}.WithAttr("aria-selected", "true")

	tests := []struct {
		name     string
		selector string
		state    ElementState
		want     bool
	}{
		{"attr equals quoted", `&[aria-selected="true"]`, selected, true},
		{"attr equals ident", `&[aria-selected=true]`, selected, true},
		{"attr equals mismatch", `&[aria-selected="false"]`, selected, false},
		{"attr present", `&[aria-selected]`, selected, true},
		{"attr absent", `&[data-open]`, selected, false},
		{"no ampersand", `[aria-selected="true"]`, selected, true},
		{"pseudo", `&:hover`, ElementState{Hovered: true}, true},
		{"compound needs both", `&:hover[aria-selected="true"]`, selected, false},
		{"compound", `&:hover[aria-selected="true"]`, ElementState{Hovered: true}.WithAttr("aria-selected", "true"), true},
		{"list", `&:focus, &[aria-selected="true"]`, selected, true},
		{"not", `&:not(:disabled)`, ElementState{}, true},
		{"not disabled", `&:not(:disabled)`, ElementState{Disabled: true}, false},
		{"enabled", `&:enabled`, ElementState{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseSelector(tt.selector)
			require.NoError(t, err)
			require.Equal(t, tt.want, p.Match(tt.state))
		})
	}
}

func TestParseSelector_Rejects(t *testing.T) {
	for _, sel := range []string{
		``,
		`&[aria-selected~="true"]`,
		`&:first-child`,
		`& .child`,
		`&:is(:hover)`,
		`&[`,
		`div`,
	} {
		t.Run(sel, func(t *testing.T) {
			_, err := ParseSelector(sel)
			require.ErrorIs(t, err, ErrInvalidSelector)
		})
	}
}

func TestResolver_BuiltinsAndMultiple(t *testing.T) {
	r, err := NewResolver()
	require.NoError(t, err)

	got := r.ActiveVariants(ElementState{Hovered: true, Disabled: true})
	require.Equal(t, []string{Disabled, Hover}, got.Names())
	require.True(t, r.ActiveVariants(ElementState{}).Empty())
}

func TestResolver_ShortAndLongFormAgree(t *testing.T) {
	short, err := NewResolver(Declaration{Name: "selected", Selector: `&[aria-selected="true"]`})
	require.NoError(t, err)
	long, err := NewResolver(Declaration{Name: "selected", Blocks: []Block{
		{Selector: `&[aria-selected="true"]`, Slot: true},
	}})
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		state := drawState(rt)
		a := short.ActiveVariants(state)
		b := long.ActiveVariants(state)
		if !a.Equal(b) {
			rt.Fatalf("short %v != long %v for %+v", a, b, state)
		}
	})
}

func TestResolver_LongFormNesting(t *testing.T) {
	r, err := NewResolver(Declaration{Name: "picked", Blocks: []Block{
		{Selector: `&[aria-selected="true"]`, Children: []Block{
			{Selector: `&:not(:disabled)`, Slot: true},
		}},
		{Selector: `&[data-state="checked"]`, Slot: true},
	}})
	require.NoError(t, err)

	sel := ElementState{}.WithAttr("aria-selected", "true")
	require.True(t, r.ActiveVariants(sel).Contains("picked"))

	sel.Disabled = true
	require.False(t, r.ActiveVariants(sel).Contains("picked"))

	checked := ElementState{Disabled: true}.WithAttr("data-state", "checked")
	require.True(t, r.ActiveVariants(checked).Contains("picked"))
}

func TestResolver_DeclarationErrors(t *testing.T) {
	tests := []struct {
		name string
		decl Declaration
		err  error
	}{
		{"builtin redefined", Declaration{Name: Hover, Selector: `&[data-hover]`}, ErrDuplicateVariant},
		{"bad name", Declaration{Name: "Selected", Selector: `&[x]`}, ErrInvalidVariant},
		{"empty", Declaration{Name: "open"}, ErrInvalidVariant},
		{"both forms", Declaration{Name: "open", Selector: `&[x]`, Blocks: []Block{{Selector: `&[x]`, Slot: true}}}, ErrInvalidVariant},
		{"no slot", Declaration{Name: "open", Blocks: []Block{{Selector: `&[x]`}}}, ErrInvalidVariant},
		{"bad selector", Declaration{Name: "open", Selector: `&::before`}, ErrInvalidSelector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewResolver(tt.decl)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestResolver_ExtendIsImmutable(t *testing.T) {
	base, err := NewResolver(Declaration{Name: "selected", Selector: `&[aria-selected="true"]`})
	require.NoError(t, err)

	ext, err := base.Extend(
		Declaration{Name: "selected", Selector: `&[aria-selected="true"]`},
		Declaration{Name: "open", Selector: `&[data-state="open"]`},
	)
	require.NoError(t, err)
	require.True(t, ext.Has("open"))
	require.False(t, base.Has("open"))

	_, err = base.Extend(Declaration{Name: "selected", Selector: `&[aria-checked="true"]`})
	require.ErrorIs(t, err, ErrDuplicateVariant)

	require.NoError(t, ext.Check(NewSet("open", "hover")))
	require.ErrorIs(t, base.Check(NewSet("open")), ErrUnknownVariant)
}

// TestResolver_Deterministic checks that evaluation is a pure function of the
// element state.
func TestResolver_Deterministic(t *testing.T) {
	r, err := NewResolver(
		Declaration{Name: "selected", Selector: `&[aria-selected="true"]`},
		Declaration{Name: "open", Selector: `&[data-state="open"]`},
	)
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		state := drawState(rt)
		first := r.ActiveVariants(state)
		second := r.ActiveVariants(state)
		if !first.Equal(second) {
			rt.Fatalf("non-deterministic: %v vs %v", first, second)
		}
		if first.Contains(Hover) != state.Hovered || first.Contains(Disabled) != state.Disabled {
			rt.Fatalf("built-ins disagree with state: %v for %+v", first, state)
		}
	})
}

func drawState(rt *rapid.T) ElementState {
	s := ElementState{
		Hovered:  rapid.Bool().Draw(rt, "hovered"),
		Pressed:  rapid.Bool().Draw(rt, "pressed"),
		Focused:  rapid.Bool().Draw(rt, "focused"),
		Disabled: rapid.Bool().Draw(rt, "disabled"),
	}
	if rapid.Bool().Draw(rt, "has-selected") {
		s = s.WithAttr("aria-selected", rapid.SampledFrom([]string{"true", "false", ""}).Draw(rt, "selected"))
	}
	if rapid.Bool().Draw(rt, "has-state") {
		s = s.WithAttr("data-state", rapid.SampledFrom([]string{"open", "closed"}).Draw(rt, "state"))
	}
	return s
}
