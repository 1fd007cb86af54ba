package components

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/engine"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/themefile"
	"github.com/zjrosen/skins/internal/variant"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	vocab, err := NewVocabulary()
	require.NoError(t, err)
	resolver, err := NewResolver()
	require.NoError(t, err)
	eval := cascade.New(vocab)
	store := theme.NewStore(vocab, resolver, theme.WithValidator(eval.Completeness(true)))
	e := engine.New(skin.NewRegistry(vocab), store, engine.Options{})
	t.Cleanup(e.Close)

	ctx := context.Background()
	defs, err := themefile.New(ThemesFS()).LoadAll(ctx, ".")
	require.NoError(t, err)
	for _, def := range defs {
		require.NoError(t, e.LoadTheme(ctx, def), def.ID)
	}
	require.NoError(t, e.Activate("light"))
	return e
}

func TestBuiltinThemes(t *testing.T) {
	require.Equal(t, []string{"dark", "light"}, BuiltinThemes())

	e := newEngine(t)
	for _, th := range e.Store().Themes() {
		require.Empty(t, th.Warnings(), th.ID())
		require.Len(t, th.Sources(), 4, "index plus one file per component")
	}
	require.True(t, e.Store().Variants().Has("outlined"), "theme-declared variant")
	require.True(t, e.Store().Variants().Has(VariantSelected))
}

func TestDecls_FollowPrefixRule(t *testing.T) {
	for _, d := range Decls() {
		require.True(t, skin.ValidIdentifier(d.ID), d.ID)
		if !d.IsRoot() {
			require.True(t, skin.ExtendsParent(d.ID, d.Parent), d.ID)
		}
	}
}

func TestButton_States(t *testing.T) {
	e := newEngine(t)
	require.NoError(t, e.Activate("dark"))

	b, err := MountButton(e, "", ButtonConfig{Label: "Save"})
	require.NoError(t, err)
	require.Equal(t, SizeMedium, b.Config().Size)
	require.Equal(t, "#000000", b.Style().Value("bg"))

	require.NoError(t, b.SetHovered(true))
	require.Equal(t, "#1f2937", b.Style().Value("bg"))

	require.NoError(t, b.SetDisabled(true))
	require.Equal(t, "#4b5563", b.Style().Value("bg"), "disabled is declared after hover")

	require.NoError(t, b.SetPressed(true))
	require.Equal(t, "#4b5563", b.Style().Value("bg"), "disabled buttons ignore presses")

	require.NoError(t, b.SetDisabled(false))
	require.NoError(t, b.SetFocused(true))
	require.Equal(t, "#38bdf8", b.Style().Value("border"), "focus border follows the ring")

	require.NoError(t, b.Unmount())
	require.Zero(t, e.Registry().Len())
}

func TestButton_InvalidSize(t *testing.T) {
	e := newEngine(t)
	_, err := MountButton(e, "", ButtonConfig{Size: "xl"})
	require.Error(t, err)
	require.Zero(t, e.Registry().Len())
}

func TestButton_ThemeSwitchKeepsHover(t *testing.T) {
	e := newEngine(t)
	b, err := MountButton(e, "", ButtonConfig{Label: "Go"})
	require.NoError(t, err)
	require.NoError(t, b.SetHovered(true))
	require.Equal(t, "#f3f4f6", b.Style().Value("bg"))

	require.NoError(t, e.Activate("dark"))
	require.Equal(t, "#1f2937", b.Style().Value("bg"))
}

func TestSearchBar_ChildOverridesParent(t *testing.T) {
	e := newEngine(t)
	sb, err := MountSearchBar(e, "", SearchBarConfig{Placeholder: "Search"})
	require.NoError(t, err)

	require.Equal(t, "#111827", sb.Style().Value("text"))
	require.Equal(t, "#6b7280", sb.IconStyle().Value("text"))
	require.Equal(t, "#111827", sb.InputStyle().Value("text"), "input references the bar text")
	require.Equal(t, "#9ca3af", sb.InputStyle().Value("placeholder"))

	require.NoError(t, sb.SetFocused(true))
	require.Equal(t, "#2563eb", sb.Style().Value("border"))
	require.Equal(t, "#2563eb", sb.IconStyle().Value("text"))

	sb.SetQuery("tokens")
	require.Equal(t, "tokens", sb.Query())
}

func TestSearchBar_OutlineVariant(t *testing.T) {
	e := newEngine(t)
	sb, err := MountSearchBar(e, "", SearchBarConfig{Variant: SearchBarOutline})
	require.NoError(t, err)
	require.Equal(t, "transparent", sb.Style().Value("bg"))
	require.Equal(t, "#6b7280", sb.Style().Value("border"))

	require.NoError(t, e.Activate("dark"))
	require.Equal(t, "#9ca3af", sb.Style().Value("border"), "long-form declaration in dark")

	_, err = MountSearchBar(e, "", SearchBarConfig{Variant: "ghost"})
	require.Error(t, err)
}

func TestSearchBar_ScopedTheme(t *testing.T) {
	e := newEngine(t)
	a, err := MountSearchBar(e, "", SearchBarConfig{})
	require.NoError(t, err)
	b, err := MountSearchBar(e, "", SearchBarConfig{})
	require.NoError(t, err)

	require.NoError(t, e.ActivateScope(a.ID(), "dark"))
	require.Equal(t, "#9ca3af", a.IconStyle().Value("text"))
	require.Equal(t, "#6b7280", b.IconStyle().Value("text"))
}

func TestDropdown_Selection(t *testing.T) {
	e := newEngine(t)
	var changes []string
	d, err := MountDropdown(e, "", DropdownConfig{
		Options:  []Option{{"Alpha", "a"}, {"Beta", "b"}, {"Gamma", "c"}},
		Value:    "a",
		OnChange: func(v string) { changes = append(changes, v) },
	})
	require.NoError(t, err)
	require.Equal(t, "Alpha", d.Label())
	require.False(t, d.IsOpen())

	require.NoError(t, d.Toggle())
	require.True(t, d.IsOpen())
	require.Equal(t, 0, d.Cursor())

	d.Move(1)
	require.Equal(t, 1, d.Cursor())
	d.Move(10)
	require.Equal(t, 2, d.Cursor())
	d.Move(-1)

	require.NoError(t, d.SelectCursor())
	require.Equal(t, "b", d.Value())
	require.False(t, d.IsOpen())
	require.Equal(t, []string{"b"}, changes)

	require.NoError(t, d.Select("b"))
	require.Equal(t, []string{"b"}, changes, "unchanged value does not notify")

	require.ErrorIs(t, d.Select("z"), ErrUnknownOption)
	require.Equal(t, "b", d.Value())
}

func TestDropdown_OptionStyles(t *testing.T) {
	e := newEngine(t)
	d, err := MountDropdown(e, "", DropdownConfig{
		Options: []Option{{"Alpha", "a"}, {"Beta", "b"}},
		Value:   "b",
	})
	require.NoError(t, err)

	plain, err := d.OptionStyle(0)
	require.NoError(t, err)
	require.Equal(t, "#ffffff", plain.Value("bg"), "references the menu background")

	selected, err := d.OptionStyle(1)
	require.NoError(t, err)
	require.Equal(t, "#dbeafe", selected.Value("bg"))
	require.Equal(t, "#1e40af", selected.Value("text"))

	require.NoError(t, d.Open())
	d.Move(-1)
	hovered, err := d.OptionStyle(0)
	require.NoError(t, err)
	require.Equal(t, "#f3f4f6", hovered.Value("bg"))

	d.Move(1)
	both, err := d.OptionStyle(1)
	require.NoError(t, err)
	require.Equal(t, "#dbeafe", both.Value("bg"), "selected is declared after hover")

	_, err = d.OptionStyle(5)
	require.Error(t, err)
}

func TestDropdown_MenuKeepsItsOwnState(t *testing.T) {
	e := newEngine(t)
	d, err := MountDropdown(e, "", DropdownConfig{Options: []Option{{"Alpha", "a"}}})
	require.NoError(t, err)

	require.NoError(t, d.Open())
	require.NoError(t, d.SetHovered(true))
	require.NoError(t, d.SetFocused(true))

	require.True(t, e.Variants(d.root).Contains(variant.Hover))
	require.True(t, e.Variants(d.icon).Contains(variant.Focus), "the icon is part of the trigger")

	menu := e.State(d.menu)
	require.False(t, menu.Hovered)
	require.False(t, menu.Focused)
	require.Equal(t, attrTrue, menu.Attrs[AttrExpanded])
	require.False(t, e.Variants(d.menu).Contains(variant.Hover))
	require.False(t, e.Variants(d.menu).Contains(variant.Focus))

	require.NoError(t, d.Close())
	require.Equal(t, attrFalse, e.State(d.menu).Attrs[AttrExpanded])
}

func TestDropdown_MountErrors(t *testing.T) {
	e := newEngine(t)
	_, err := MountDropdown(e, "", DropdownConfig{Options: []Option{{"A", "a"}}, Value: "x"})
	require.ErrorIs(t, err, ErrUnknownOption)

	_, err = MountDropdown(e, "", DropdownConfig{Options: []Option{{"A", "a"}, {"B", "a"}}})
	require.Error(t, err)
	require.Zero(t, e.Registry().Len())
}

func TestDropdown_UnmountRemovesChildren(t *testing.T) {
	e := newEngine(t)
	d, err := MountDropdown(e, "", DropdownConfig{Options: []Option{{"A", "a"}}})
	require.NoError(t, err)
	require.Equal(t, 4, e.Registry().Len())
	require.NoError(t, d.Unmount())
	require.Zero(t, e.Registry().Len())
}
