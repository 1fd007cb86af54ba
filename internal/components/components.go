// Package components holds the three example components (Button, SearchBar,
// Dropdown), their skin point declarations and the built-in themes.
package components

import (
	"embed"
	"io/fs"

	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/variant"
)

// Skin identifiers.
const (
	SkinButton = "button"

	SkinSearchBar      = "searchbar"
	SkinSearchBarIcon  = "searchbar-icon"
	SkinSearchBarInput = "searchbar-input"

	SkinDropdown       = "dropdown"
	SkinDropdownIcon   = "dropdown-icon"
	SkinDropdownMenu   = "dropdown-menu"
	SkinDropdownOption = "dropdown-option"
)

// VariantSelected is active on the dropdown option whose aria-selected
// attribute is "true".
const VariantSelected = "selected"

// Element attributes the components set.
const (
	AttrSize     = "data-size"
	AttrVariant  = "data-variant"
	AttrSelected = "aria-selected"
	AttrExpanded = "aria-expanded"
	attrTrue     = "true"
	attrFalse    = "false"
)

var controlHooks = []string{skin.HookBg, skin.HookText, skin.HookBorder, skin.HookRing}

// Decls returns the skin points of every component, parents first.
func Decls() []skin.Decl {
	return []skin.Decl{
		{ID: SkinButton, Hooks: controlHooks},

		{ID: SkinSearchBar, Hooks: controlHooks},
		{ID: SkinSearchBarIcon, Parent: SkinSearchBar, Hooks: []string{skin.HookText}},
		{ID: SkinSearchBarInput, Parent: SkinSearchBar, Hooks: []string{skin.HookText, skin.HookPlaceholder}},

		{ID: SkinDropdown, Hooks: controlHooks},
		{ID: SkinDropdownIcon, Parent: SkinDropdown, Hooks: []string{skin.HookText}},
		{ID: SkinDropdownMenu, Parent: SkinDropdown, Hooks: []string{skin.HookBg, skin.HookBorder}},
		{ID: SkinDropdownOption, Parent: SkinDropdown, Hooks: []string{skin.HookBg, skin.HookText}},
	}
}

// Declare adds every component skin point to vocab.
func Declare(vocab *skin.Vocabulary) error {
	return vocab.Declare(Decls()...)
}

// Variants returns the custom variants the components rely on.
func Variants() []variant.Declaration {
	return []variant.Declaration{
		{Name: VariantSelected, Selector: `&[aria-selected="true"]`},
	}
}

// NewVocabulary returns a vocabulary holding every component skin point.
func NewVocabulary() (*skin.Vocabulary, error) {
	vocab := skin.NewVocabulary()
	if err := Declare(vocab); err != nil {
		return nil, err
	}
	return vocab, nil
}

// NewResolver returns a variant resolver with the built-ins, the component
// variants and extra.
func NewResolver(extra ...variant.Declaration) (*variant.Resolver, error) {
	return variant.NewResolver(append(Variants(), extra...)...)
}

// builtinThemes embeds the shipped themes. Each theme is a directory with an
// index.css importing one file per component:
//   - themes/<theme>/index.css
//   - themes/<theme>/<component>.css
//
//go:embed themes
var builtinThemes embed.FS

// ThemesFS returns the built-in themes with the "themes/" prefix removed.
func ThemesFS() fs.FS {
	sub, err := fs.Sub(builtinThemes, "themes")
	if err != nil {
		panic(err) // the directory is embedded above
	}
	return sub
}

// BuiltinThemes lists the shipped theme directories.
func BuiltinThemes() []string {
	entries, _ := fs.ReadDir(builtinThemes, "themes")
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out
}
