package baseline

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/variant"
)

// Sets returns the variant sets a capture covers: the base set plus every
// variant the theme knows on its own.
func Sets(th *theme.Theme) []variant.Set {
	sets := []variant.Set{variant.NewSet()}
	if th.Variants() == nil {
		return sets
	}
	for _, name := range th.Variants().Names() {
		sets = append(sets, variant.NewSet(name))
	}
	return sets
}

// Capture resolves every exposed hook of every declared skin point under
// each of sets. Entries come back ordered by skin, hook and variant set.
func Capture(eval *cascade.Evaluator, vocab *skin.Vocabulary, th *theme.Theme, sets []variant.Set) []Entry {
	var out []Entry
	for _, decl := range vocab.Decls() {
		for _, vs := range sets {
			style := eval.ResolveOrDefault(th, decl.ID, vs)
			for _, hook := range style.Hooks() {
				e, _ := style.Entry(hook)
				entry := Entry{Skin: decl.ID, Hook: hook, Variants: vs.Key(), Value: e.Value}
				if !e.Defaulted && e.Rule.Source != "" {
					entry.Origin = fmt.Sprintf("%s:%d", e.Rule.Source, e.Rule.Line)
				}
				out = append(out, entry)
			}
		}
	}
	slices.SortFunc(out, compareEntries)
	return out
}

func compareEntries(a, b Entry) int {
	switch {
	case a.Skin != b.Skin:
		return strings.Compare(a.Skin, b.Skin)
	case a.Hook != b.Hook:
		return strings.Compare(a.Hook, b.Hook)
	}
	return strings.Compare(a.Variants, b.Variants)
}
