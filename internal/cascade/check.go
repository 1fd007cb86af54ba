package cascade

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/variant"
)

// Completeness returns a theme validator checking that every exposed hook of
// every declared skin point has a value in the base state. A hook covered
// only by the process-wide default is a warning, or an error when strict.
func (e *Evaluator) Completeness(strict bool) theme.Validator {
	return func(t *theme.Theme) ([]string, error) {
		var (
			warnings []string
			errs     error
		)
		for _, decl := range e.vocab.Decls() {
			for _, hook := range decl.Hooks {
				entry, warning, err := e.resolveHook(t, decl.ID, hook, variant.Set{})
				switch {
				case err != nil:
					errs = multierr.Append(errs, err)
				case entry.Defaulted && strict:
					errs = multierr.Append(errs, fmt.Errorf("%w: %s (strict defaults)", ErrUnresolvedVariable, warning))
				case warning != "":
					warnings = append(warnings, warning)
				}
			}
		}
		return warnings, errs
	}
}

// Unresolved lists the hooks of the whole vocabulary that fail to resolve
// under t with variants active. Cyclic references are reported as well.
func (e *Evaluator) Unresolved(t *theme.Theme, variants variant.Set) []error {
	var out []error
	for _, decl := range e.vocab.Decls() {
		for _, hook := range decl.Hooks {
			if _, _, err := e.resolveHook(t, decl.ID, hook, variants); err != nil {
				out = append(out, err)
			}
		}
	}
	return out
}

// IsDefinitionError reports whether err is one of the load-time taxonomy
// errors rather than an I/O or parse failure.
func IsDefinitionError(err error) bool {
	for _, target := range []error{
		theme.ErrUnknownTarget,
		theme.ErrUnknownTheme,
		theme.ErrDuplicateRule,
		ErrCyclicReference,
		ErrUnresolvedVariable,
		variant.ErrUnknownVariant,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
