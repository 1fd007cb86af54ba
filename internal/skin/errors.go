package skin

import "errors"

var (
	// ErrDuplicateIdentifier is returned when a skin identifier is declared twice,
	// or registered twice within the same component subtree.
	ErrDuplicateIdentifier = errors.New("duplicate skin identifier")

	// ErrUnknownSkin is returned when an identifier or instance is not known.
	ErrUnknownSkin = errors.New("unknown skin")

	// ErrPrefixViolation is returned when a child identifier does not extend its
	// parent's identifier.
	ErrPrefixViolation = errors.New("skin identifier does not extend parent identifier")

	// ErrInvalidIdentifier is returned for identifiers that are not dash-joined
	// lowercase segments.
	ErrInvalidIdentifier = errors.New("invalid skin identifier")

	// ErrUnknownHook is returned when a hook name is outside the fixed vocabulary.
	ErrUnknownHook = errors.New("unknown hook")
)
