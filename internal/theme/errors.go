package theme

import "errors"

var (
	// ErrUnknownTarget is returned when a rule (or a reference) names a skin
	// point or hook the declared vocabulary does not know.
	ErrUnknownTarget = errors.New("unknown rule target")

	// ErrUnknownTheme is returned when activating or extending a theme that is
	// not loaded.
	ErrUnknownTheme = errors.New("unknown theme")

	// ErrDuplicateRule is returned when one source defines the same
	// (skin, hook, variant set) twice.
	ErrDuplicateRule = errors.New("duplicate rule")

	// ErrCyclicReference is returned when references loop back on themselves.
	ErrCyclicReference = errors.New("cyclic reference")

	// ErrUnresolvedVariable is returned when an exposed hook has no value and
	// no process-wide default.
	ErrUnresolvedVariable = errors.New("unresolved variable")

	// ErrInvalidValue is returned for malformed rule values.
	ErrInvalidValue = errors.New("invalid value")

	// ErrNoActiveTheme is returned when nothing has been activated yet.
	ErrNoActiveTheme = errors.New("no active theme")
)
