// Package skin holds the skin registry: declared skin points, the fixed hook
// vocabulary and the per-instance registrations of mounted components.
package skin

// Hook names. The vocabulary is fixed: a hook means the same visual effect on
// every skin point that exposes it.
const (
	HookBg          = "bg"          // background color
	HookText        = "text"        // foreground color
	HookBorder      = "border"      // border color
	HookRing        = "ring"        // focus ring color
	HookOutline     = "outline"     // outline color
	HookPlaceholder = "placeholder" // placeholder text color
	HookShadow      = "shadow"      // shadow color
	HookAccent      = "accent"      // accent (caret, check mark) color
)

// Hook describes one entry of the hook vocabulary.
type Hook struct {
	Name string

	// Inherits makes descendant skin points fall back to the nearest
	// ancestor's rule for this hook. Off by default: inheritance is opt-in.
	Inherits bool

	// Default is the process-wide fallback value. Empty means none.
	Default string
}

// AllHooks returns the fixed hook vocabulary in canonical order.
func AllHooks() []string {
	return []string{
		HookBg,
		HookText,
		HookBorder,
		HookRing,
		HookOutline,
		HookPlaceholder,
		HookShadow,
		HookAccent,
	}
}

// IsHook reports whether name belongs to the fixed vocabulary.
func IsHook(name string) bool {
	for _, h := range AllHooks() {
		if h == name {
			return true
		}
	}
	return false
}
