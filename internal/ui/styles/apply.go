package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/variant"
)

// Hooks read by Apply.
const (
	HookBackground = "bg"
	HookText       = "text"
	HookBorder     = "border"
	HookRing       = "ring"
	HookOutline    = "outline"
)

// Apply maps a resolved style onto a new Lip Gloss style.
func Apply(s cascade.Style) lipgloss.Style {
	return ApplyTo(lipgloss.NewStyle(), s)
}

// ApplyTo maps a resolved style onto base. bg sets the background and text
// the foreground; the border color comes from BorderColor. Values that are
// not colors are skipped.
func ApplyTo(base lipgloss.Style, s cascade.Style) lipgloss.Style {
	if c, ok := color(s, HookBackground); ok {
		base = base.Background(c)
	}
	if c, ok := color(s, HookText); ok {
		base = base.Foreground(c)
	}
	if c, ok := BorderColor(s); ok {
		base = base.BorderForeground(c)
	}
	return base
}

// BorderColor returns the color a bordered rendering of s should use: the
// first colored hook of ring, outline and border. The ring only counts while
// the style is focused.
func BorderColor(s cascade.Style) (lipgloss.TerminalColor, bool) {
	hooks := []string{HookOutline, HookBorder}
	if s.Variants().Contains(variant.Focus) {
		hooks = append([]string{HookRing}, hooks...)
	}
	for _, h := range hooks {
		if c, ok := color(s, h); ok {
			return c, true
		}
	}
	return nil, false
}

func color(s cascade.Style, hook string) (lipgloss.TerminalColor, bool) {
	v, ok := s.Get(hook)
	if !ok || v == "" {
		return nil, false
	}
	c, ok := ParseColor(v)
	if !ok {
		log.Debug(log.CatUI, "Skipping non-color value", "skin", s.Skin(), "hook", hook, "value", v)
		return nil, false
	}
	if _, none := c.(lipgloss.NoColor); none && hook != HookBackground && hook != HookText {
		// A transparent border falls through to the next border hook.
		return nil, false
	}
	return c, true
}

// Swatch renders a two-cell sample of value followed by the value itself.
// Values that are not colors are returned unchanged.
func Swatch(value string) string {
	c, ok := ParseColor(value)
	if !ok {
		return value
	}
	if _, none := c.(lipgloss.NoColor); none {
		return "░░ " + value
	}
	return lipgloss.NewStyle().Foreground(c).Render("██") + " " + value
}
