// Package styles turns resolved skin styles into Lip Gloss styles.
package styles

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// namedColors maps the CSS color keywords themes commonly use to hex.
var namedColors = map[string]string{
	"black":   "#000000",
	"white":   "#ffffff",
	"red":     "#ff0000",
	"green":   "#008000",
	"lime":    "#00ff00",
	"blue":    "#0000ff",
	"navy":    "#000080",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"magenta": "#ff00ff",
	"fuchsia": "#ff00ff",
	"cyan":    "#00ffff",
	"aqua":    "#00ffff",
	"teal":    "#008080",
	"olive":   "#808000",
	"maroon":  "#800000",
	"silver":  "#c0c0c0",
	"gray":    "#808080",
	"grey":    "#808080",
}

// ParseColor converts a resolved token value to a terminal color. It
// accepts #rgb and #rrggbb hex, ANSI indexes 0-255 and CSS color names.
// "transparent" and "none" yield lipgloss.NoColor. ok is false for
// anything else.
func ParseColor(value string) (c lipgloss.TerminalColor, ok bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return nil, false
	case v == "transparent" || v == "none":
		return lipgloss.NoColor{}, true
	case strings.HasPrefix(v, "#"):
		if !isValidHexColor(v) {
			return nil, false
		}
		return lipgloss.Color(expandHex(v)), true
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n < 0 || n > 255 {
			return nil, false
		}
		return lipgloss.Color(v), true
	}
	if hex, found := namedColors[v]; found {
		return lipgloss.Color(hex), true
	}
	return nil, false
}

func isValidHexColor(s string) bool {
	if !strings.HasPrefix(s, "#") {
		return false
	}
	hex := s[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	_, err := strconv.ParseUint(hex, 16, 64)
	return err == nil
}

// expandHex turns #abc into #aabbcc; termenv only reads the long form.
func expandHex(s string) string {
	if len(s) != 4 {
		return s
	}
	return string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
}
