package playground

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/ui/styles"
)

// renderTokens shows every hook of s, its value and the rule that set it.
func renderTokens(title string, s cascade.Style, width int) string {
	const hookWidth, valueWidth = 12, 22

	lines := []string{mutedStyle.Render("variants " + s.Variants().String())}
	for _, hook := range s.Hooks() {
		e, _ := s.Entry(hook)
		origin := "default"
		if !e.Defaulted && e.From != "" {
			origin = fmt.Sprintf("%s %s:%d", e.From, e.Rule.Source, e.Rule.Line)
		}
		value := styles.Swatch(e.Value)
		if e.Value == "" {
			value = mutedStyle.Render("unset")
		}
		pad := max(valueWidth-lipgloss.Width(value), 0)
		lines = append(lines, styles.PadRight(hook, hookWidth)+value+strings.Repeat(" ", pad)+mutedStyle.Render(origin))
	}
	return styles.Box(lines, title, width, cascade.Style{})
}
