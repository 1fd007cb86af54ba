package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/skins/internal/cascade"
)

// Border characters (rounded)
const (
	borderTopLeft     = "╭"
	borderTopRight    = "╮"
	borderBottomLeft  = "╰"
	borderBottomRight = "╯"
	borderHorizontal  = "─"
	borderVertical    = "│"
)

// Box renders content lines inside a rounded border whose colors come from a
// resolved style: the border uses BorderColor, the title the text color and
// the interior the background.
//
//	╭─ Title ─────╮
//	│content      │
//	╰─────────────╯
func Box(content []string, title string, width int, s cascade.Style) string {
	borderStyle := lipgloss.NewStyle()
	if c, ok := BorderColor(s); ok {
		borderStyle = borderStyle.Foreground(c)
	}
	titleStyle := lipgloss.NewStyle().Bold(true)
	fill := lipgloss.NewStyle()
	if c, ok := color(s, HookText); ok {
		titleStyle = titleStyle.Foreground(c)
	}
	if c, ok := color(s, HookBackground); ok {
		fill = fill.Background(c)
	}

	innerWidth := max(width-2, 1)

	var b strings.Builder
	b.WriteString(buildTopBorder(title, innerWidth, borderStyle, titleStyle))
	for _, row := range content {
		row = Truncate(row, innerWidth)
		pad := max(innerWidth-ansi.StringWidth(row), 0)
		b.WriteString("\n")
		b.WriteString(borderStyle.Render(borderVertical))
		b.WriteString(fill.Render(row + strings.Repeat(" ", pad)))
		b.WriteString(borderStyle.Render(borderVertical))
	}
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(borderBottomLeft + strings.Repeat(borderHorizontal, innerWidth) + borderBottomRight))
	return b.String()
}

// buildTopBorder creates the top border with an embedded title.
func buildTopBorder(title string, innerWidth int, borderStyle, titleStyle lipgloss.Style) string {
	// "─ " before the title and " ─" after it
	const titlePartMinWidth = 4

	if title == "" || innerWidth < titlePartMinWidth+1 {
		return borderStyle.Render(borderTopLeft + strings.Repeat(borderHorizontal, innerWidth) + borderTopRight)
	}

	displayTitle := Truncate(title, innerWidth-titlePartMinWidth)
	remaining := max(innerWidth-3-ansi.StringWidth(displayTitle), 0)

	return borderStyle.Render(borderTopLeft+borderHorizontal+" ") +
		titleStyle.Render(displayTitle) +
		borderStyle.Render(" "+strings.Repeat(borderHorizontal, remaining)+borderTopRight)
}
