package playground

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/ui/styles"
)

// renderSidebar lists the loaded themes with the active one marked.
func renderSidebar(themes []string, active string, snapshots, width int) string {
	lines := make([]string, 0, len(themes)+2)
	for _, id := range themes {
		if id == active {
			lines = append(lines, lipgloss.NewStyle().Bold(true).Render("● "+id))
			continue
		}
		lines = append(lines, mutedStyle.Render("  "+id))
	}
	lines = append(lines, "", mutedStyle.Render(fmt.Sprintf("updates: %d", snapshots)))
	return styles.Box(lines, "Themes", width, cascade.Style{})
}
