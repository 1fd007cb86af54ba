package playground

import (
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/ui/styles"
)

const (
	sidebarWidth  = 24
	dropdownWidth = 16
	searchWidth   = 30
)

var (
	mutedStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
)

// View implements tea.Model.
func (m Model) View() string {
	sidebar := renderSidebar(m.themes, m.eng.Store().ActiveID(), m.snapshots, sidebarWidth)

	demoWidth := max(m.width-sidebarWidth-2, 40)
	demo := lipgloss.JoinVertical(lipgloss.Left,
		m.renderComponents(),
		"",
		renderTokens(m.focus.String(), m.focusedStyle(), demoWidth),
	)
	main := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, "  ", demo)

	status := mutedStyle.Render(m.lastAction)
	if m.err != nil {
		status = errorStyle.Render(m.err.Error())
	}
	return zone.Scan(main + "\n" + status + "\n" + m.help.View(m.keys))
}

func (m Model) focusedStyle() cascade.Style {
	switch m.focus {
	case TargetSearch:
		return m.search.Style()
	case TargetDropdown:
		return m.dropdown.Style()
	}
	return m.button.Style()
}

func (m Model) renderComponents() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderButton(), "  ",
		m.renderSearch(), "  ",
		m.renderDropdown(),
	)
}

func bordered(s cascade.Style) lipgloss.Style {
	return styles.ApplyTo(lipgloss.NewStyle().Border(lipgloss.RoundedBorder()), s)
}

func (m Model) renderButton() string {
	cfg := m.button.Config()
	st := bordered(m.button.Style()).Padding(0, cfg.Size.Padding()).Bold(true)
	return zone.Mark(zoneButton, st.Render(cfg.Label))
}

func (m Model) renderSearch() string {
	input := m.input
	inputStyle := m.search.InputStyle()
	input.TextStyle = styles.Apply(inputStyle)
	input.PlaceholderStyle = lipgloss.NewStyle()
	if c, ok := styles.ParseColor(inputStyle.Value(skin.HookPlaceholder)); ok {
		input.PlaceholderStyle = input.PlaceholderStyle.Foreground(c)
	}

	icon := styles.Apply(m.search.IconStyle()).Render("⌕")
	st := bordered(m.search.Style()).Width(searchWidth)
	return zone.Mark(zoneSearch, st.Render(icon+" "+input.View()))
}

func (m Model) renderDropdown() string {
	icon := styles.Apply(m.dropdown.IconStyle()).Render("▾")
	label := styles.PadRight(styles.Truncate(m.dropdown.Label(), dropdownWidth-2), dropdownWidth-2)
	head := zone.Mark(zoneDropdown, bordered(m.dropdown.Style()).Render(label+" "+icon))
	if !m.dropdown.IsOpen() {
		return head
	}

	lines := make([]string, 0, len(m.dropdown.Options()))
	for i, opt := range m.dropdown.Options() {
		st, err := m.dropdown.OptionStyle(i)
		if err != nil {
			lines = append(lines, errorStyle.Render(err.Error()))
			continue
		}
		marker := "  "
		if i == m.dropdown.Cursor() {
			marker = "› "
		}
		text := styles.PadRight(styles.Truncate(marker+opt.Label, dropdownWidth), dropdownWidth)
		lines = append(lines, zone.Mark(optionZoneID(i), styles.Apply(st).Render(text)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, styles.Box(lines, "", dropdownWidth+2, m.dropdown.MenuStyle()))
}
