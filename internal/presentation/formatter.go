// Package presentation formats themes, resolved styles, drift and lint
// reports for the command line, as JSON or as terminal text.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/skins/internal/ui/styles"
)

const (
	columnGap     = 2
	maxSourcesLen = 48
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	activeMarker = "●"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatThemes writes one row per theme, marking the active one.
func (f *Formatter) FormatThemes(themes []ThemeDTO) error {
	rows := [][]string{{"", "THEME", "EXTENDS", "RULES", "SOURCES"}}
	for _, th := range themes {
		marker := ""
		if th.Active {
			marker = activeMarker
		}
		rows = append(rows, []string{
			marker,
			th.ID,
			th.Parent,
			strconv.Itoa(th.Rules),
			styles.Truncate(strings.Join(th.Sources, ", "), maxSourcesLen),
		})
	}
	return f.table(rows)
}

// FormatStyle writes a resolved style: a title line, then one row per hook
// with its origin and a color swatch.
func (f *Formatter) FormatStyle(s StyleDTO) error {
	title := fmt.Sprintf("%s  theme=%s  variants={%s}", s.Skin, s.Theme, strings.Join(s.Variants, ", "))
	if _, err := fmt.Fprintln(f.writer, headerStyle.Render(title)); err != nil {
		return err
	}
	rows := [][]string{{"HOOK", "ORIGIN", "VALUE"}}
	for _, h := range s.Hooks {
		origin := h.Origin
		switch {
		case h.Defaulted:
			origin = mutedStyle.Render("(default)")
		case h.From != "" && h.From != s.Skin:
			origin = fmt.Sprintf("%s via %s", h.Origin, h.From)
		}
		rows = append(rows, []string{h.Hook, origin, styles.Swatch(h.Value)})
	}
	return f.table(rows)
}

// FormatDrift writes one line per drifted entry, or a note when there is none.
func (f *Formatter) FormatDrift(drift []DriftDTO) error {
	if len(drift) == 0 {
		_, err := fmt.Fprintln(f.writer, "No drift.")
		return err
	}
	for _, d := range drift {
		var line string
		switch d.Kind {
		case "added":
			line = addedStyle.Render(fmt.Sprintf("+ %s = %s", d.Key, d.New))
		case "removed":
			line = removedStyle.Render(fmt.Sprintf("- %s = %s", d.Key, d.Old))
		default:
			line = changedStyle.Render(fmt.Sprintf("~ %s: %s -> %s", d.Key, d.Old, d.New))
		}
		if _, err := fmt.Fprintln(f.writer, line); err != nil {
			return err
		}
	}
	return nil
}

// FormatDiff writes a diff produced by UnifiedDiff with added and removed
// lines colored.
func (f *Formatter) FormatDiff(diff string) error {
	if diff == "" {
		_, err := fmt.Fprintln(f.writer, "No differences.")
		return err
	}
	_, err := io.WriteString(f.writer, ColorDiff(diff))
	return err
}

// table writes rows with left-aligned columns. The first row is the header;
// the last column is never padded, so it may hold styled text.
func (f *Formatter) table(rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row[:len(row)-1] {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	for r, row := range rows {
		var sb strings.Builder
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(cell)
			sb.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+columnGap))
		}
		line := strings.TrimRight(sb.String(), " ")
		if r == 0 {
			line = headerStyle.Render(line)
		}
		if _, err := fmt.Fprintln(f.writer, line); err != nil {
			return err
		}
	}
	return nil
}
