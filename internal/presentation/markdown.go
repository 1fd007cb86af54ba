package presentation

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/zjrosen/skins/internal/templates"
)

// noMarginStyle is a JSON style that removes document margins.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// LintMarkdown renders the lint report template.
func LintMarkdown(r LintDTO) (string, error) {
	src, err := templates.Report("lint")
	if err != nil {
		return "", fmt.Errorf("loading lint template: %w", err)
	}
	tmpl, err := template.New("lint").Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing lint template: %w", err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, r); err != nil {
		return "", fmt.Errorf("rendering lint template: %w", err)
	}
	return sb.String(), nil
}

// MarkdownStyle picks the glamour style for out: "notty" without color
// support, otherwise "dark" or "light" after the terminal background.
func MarkdownStyle(out *termenv.Output) string {
	switch {
	case out.Profile == termenv.Ascii:
		return "notty"
	case out.HasDarkBackground():
		return "dark"
	}
	return "light"
}

// RenderMarkdown renders md for the terminal. Use an explicit style rather
// than glamour's auto style, which queries the terminal.
func RenderMarkdown(md string, width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}
