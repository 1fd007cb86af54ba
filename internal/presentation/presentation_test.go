package presentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/skins/internal/app"
	"github.com/zjrosen/skins/internal/baseline"
	"github.com/zjrosen/skins/internal/config"
	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/variant"
)

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

func newApp(t *testing.T) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), config.Defaults(), app.Options{})
	require.NoError(t, err)
	t.Cleanup(a.Close)
	require.NoError(t, a.ActivateConfigured())
	return a
}

func TestFormatThemes(t *testing.T) {
	a := newApp(t)
	dtos := FromThemes(a.Store().Themes(), a.Store().ActiveID())
	require.Len(t, dtos, 2)
	require.False(t, dtos[0].Active)
	require.True(t, dtos[1].Active)
	require.Equal(t, "light", dtos[1].ID)
	require.Len(t, dtos[1].Sources, 4)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatThemes(dtos))
	lines := strings.Split(strings.TrimSpace(stripANSI(buf.String())), "\n")
	require.Len(t, lines, 3)
	require.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "THEME"))
	require.Regexp(t, `^●\s+light\s`, lines[2])
	require.Contains(t, lines[2], "...", "long source lists are truncated")
	require.NotContains(t, lines[1], "●")
}

func TestFormatStyle(t *testing.T) {
	a := newApp(t)
	style, err := a.Resolve(app.Query{Theme: "dark", Skin: "searchbar-input", Variants: []string{variant.Focus}})
	require.NoError(t, err)

	dto := FromStyle(style)
	require.Equal(t, "searchbar-input", dto.Skin)
	require.Equal(t, []string{variant.Focus}, dto.Variants)
	require.Equal(t, "text", dto.Hooks[0].Hook)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatStyle(dto))
	out := stripANSI(buf.String())
	require.Contains(t, out, "searchbar-input  theme=dark  variants={focus}")
	require.Contains(t, out, "HOOK")
	require.Contains(t, out, "██ ")
	require.Contains(t, out, "searchbar.css:")
}

func TestFormatJSON(t *testing.T) {
	a := newApp(t)
	style, err := a.Resolve(app.Query{Skin: "button"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatJSON(FromStyle(style)))

	var decoded StyleDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "light", decoded.Theme)
	require.Equal(t, []string{}, decoded.Variants)
	require.Equal(t, "bg", decoded.Hooks[0].Hook)
	require.Equal(t, "#ffffff", decoded.Hooks[0].Value)
	require.NotEmpty(t, decoded.Hooks[0].Origin)
}

func TestFormatDrift(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)
	require.NoError(t, f.FormatDrift(nil))
	require.Equal(t, "No drift.\n", buf.String())

	buf.Reset()
	dtos := FromDrift([]baseline.Drift{
		{Kind: baseline.DriftChanged, Key: "button.bg", Old: "#000", New: "#111"},
		{Kind: baseline.DriftAdded, Key: "button.ring", New: "#38bdf8"},
	})
	require.Equal(t, "changed", dtos[0].Kind)
	require.NoError(t, f.FormatDrift(dtos))
	require.Equal(t, "~ button.bg: #000 -> #111\n+ button.ring = #38bdf8\n", stripANSI(buf.String()))
}

func TestUnifiedDiff(t *testing.T) {
	a := []string{"button.bg = #000", "button.text = #fff", "button.ring = #38bdf8"}
	b := []string{"button.bg = #fff", "button.text = #fff", "button.ring = #38bdf8"}

	require.Empty(t, UnifiedDiff("dark", "dark", a, a))

	diff := UnifiedDiff("dark", "light", a, b)
	require.Equal(t, `--- dark
+++ light
-button.bg = #000
+button.bg = #fff
 button.text = #fff
 button.ring = #38bdf8
`, diff)

	require.Equal(t, "--- a\n+++ b\n+x\n", UnifiedDiff("a", "b", nil, []string{"x"}))

	var buf bytes.Buffer
	require.NoError(t, NewFormatter(&buf).FormatDiff(diff))
	require.Equal(t, diff, stripANSI(buf.String()))
}

func TestStyleLines(t *testing.T) {
	dto := StyleDTO{Skin: "button", Hooks: []HookDTO{{Hook: "bg", Value: "#000"}, {Hook: "text", Value: "#fff"}}}
	require.Equal(t, []string{"button.bg = #000", "button.text = #fff"}, dto.Lines())
}

func TestLintMarkdown(t *testing.T) {
	a := newApp(t)
	report := a.Lint()
	report.Failures = append(report.Failures, app.Failure{
		Source: "themes",
		Theme:  "broken",
		Err:    errors.Join(theme.ErrUnknownTarget, errors.New("skin \"nope\"")),
	})

	dto := FromReport(report)
	require.Equal(t, 1, dto.Errors)
	require.True(t, dto.Failures[0].Definition)

	md, err := LintMarkdown(dto)
	require.NoError(t, err)
	require.Contains(t, md, "# Theme lint")
	require.Contains(t, md, "1 error(s), 0 warning(s) across 2 theme(s).")
	require.Contains(t, md, "## Failed to load")
	require.Contains(t, md, "**broken** (themes)")
	require.Contains(t, md, "## light")
	require.Contains(t, md, "No problems found.")

	out, err := RenderMarkdown(md, 80, "notty")
	require.NoError(t, err)
	require.Contains(t, stripANSI(out), "Theme lint")
	require.Contains(t, stripANSI(out), "broken")
}
