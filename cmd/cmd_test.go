package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/skins/internal/config"
	"github.com/zjrosen/skins/internal/presentation"
)

// resetFlags restores every flag to its default so package-level flag
// variables do not leak between runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace([]string{})
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// workspace writes a config file pointing at a theme directory holding
// files, and returns the config path and the theme directory.
func workspace(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "themes")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	path := filepath.Join(root, "config.yaml")
	yaml := "# skins\nthemes:\n  dir: " + dir + "\n  active: light\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))
	return path, dir
}

var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return ansiRegex.ReplaceAllString(out.String(), ""), err
}

const midnight = `@extends "dark"; [data-skin="button"] { --bg: navy; }`

func TestThemes(t *testing.T) {
	path, _ := workspace(t, map[string]string{"midnight.css": midnight})

	out, err := run(t, path, "themes")
	require.NoError(t, err)
	require.Contains(t, out, "THEME")
	require.Contains(t, out, "midnight")
	require.Regexp(t, `(?m)^●\s+light\s`, out)

	out, err = run(t, path, "themes", "--json")
	require.NoError(t, err)
	var themes []presentation.ThemeDTO
	require.NoError(t, json.Unmarshal([]byte(out), &themes))
	require.Len(t, themes, 3)
	require.Equal(t, "midnight", themes[2].ID)
	require.Equal(t, "dark", themes[2].Parent)
}

func TestUse(t *testing.T) {
	path, _ := workspace(t, map[string]string{"midnight.css": midnight})

	out, err := run(t, path, "use", "midnight")
	require.NoError(t, err)
	require.Contains(t, out, "Active theme: midnight")

	cfg, _, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "midnight", cfg.Themes.Active)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "# skins", "comments are preserved")

	_, err = run(t, path, "use", "nope")
	require.Error(t, err)
	cfg, _, err = config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "midnight", cfg.Themes.Active, "failed use leaves the config alone")
}

func TestResolve(t *testing.T) {
	path, _ := workspace(t, nil)

	out, err := run(t, path, "resolve", "button", "--theme", "dark", "--variant", "hover", "--json")
	require.NoError(t, err)
	var style presentation.StyleDTO
	require.NoError(t, json.Unmarshal([]byte(out), &style))
	require.Equal(t, "dark", style.Theme)
	require.Equal(t, []string{"hover"}, style.Variants)
	require.Equal(t, "bg", style.Hooks[0].Hook)
	require.Equal(t, "#1f2937", style.Hooks[0].Value)

	out, err = run(t, path, "resolve", "button")
	require.NoError(t, err)
	require.Contains(t, out, "button  theme=light  variants={}")

	_, err = run(t, path, "resolve", "button", "--attr", "novalue")
	require.ErrorContains(t, err, "want key=value")

	_, err = run(t, path, "resolve", "nope")
	require.Error(t, err)
}

func TestLint(t *testing.T) {
	path, dir := workspace(t, map[string]string{"midnight.css": midnight})

	out, err := run(t, path, "lint", "--plain")
	require.NoError(t, err)
	require.Contains(t, out, "# Theme lint")
	require.Contains(t, out, "0 error(s), 0 warning(s) across 3 theme(s).")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.css"), []byte(`[data-skin="nope"] { --bg: red; }`), 0o644))
	out, err = run(t, path, "lint", "--json")
	require.ErrorIs(t, err, ErrLintFailed)
	var report presentation.LintDTO
	require.NoError(t, json.Unmarshal([]byte(out[:bytes.LastIndexByte([]byte(out), '}')+1]), &report))
	require.Equal(t, 1, report.Errors)
	require.Equal(t, "broken", report.Failures[0].Theme)

	out, err = run(t, path, "lint", t.TempDir())
	require.NoError(t, err)
	require.Contains(t, out, "Theme lint")
}

func TestDiff(t *testing.T) {
	path, _ := workspace(t, nil)

	out, err := run(t, path, "diff", "dark", "light", "--skin", "button")
	require.NoError(t, err)
	require.Contains(t, out, "--- dark\n+++ light\n")
	require.Contains(t, out, "-button.bg = #000000\n")
	require.Contains(t, out, "+button.bg = #ffffff\n")

	out, err = run(t, path, "diff", "dark", "dark")
	require.NoError(t, err)
	require.Equal(t, "No differences.\n", out)

	_, err = run(t, path, "diff", "dark", "nope")
	require.Error(t, err)
}

func TestBaseline(t *testing.T) {
	path, dir := workspace(t, map[string]string{"midnight.css": midnight})

	out, err := run(t, path, "baseline", "list")
	require.NoError(t, err)
	require.Equal(t, "No baselines saved.\n", out)

	out, err = run(t, path, "baseline", "save", "midnight")
	require.NoError(t, err)
	require.Contains(t, out, "Saved midnight:")
	require.FileExists(t, filepath.Join(filepath.Dir(path), "baseline.db"))

	out, err = run(t, path, "baseline", "check", "midnight")
	require.NoError(t, err)
	require.Equal(t, "midnight:\nNo drift.\n", out)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "midnight.css"),
		[]byte(`@extends "dark"; [data-skin="button"] { --bg: teal; }`), 0o644))
	out, err = run(t, path, "baseline", "check", "midnight")
	require.ErrorIs(t, err, ErrDrift)
	require.Contains(t, out, "~ button.bg: navy -> teal")

	_, err = run(t, path, "baseline", "check", "light")
	require.Error(t, err, "light was never saved")

	out, err = run(t, path, "baseline", "list")
	require.NoError(t, err)
	require.Contains(t, out, "midnight\trevision")

	_, err = run(t, path, "baseline", "delete", "midnight")
	require.NoError(t, err)
	out, err = run(t, path, "baseline", "list")
	require.NoError(t, err)
	require.Equal(t, "No baselines saved.\n", out)
}

func TestInvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  ttl: -1s\n"), 0o644))

	_, err := run(t, path, "themes")
	require.ErrorIs(t, err, config.ErrInvalid)
}

func TestParseAttrs(t *testing.T) {
	attrs, err := parseAttrs(nil)
	require.NoError(t, err)
	require.Nil(t, attrs)

	attrs, err = parseAttrs([]string{"data-variant=outline", "empty="})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"data-variant": "outline", "empty": ""}, attrs)

	_, err = parseAttrs([]string{"=x"})
	require.Error(t, err)
}
