package presentation

import (
	"fmt"

	"github.com/zjrosen/skins/internal/app"
	"github.com/zjrosen/skins/internal/baseline"
	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/theme"
)

// ThemeDTO represents a loaded theme for presentation
type ThemeDTO struct {
	ID       string   `json:"id"`
	Parent   string   `json:"extends,omitempty"`
	Active   bool     `json:"active"`
	Rules    int      `json:"rules"`
	Revision uint64   `json:"revision"`
	Sources  []string `json:"sources"`
	Warnings []string `json:"warnings,omitempty"`
}

// HookDTO is one resolved hook.
type HookDTO struct {
	Hook      string `json:"hook"`
	Value     string `json:"value"`
	From      string `json:"from,omitempty"`   // skin point whose rule won
	Origin    string `json:"origin,omitempty"` // source:line of the winning rule
	Defaulted bool   `json:"defaulted,omitempty"`
}

// StyleDTO represents a resolved style for presentation
type StyleDTO struct {
	Theme    string    `json:"theme"`
	Skin     string    `json:"skin"`
	Variants []string  `json:"variants"`
	Hooks    []HookDTO `json:"hooks"`
}

// Lines renders the style as "hook = value" lines, the form diffs work on.
func (s StyleDTO) Lines() []string {
	out := make([]string, len(s.Hooks))
	for i, h := range s.Hooks {
		out[i] = fmt.Sprintf("%s.%s = %s", s.Skin, h.Hook, h.Value)
	}
	return out
}

// DriftDTO represents one baseline difference.
type DriftDTO struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
	Old  string `json:"old,omitempty"`
	New  string `json:"new,omitempty"`
}

// FailureDTO is a theme that did not load.
type FailureDTO struct {
	Source     string `json:"source"`
	Theme      string `json:"theme,omitempty"`
	Error      string `json:"error"`
	Definition bool   `json:"definition"`
}

// ThemeLintDTO holds the findings for one theme.
type ThemeLintDTO struct {
	ID       string   `json:"id"`
	Parent   string   `json:"extends,omitempty"`
	Rules    int      `json:"rules"`
	Sources  []string `json:"sources"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// LintDTO represents a lint report for presentation
type LintDTO struct {
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
	Themes   []ThemeLintDTO `json:"themes"`
	Failures []FailureDTO   `json:"failures,omitempty"`
}

// FromTheme converts a theme to a DTO.
func FromTheme(th *theme.Theme, activeID string) ThemeDTO {
	return ThemeDTO{
		ID:       th.ID(),
		Parent:   th.Parent(),
		Active:   th.ID() == activeID,
		Rules:    len(th.Rules()),
		Revision: th.Revision(),
		Sources:  th.Sources(),
		Warnings: th.Warnings(),
	}
}

// FromThemes converts themes in order.
func FromThemes(themes []*theme.Theme, activeID string) []ThemeDTO {
	out := make([]ThemeDTO, len(themes))
	for i, th := range themes {
		out[i] = FromTheme(th, activeID)
	}
	return out
}

// FromStyle converts a resolved style to a DTO, hooks in declaration order.
func FromStyle(s cascade.Style) StyleDTO {
	dto := StyleDTO{
		Theme:    s.Theme(),
		Skin:     s.Skin(),
		Variants: s.Variants().Names(),
	}
	if dto.Variants == nil {
		dto.Variants = []string{}
	}
	for _, hook := range s.Hooks() {
		e, _ := s.Entry(hook)
		h := HookDTO{Hook: hook, Value: e.Value, Defaulted: e.Defaulted}
		if !e.Defaulted {
			h.From = e.From
			if e.Rule.Source != "" {
				h.Origin = e.Rule.Where()
			}
		}
		dto.Hooks = append(dto.Hooks, h)
	}
	return dto
}

// FromDrift converts baseline drift.
func FromDrift(drift []baseline.Drift) []DriftDTO {
	out := make([]DriftDTO, len(drift))
	for i, d := range drift {
		out[i] = DriftDTO{Kind: string(d.Kind), Key: d.Key, Old: d.Old, New: d.New}
	}
	return out
}

// FromReport converts a lint report.
func FromReport(r app.Report) LintDTO {
	dto := LintDTO{Themes: []ThemeLintDTO{}}
	dto.Errors, dto.Warnings = r.Counts()
	for _, f := range r.Failures {
		dto.Failures = append(dto.Failures, FailureDTO{
			Source:     f.Source,
			Theme:      f.Theme,
			Error:      f.Err.Error(),
			Definition: f.Definition(),
		})
	}
	for _, d := range r.Themes {
		t := ThemeLintDTO{
			ID:       d.Theme.ID(),
			Parent:   d.Theme.Parent(),
			Rules:    len(d.Theme.Rules()),
			Sources:  d.Theme.Sources(),
			Warnings: d.Warnings,
		}
		for _, err := range d.Errors {
			t.Errors = append(t.Errors, err.Error())
		}
		dto.Themes = append(dto.Themes, t)
	}
	return dto
}
