package app

import (
	"github.com/zjrosen/skins/internal/baseline"
	"github.com/zjrosen/skins/internal/theme"
)

// Diagnostics are the findings for one loaded theme.
type Diagnostics struct {
	Theme    *theme.Theme
	Warnings []string
	// Errors are hooks that fail to resolve once a single variant is active.
	// The base state is already checked at load time.
	Errors []error
}

// Report is the result of linting every theme source.
type Report struct {
	Themes   []Diagnostics
	Failures []Failure
}

// HasErrors reports whether any theme failed to load or resolve.
func (r Report) HasErrors() bool {
	if len(r.Failures) > 0 {
		return true
	}
	for _, d := range r.Themes {
		if len(d.Errors) > 0 {
			return true
		}
	}
	return false
}

// Counts returns the number of errors and warnings in the report.
func (r Report) Counts() (errs, warnings int) {
	errs = len(r.Failures)
	for _, d := range r.Themes {
		errs += len(d.Errors)
		warnings += len(d.Warnings)
	}
	return errs, warnings
}

// Lint checks every loaded theme under the base state and each declared
// variant on its own.
func (a *App) Lint() Report {
	r := Report{Failures: a.Failures()}
	for _, th := range a.Store().Themes() {
		d := Diagnostics{Theme: th, Warnings: th.Warnings()}
		seen := make(map[string]bool)
		for _, set := range baseline.Sets(th)[1:] {
			for _, err := range a.eval.Unresolved(th, set) {
				if msg := err.Error(); !seen[msg] {
					seen[msg] = true
					d.Errors = append(d.Errors, err)
				}
			}
		}
		r.Themes = append(r.Themes, d)
	}
	return r
}
