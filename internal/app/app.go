// Package app wires configuration, theme sources and the engine together
// for the command line and the playground.
package app

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"slices"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"

	"github.com/zjrosen/skins/internal/baseline"
	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/components"
	"github.com/zjrosen/skins/internal/config"
	"github.com/zjrosen/skins/internal/engine"
	"github.com/zjrosen/skins/internal/flags"
	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/themefile"
	"github.com/zjrosen/skins/internal/variant"
)

// SourceBuiltin names the embedded themes in failures.
const SourceBuiltin = "builtin"

// Options configures New.
type Options struct {
	// ThemesDir overrides the configured theme directory.
	ThemesDir string

	// SkipBuiltins loads only the theme directory.
	SkipBuiltins bool

	Tracer trace.Tracer
}

// Failure is a theme source that could not be loaded.
type Failure struct {
	Source string // SourceBuiltin or the theme directory
	Theme  string // empty when parsing failed before the theme was named
	Err    error
}

// Definition reports whether the failure is a definition error (unknown
// target, cycle, unresolved hook...) rather than a read or syntax error.
func (f Failure) Definition() bool { return cascade.IsDefinitionError(f.Err) }

// App owns one engine loaded from configuration.
type App struct {
	cfg      config.Config
	flags    *flags.Registry
	vocab    *skin.Vocabulary
	eval     *cascade.Evaluator
	engine   *engine.Engine
	tracer   trace.Tracer
	dir      string
	failures []Failure
}

// New builds the vocabulary, variant resolver and engine described by cfg and
// loads the built-in themes followed by the theme directory. Themes that
// fail to load are recorded as failures; only setup errors are returned.
func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	vocab, err := components.NewVocabulary()
	if err != nil {
		return nil, fmt.Errorf("declaring components: %w", err)
	}
	for hook, value := range cfg.Defaults {
		if err := vocab.SetDefault(hook, value); err != nil {
			return nil, fmt.Errorf("defaults: %w", err)
		}
	}
	for _, hook := range cfg.Inherits {
		if err := vocab.SetInherits(hook, true); err != nil {
			return nil, fmt.Errorf("inherits: %w", err)
		}
	}

	decls, err := cfg.VariantDecls()
	if err != nil {
		return nil, err
	}
	resolver, err := components.NewResolver(decls...)
	if err != nil {
		return nil, fmt.Errorf("variants: %w", err)
	}

	fl := flags.New(cfg.Flags)
	eval := cascade.New(vocab)
	store := theme.NewStore(vocab, resolver,
		theme.WithValidator(eval.Completeness(fl.On(flags.FlagStrictDefaults))))
	eng := engine.New(skin.NewRegistry(vocab), store, engine.Options{
		Tracer:       opts.Tracer,
		CacheTTL:     cfg.Cache.TTL,
		DisableCache: !fl.On(flags.FlagResolveCache),
	})

	a := &App{
		cfg:    cfg,
		flags:  fl,
		vocab:  vocab,
		eval:   eval,
		engine: eng,
		tracer: opts.Tracer,
		dir:    cfg.Themes.Dir,
	}
	if opts.ThemesDir != "" {
		a.dir = opts.ThemesDir
	}

	if !opts.SkipBuiltins {
		a.load(ctx, SourceBuiltin, components.ThemesFS())
	}
	if a.dir != "" {
		if _, err := os.Stat(a.dir); err != nil {
			eng.Close()
			return nil, fmt.Errorf("themes directory: %w", err)
		}
		a.load(ctx, a.dir, os.DirFS(a.dir))
	}
	log.Info(log.CatTheme, "Themes loaded", "themes", len(store.Themes()), "failures", len(a.failures))
	return a, nil
}

func (a *App) load(ctx context.Context, source string, fsys fs.FS) {
	loader := themefile.New(fsys,
		themefile.WithLogger(log.Named("themefile")),
		themefile.WithTracer(a.tracer),
	)
	defs, err := loader.LoadAll(ctx, ".")
	for _, e := range multierr.Errors(err) {
		a.failures = append(a.failures, Failure{Source: source, Err: e})
	}
	for _, def := range defs {
		if err := a.engine.LoadTheme(ctx, def); err != nil {
			a.failures = append(a.failures, Failure{Source: source, Theme: def.ID, Err: err})
		}
	}
}

// Config returns the configuration the app was built from.
func (a *App) Config() config.Config { return a.cfg }

// Flags returns the feature flags.
func (a *App) Flags() *flags.Registry { return a.flags }

// Vocabulary returns the declared skin points.
func (a *App) Vocabulary() *skin.Vocabulary { return a.vocab }

// Evaluator returns the cascade evaluator.
func (a *App) Evaluator() *cascade.Evaluator { return a.eval }

// Engine returns the engine.
func (a *App) Engine() *engine.Engine { return a.engine }

// Store returns the theme store.
func (a *App) Store() *theme.Store { return a.engine.Store() }

// ThemesDir returns the user theme directory, empty when none.
func (a *App) ThemesDir() string { return a.dir }

// Failures returns the themes that did not load.
func (a *App) Failures() []Failure { return slices.Clone(a.failures) }

// ActivateConfigured activates the theme named by themes.active.
func (a *App) ActivateConfigured() error {
	return a.engine.Activate(a.cfg.Themes.Active)
}

// Theme returns id, or the active theme when id is empty.
func (a *App) Theme(id string) (*theme.Theme, error) {
	if id == "" {
		return a.Store().Active()
	}
	return a.Store().Theme(id)
}

// Query describes one resolution request.
type Query struct {
	Theme    string // empty uses the active theme
	Skin     string
	Variants []string
	Attrs    map[string]string
}

// Resolve resolves q. Named variants are forced on; attribute variants are
// evaluated against q.Attrs.
func (a *App) Resolve(q Query) (cascade.Style, error) {
	th, err := a.Theme(q.Theme)
	if err != nil {
		return cascade.Style{}, err
	}
	if _, err := a.vocab.Lookup(q.Skin); err != nil {
		return cascade.Style{}, err
	}
	resolver := a.Store().Variants()
	forced := variant.NewSet(q.Variants...)
	if err := resolver.Check(forced); err != nil {
		return cascade.Style{}, err
	}
	state := variant.ElementState{
		Hovered:  forced.Contains(variant.Hover),
		Pressed:  forced.Contains(variant.Active),
		Focused:  forced.Contains(variant.Focus),
		Disabled: forced.Contains(variant.Disabled),
		Attrs:    q.Attrs,
	}
	return a.eval.Resolve(th, q.Skin, resolver.ActiveVariants(state).Union(forced))
}

// Capture snapshots every hook of every skin point of a theme for the
// baseline store.
func (a *App) Capture(themeID string) (*theme.Theme, []baseline.Entry, error) {
	th, err := a.Theme(themeID)
	if err != nil {
		return nil, nil, err
	}
	return th, baseline.Capture(a.eval, a.vocab, th, baseline.Sets(th)), nil
}

// Close releases the engine.
func (a *App) Close() { a.engine.Close() }
