// Package themefile loads theme definitions from CSS and YAML files. A theme
// is an entry file plus everything it imports; rules keep one declaration
// order across all imported sources.
package themefile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/maruel/natural"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/tracing"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither CSS nor YAML.
	ErrUnsupportedFormat = errors.New("unsupported theme file format")
	// ErrImportCycle is returned when a file imports itself, directly or not.
	ErrImportCycle = errors.New("import cycle")
	// ErrThemeMismatch is returned when one theme's files name different themes.
	ErrThemeMismatch = errors.New("theme id mismatch")
	// ErrSyntax is returned for malformed theme files.
	ErrSyntax = errors.New("syntax error")
)

// Entry file names tried by LoadDir, in order.
var indexFiles = []string{"index.css", "index.yaml", "index.yml"}

// IsThemeFile reports whether name has a theme file extension.
func IsThemeFile(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".css", ".yaml", ".yml":
		return true
	}
	return false
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. Defaults to the "themefile" logger of the
// internal log package.
func WithLogger(l *zap.Logger) Option {
	return func(ld *Loader) { ld.log = l }
}

// WithTracer records one span per loaded theme.
func WithTracer(t trace.Tracer) Option {
	return func(ld *Loader) { ld.tracer = t }
}

// Loader reads theme definitions from a file system.
type Loader struct {
	fsys   fs.FS
	log    *zap.Logger
	tracer trace.Tracer
}

// New creates a loader reading from fsys.
func New(fsys fs.FS, opts ...Option) *Loader {
	l := &Loader{fsys: fsys}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = log.Named("themefile")
	}
	return l
}

// load is the state of one theme being read.
type load struct {
	def      theme.Definition
	idFrom   string
	fallback string
	stack    []string
	seen     map[string]bool
	errs     error
}

func (ld *load) warn(source, format string, args ...any) {
	ld.def.Warnings = append(ld.def.Warnings, source+": "+fmt.Sprintf(format, args...))
}

func (ld *load) fail(err error) { ld.errs = multierr.Append(ld.errs, err) }

// setID records the theme named by a file. Every file of one theme must
// agree.
func (ld *load) setID(id, source string) {
	switch {
	case id == "":
	case ld.def.ID == "":
		ld.def.ID, ld.idFrom = id, source
	case ld.def.ID != id:
		ld.fail(fmt.Errorf("%w: %s names %q, %s names %q", ErrThemeMismatch, ld.idFrom, ld.def.ID, source, id))
	}
}

func (ld *load) setExtends(parent, source string) {
	if ld.def.Extends != "" && ld.def.Extends != parent {
		ld.fail(fmt.Errorf("%w: %s extends %q, already extending %q", ErrThemeMismatch, source, parent, ld.def.Extends))
		return
	}
	ld.def.Extends = parent
}

func (ld *load) addRule(r theme.Rule) {
	r.Seq = len(ld.def.Rules)
	ld.def.Rules = append(ld.def.Rules, r)
}

// LoadFile reads the theme whose entry file is name. The theme id comes from
// the files themselves; a theme that never names itself is called after its
// entry file (or directory, for index files).
func (l *Loader) LoadFile(ctx context.Context, name string) (theme.Definition, error) {
	fallback := strings.TrimSuffix(path.Base(name), path.Ext(name))
	if fallback == "index" {
		fallback = path.Base(path.Dir(name))
	}
	return l.run(ctx, name, fallback, func(ld *load) { l.file(ld, name) })
}

// LoadDir reads the theme in dir: its index file when there is one,
// otherwise every theme file in natural name order.
func (l *Loader) LoadDir(ctx context.Context, dir string) (theme.Definition, error) {
	for _, idx := range indexFiles {
		name := path.Join(dir, idx)
		if _, err := fs.Stat(l.fsys, name); err == nil {
			return l.LoadFile(ctx, name)
		}
	}

	entries, err := fs.ReadDir(l.fsys, dir)
	if err != nil {
		return theme.Definition{}, fmt.Errorf("read theme directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && IsThemeFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	slices.SortFunc(names, natural.Compare)

	return l.run(ctx, dir, path.Base(dir), func(ld *load) {
		for _, n := range names {
			l.file(ld, path.Join(dir, n))
		}
	})
}

// LoadAll reads every theme under root: each subdirectory is one theme and
// each top-level theme file is one theme. Themes are returned parents first.
// Themes that fail are left out and their errors combined.
func (l *Loader) LoadAll(ctx context.Context, root string) ([]theme.Definition, error) {
	entries, err := fs.ReadDir(l.fsys, root)
	if err != nil {
		return nil, fmt.Errorf("read themes: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.SortFunc(names, natural.Compare)

	var (
		defs []theme.Definition
		errs error
	)
	for _, n := range names {
		p := path.Join(root, n)
		info, err := fs.Stat(l.fsys, p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		var def theme.Definition
		switch {
		case info.IsDir():
			def, err = l.LoadDir(ctx, p)
		case IsThemeFile(n):
			def, err = l.LoadFile(ctx, p)
		default:
			continue
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		defs = append(defs, def)
	}
	return ParentsFirst(defs), errs
}

// ParentsFirst orders defs so that every theme follows the theme it extends,
// keeping the given order otherwise.
func ParentsFirst(defs []theme.Definition) []theme.Definition {
	byID := make(map[string]int, len(defs))
	for i, d := range defs {
		byID[d.ID] = i
	}
	out := make([]theme.Definition, 0, len(defs))
	state := make([]int, len(defs)) // 0 new, 1 visiting, 2 done
	var visit func(i int)
	visit = func(i int) {
		if state[i] != 0 {
			return
		}
		state[i] = 1
		if p, ok := byID[defs[i].Extends]; ok {
			visit(p)
		}
		state[i] = 2
		out = append(out, defs[i])
	}
	for i := range defs {
		visit(i)
	}
	return out
}

func (l *Loader) run(ctx context.Context, entry, fallback string, read func(*load)) (theme.Definition, error) {
	_, span := tracing.Start(ctx, l.tracer, tracing.SpanThemeParse, attribute.String("themefile.entry", entry))

	ld := &load{fallback: fallback, seen: make(map[string]bool)}
	read(ld)
	if ld.def.ID == "" {
		ld.def.ID = ld.fallback
	}

	span.SetAttributes(
		attribute.String(tracing.AttrThemeID, ld.def.ID),
		attribute.Int(tracing.AttrThemeRules, len(ld.def.Rules)),
		attribute.Int(tracing.AttrWarnings, len(ld.def.Warnings)),
	)
	tracing.End(span, ld.errs)
	if ld.errs != nil {
		return theme.Definition{}, fmt.Errorf("theme %q: %w", ld.def.ID, ld.errs)
	}
	l.log.Debug("Loaded theme file",
		zap.String("theme", ld.def.ID),
		zap.String("entry", entry),
		zap.Int("rules", len(ld.def.Rules)),
		zap.Int("sources", len(ld.def.Sources)),
		zap.Int("warnings", len(ld.def.Warnings)),
	)
	return ld.def, nil
}

// file reads one source and, through it, everything it imports.
func (l *Loader) file(ld *load, name string) {
	name = path.Clean(name)
	if slices.Contains(ld.stack, name) {
		ld.fail(fmt.Errorf("%w: %s -> %s", ErrImportCycle, strings.Join(ld.stack, " -> "), name))
		return
	}
	if ld.seen[name] {
		ld.warn(name, "imported more than once; later imports ignored")
		return
	}
	ld.seen[name] = true

	src, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		ld.fail(fmt.Errorf("read %s: %w", name, err))
		return
	}

	ld.stack = append(ld.stack, name)
	defer func() { ld.stack = ld.stack[:len(ld.stack)-1] }()
	ld.def.Sources = append(ld.def.Sources, name)

	switch strings.ToLower(path.Ext(name)) {
	case ".css":
		l.parseCSS(ld, name, src)
	case ".yaml", ".yml":
		l.parseYAML(ld, name, src)
	default:
		ld.fail(fmt.Errorf("%w: %s", ErrUnsupportedFormat, name))
	}
}

// importPath resolves an import relative to the importing file.
func importPath(from, target string) (string, error) {
	if target == "" || path.IsAbs(target) || strings.Contains(target, "://") {
		return "", fmt.Errorf("%w: import %q must be a relative path", ErrSyntax, target)
	}
	return path.Join(path.Dir(from), target), nil
}
