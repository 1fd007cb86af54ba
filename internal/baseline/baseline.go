// Package baseline records resolved token tables per theme in SQLite so a
// later revision can be checked for drift.
package baseline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/tracing"
)

// ErrNoBaseline is returned by Load for a theme that was never saved.
var ErrNoBaseline = errors.New("no baseline saved")

// Entry is one resolved hook value: the token a skin point renders with
// under one variant set.
type Entry struct {
	Skin     string
	Hook     string
	Variants string // variant.Set key, empty for the base set
	Value    string
	Origin   string // "source:line" of the winning rule, empty when defaulted
}

// Key identifies the entry within a theme.
func (e Entry) Key() string {
	k := e.Skin + "." + e.Hook
	if e.Variants != "" {
		k += "[" + e.Variants + "]"
	}
	return k
}

// Saved describes a stored baseline.
type Saved struct {
	ThemeID  string
	Revision uint64
	SavedAt  time.Time
	Entries  int
}

// Store is a baseline database.
type Store struct {
	db     *sql.DB
	tracer trace.Tracer
}

// Option configures a Store.
type Option func(*Store)

// WithTracer records spans for saves and loads.
func WithTracer(t trace.Tracer) Option {
	return func(s *Store) { s.tracer = t }
}

// Open opens (creating if needed) the baseline database at path and brings
// its schema up to date.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open baseline database: %w", err)
	}
	if err := migrateUp(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate baseline database: %w", err)
	}
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Save replaces the baseline of themeID with entries.
func (s *Store) Save(ctx context.Context, themeID string, revision uint64, entries []Entry) (err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanBaselineSave,
		attribute.String(tracing.AttrThemeID, themeID),
		attribute.Int64(tracing.AttrThemeRevision, int64(revision)),
	)
	defer func() { tracing.End(span, err) }()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM baseline_entries WHERE theme_id = ?`, themeID); err != nil {
		return fmt.Errorf("clear baseline %q: %w", themeID, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO baselines (theme_id, revision, saved_at) VALUES (?, ?, ?)
		ON CONFLICT (theme_id) DO UPDATE SET revision = excluded.revision, saved_at = excluded.saved_at`,
		themeID, int64(revision), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save baseline %q: %w", themeID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO baseline_entries (theme_id, skin, hook, variants, value, origin)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, themeID, e.Skin, e.Hook, e.Variants, e.Value, e.Origin); err != nil {
			return fmt.Errorf("save %s: %w", e.Key(), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Info(log.CatBaseline, "Saved baseline", "theme", themeID, "revision", revision, "entries", len(entries))
	return nil
}

// Load returns the baseline entries of themeID ordered by skin, hook and
// variant set.
func (s *Store) Load(ctx context.Context, themeID string) (_ []Entry, err error) {
	ctx, span := tracing.Start(ctx, s.tracer, tracing.SpanBaselineCheck, attribute.String(tracing.AttrThemeID, themeID))
	defer func() { tracing.End(span, err) }()

	var revision int64
	err = s.db.QueryRowContext(ctx, `SELECT revision FROM baselines WHERE theme_id = ?`, themeID).Scan(&revision)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for theme %q", ErrNoBaseline, themeID)
	}
	if err != nil {
		return nil, fmt.Errorf("load baseline %q: %w", themeID, err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT skin, hook, variants, value, origin FROM baseline_entries
		WHERE theme_id = ? ORDER BY skin, hook, variants`, themeID)
	if err != nil {
		return nil, fmt.Errorf("load baseline %q: %w", themeID, err)
	}
	defer func() { _ = rows.Close() }()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Skin, &e.Hook, &e.Variants, &e.Value, &e.Origin); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// List returns every stored baseline ordered by theme id.
func (s *Store) List(ctx context.Context) ([]Saved, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.theme_id, b.revision, b.saved_at, COUNT(e.hook)
		FROM baselines b LEFT JOIN baseline_entries e ON e.theme_id = b.theme_id
		GROUP BY b.theme_id ORDER BY b.theme_id`)
	if err != nil {
		return nil, fmt.Errorf("list baselines: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Saved
	for rows.Next() {
		var (
			sv       Saved
			revision int64
			savedAt  string
		)
		if err := rows.Scan(&sv.ThemeID, &revision, &savedAt, &sv.Entries); err != nil {
			return nil, err
		}
		sv.Revision = uint64(revision)
		if sv.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
			return nil, fmt.Errorf("baseline %q: saved_at: %w", sv.ThemeID, err)
		}
		out = append(out, sv)
	}
	return out, rows.Err()
}

// Delete removes the baseline of themeID. Deleting a missing baseline is
// not an error.
func (s *Store) Delete(ctx context.Context, themeID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM baselines WHERE theme_id = ?`, themeID); err != nil {
		return fmt.Errorf("delete baseline %q: %w", themeID, err)
	}
	return nil
}
