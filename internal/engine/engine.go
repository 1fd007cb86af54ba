// Package engine ties the skin registry, theme store, variant resolver and
// cascade evaluator together for mounted component instances. Every mount,
// state change and theme switch produces fresh immutable style snapshots.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/skins/internal/cachemanager"
	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/pubsub"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/tracing"
	"github.com/zjrosen/skins/internal/variant"
)

// Snapshot is the latest style of one mounted instance.
type Snapshot struct {
	Instance skin.InstanceID
	Skin     string
	Style    cascade.Style
}

// Options configures an Engine.
type Options struct {
	// Tracer receives one span per recompute batch. Nil disables tracing.
	Tracer trace.Tracer

	// Cache memoizes resolutions. Nil uses an in-memory go-cache.
	Cache cachemanager.CacheManager[string, cascade.Style]

	// CacheTTL is the lifetime of a memoized resolution. Zero uses the cache
	// default.
	CacheTTL time.Duration

	// DisableCache resolves every time.
	DisableCache bool
}

type resolveInput struct {
	theme    *theme.Theme
	skin     string
	variants variant.Set
}

// Engine owns mounted instances and their snapshots. Mutating calls belong
// on the UI thread; Snapshot and Subscribe are safe from any goroutine.
type Engine struct {
	registry *skin.Registry
	store    *theme.Store
	eval     *cascade.Evaluator
	tracer   trace.Tracer
	cache    *cachemanager.ReadThroughCache[string, cascade.Style, resolveInput]
	cacheTTL time.Duration
	broker   *pubsub.Broker[skin.InstanceID, Snapshot]

	states map[skin.InstanceID]variant.ElementState

	mu        sync.RWMutex
	snapshots map[skin.InstanceID]Snapshot
}

// New creates an engine over an existing registry and store.
func New(registry *skin.Registry, store *theme.Store, opts Options) *Engine {
	e := &Engine{
		registry:  registry,
		store:     store,
		eval:      cascade.New(registry.Vocabulary()),
		tracer:    opts.Tracer,
		cacheTTL:  opts.CacheTTL,
		broker:    pubsub.NewBroker[skin.InstanceID, Snapshot](),
		states:    make(map[skin.InstanceID]variant.ElementState),
		snapshots: make(map[skin.InstanceID]Snapshot),
	}
	c := opts.Cache
	if c == nil {
		c = cachemanager.NewInMemoryCacheManager[string, cascade.Style]("styles", cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval)
	}
	e.cache = cachemanager.NewReadThroughCache(c, e.resolve, opts.DisableCache)
	return e
}

func (e *Engine) resolve(_ context.Context, in resolveInput) (cascade.Style, error) {
	return e.eval.ResolveOrDefault(in.theme, in.skin, in.variants), nil
}

// Registry returns the instance registry.
func (e *Engine) Registry() *skin.Registry { return e.registry }

// Store returns the theme store.
func (e *Engine) Store() *theme.Store { return e.store }

// Evaluator returns the cascade evaluator.
func (e *Engine) Evaluator() *cascade.Evaluator { return e.eval }

// Mount registers a skin point under parent (empty for a component root) and
// computes its first snapshot.
func (e *Engine) Mount(parent skin.InstanceID, skinID string) (skin.InstanceID, error) {
	id, err := e.registry.Register(skin.Point{Skin: skinID, Parent: parent})
	if err != nil {
		return "", err
	}
	e.states[id] = variant.ElementState{}
	e.recompute(context.Background(), []skin.InstanceID{id})
	return id, nil
}

// Unmount removes the instance, its descendants and their snapshots.
func (e *Engine) Unmount(id skin.InstanceID) error {
	removed := e.subtree(id)
	if err := e.registry.Unregister(id); err != nil {
		return err
	}

	e.mu.Lock()
	for _, r := range removed {
		delete(e.snapshots, r)
	}
	e.mu.Unlock()

	for _, r := range removed {
		delete(e.states, r)
		e.store.ClearScope(r)
		e.broker.Publish(pubsub.DeletedEvent, r, Snapshot{Instance: r})
	}
	log.Debug(log.CatEngine, "Unmounted", "id", id, "removed", len(removed))
	return nil
}

// SetState records the element state of id and recomputes its snapshot.
func (e *Engine) SetState(id skin.InstanceID, state variant.ElementState) (cascade.Style, error) {
	if _, err := e.registry.Lookup(id); err != nil {
		return cascade.Style{}, err
	}
	e.states[id] = state
	e.recompute(context.Background(), []skin.InstanceID{id})
	snap, _ := e.Snapshot(id)
	return snap, nil
}

// State returns the last element state recorded for id.
func (e *Engine) State(id skin.InstanceID) variant.ElementState { return e.states[id] }

// Variants returns the active variants of id under its current state.
func (e *Engine) Variants(id skin.InstanceID) variant.Set {
	return e.store.Variants().ActiveVariants(e.states[id])
}

// ResolveElement resolves id's skin for an element state other than the one
// recorded for the instance. Components that render several elements from
// one skin point (dropdown options) use it per element. Nothing is stored.
func (e *Engine) ResolveElement(id skin.InstanceID, state variant.ElementState) (cascade.Style, error) {
	p, err := e.registry.Lookup(id)
	if err != nil {
		return cascade.Style{}, err
	}
	th, _ := e.themeFor(id)
	return e.cached(context.Background(), th, p.Skin, e.store.Variants().ActiveVariants(state)), nil
}

// LoadTheme validates and stores def, then recomputes every instance if the
// load replaced a theme in use.
func (e *Engine) LoadTheme(ctx context.Context, def theme.Definition) error {
	ctx, span := tracing.Start(ctx, e.tracer, tracing.SpanThemeLoad,
		attribute.String(tracing.AttrThemeID, def.ID),
		attribute.Int(tracing.AttrThemeRules, len(def.Rules)),
		attribute.Int(tracing.AttrThemeSources, len(def.Sources)),
	)
	err := e.store.LoadTheme(def)
	tracing.End(span, err)
	if err != nil {
		return err
	}
	if err := e.cache.Invalidate(ctx); err != nil {
		log.ErrorErr(log.CatEngine, "Cache flush failed", err)
	}
	e.recompute(ctx, e.registry.IDs())
	return nil
}

// Activate switches the global theme and recomputes every instance without
// remounting anything.
func (e *Engine) Activate(themeID string) error {
	ctx, span := tracing.Start(context.Background(), e.tracer, tracing.SpanEngineActivate,
		attribute.String(tracing.AttrThemeID, themeID))
	err := e.store.Activate(themeID)
	tracing.End(span, err)
	if err != nil {
		return err
	}
	e.recompute(ctx, e.registry.IDs())
	return nil
}

// ActivateScope switches the theme of the subtree rooted at id.
func (e *Engine) ActivateScope(id skin.InstanceID, themeID string) error {
	if _, err := e.registry.Lookup(id); err != nil {
		return err
	}
	if err := e.store.ActivateScope(id, themeID); err != nil {
		return err
	}
	e.recompute(context.Background(), e.subtree(id))
	return nil
}

// ClearScope removes a subtree override and recomputes the subtree.
func (e *Engine) ClearScope(id skin.InstanceID) {
	e.store.ClearScope(id)
	e.recompute(context.Background(), e.subtree(id))
}

// Snapshot returns the latest snapshot of id.
func (e *Engine) Snapshot(id skin.InstanceID) (cascade.Style, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.snapshots[id]
	return s.Style, ok
}

// Subscribe streams snapshots. A subscriber that falls behind receives only
// the latest snapshot per instance.
func (e *Engine) Subscribe(ctx context.Context) *pubsub.Subscription[skin.InstanceID, Snapshot] {
	return e.broker.Subscribe(ctx)
}

// CacheStats reports memoization counters.
func (e *Engine) CacheStats() cachemanager.Stats { return e.cache.Stats() }

// Close ends every subscription.
func (e *Engine) Close() { e.broker.Close() }

func (e *Engine) subtree(id skin.InstanceID) []skin.InstanceID {
	out := []skin.InstanceID{id}
	for _, c := range e.registry.Children(id) {
		out = append(out, e.subtree(c)...)
	}
	return out
}

func (e *Engine) themeFor(id skin.InstanceID) (*theme.Theme, error) {
	chain, err := e.registry.Ancestors(id)
	if err != nil {
		return nil, err
	}
	ids := make([]skin.InstanceID, len(chain))
	for i, p := range chain {
		ids[i] = p.ID
	}
	return e.store.ThemeFor(ids)
}

func (e *Engine) cached(ctx context.Context, th *theme.Theme, skinID string, vars variant.Set) cascade.Style {
	if th == nil {
		return e.eval.ResolveOrDefault(nil, skinID, vars)
	}
	key := fmt.Sprintf("%s@%d|%s|%s", th.ID(), th.Revision(), skinID, vars.Key())
	style, _ := e.cache.Get(ctx, key, resolveInput{theme: th, skin: skinID, variants: vars}, e.cacheTTL)
	return style
}

// recompute builds new snapshots for ids from settled state, swaps them in
// and publishes them.
func (e *Engine) recompute(ctx context.Context, ids []skin.InstanceID) {
	if len(ids) == 0 {
		return
	}
	before := e.cache.Stats()
	ctx, span := tracing.Start(ctx, e.tracer, tracing.SpanEngineRecompute,
		attribute.Int(tracing.AttrInstances, len(ids)),
		attribute.String(tracing.AttrThemeID, e.store.ActiveID()),
	)

	resolver := e.store.Variants()
	fresh := make([]Snapshot, 0, len(ids))
	for _, id := range ids {
		p, err := e.registry.Lookup(id)
		if err != nil {
			continue
		}
		th, err := e.themeFor(id)
		if err != nil {
			log.Warn(log.CatEngine, "No theme for instance", "id", id, "skin", p.Skin, "error", err)
		}
		vars := resolver.ActiveVariants(e.states[id])
		fresh = append(fresh, Snapshot{Instance: id, Skin: p.Skin, Style: e.cached(ctx, th, p.Skin, vars)})
	}

	e.mu.Lock()
	for _, s := range fresh {
		e.snapshots[s.Instance] = s
	}
	e.mu.Unlock()

	for _, s := range fresh {
		e.broker.Publish(pubsub.UpdatedEvent, s.Instance, s)
	}

	after := e.cache.Stats()
	span.SetAttributes(
		attribute.Int64(tracing.AttrCacheHits, int64(after.Hits-before.Hits)),
		attribute.Int64(tracing.AttrCacheMisses, int64(after.Misses-before.Misses)),
	)
	tracing.End(span, nil)
	log.Debug(log.CatEngine, "Recomputed", "instances", len(fresh))
}
