package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/skins/internal/pubsub"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/theme"
	"github.com/zjrosen/skins/internal/variant"
)

func rule(skinID, hook, value string, variants ...string) theme.Rule {
	v, err := theme.ParseValue(value)
	if err != nil {
		panic(err)
	}
	return theme.Rule{Skin: skinID, Hook: hook, Variants: variant.NewSet(variants...), Value: v, Source: "test.css"}
}

func lightTheme() theme.Definition {
	return theme.Definition{ID: "light", Rules: []theme.Rule{
		rule("button", "bg", "white"),
		rule("button", "bg", "light-gray", "hover"),
		rule("button", "text", "black"),
		rule("searchbar", "bg", "white"),
		rule("searchbar-icon", "text", "gray"),
		rule("dropdown-option", "bg", "white"),
		rule("dropdown-option", "bg", "blue", "selected"),
	}}
}

func darkTheme() theme.Definition {
	return theme.Definition{ID: "dark", Rules: []theme.Rule{
		rule("button", "bg", "black"),
		rule("button", "bg", "dark-gray", "hover"),
		rule("button", "bg", "mid-gray", "disabled"),
		rule("button", "text", "white"),
		rule("searchbar", "bg", "black"),
		rule("searchbar-icon", "text", "silver"),
		rule("dropdown-option", "bg", "black"),
	}}
}

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	vocab := skin.NewVocabulary()
	require.NoError(t, vocab.Declare(
		skin.Decl{ID: "button", Hooks: []string{skin.HookBg, skin.HookText}},
		skin.Decl{ID: "searchbar", Hooks: []string{skin.HookBg}},
		skin.Decl{ID: "searchbar-icon", Parent: "searchbar", Hooks: []string{skin.HookText}},
		skin.Decl{ID: "dropdown", Hooks: []string{skin.HookBg}},
		skin.Decl{ID: "dropdown-option", Parent: "dropdown", Hooks: []string{skin.HookBg}},
	))
	resolver, err := variant.NewResolver(variant.Declaration{Name: "selected", Selector: `&[aria-selected="true"]`})
	require.NoError(t, err)

	e := New(skin.NewRegistry(vocab), theme.NewStore(vocab, resolver), opts)
	t.Cleanup(e.Close)

	ctx := context.Background()
	require.NoError(t, e.LoadTheme(ctx, lightTheme()))
	require.NoError(t, e.LoadTheme(ctx, darkTheme()))
	require.NoError(t, e.Activate("light"))
	return e
}

func TestMount_ComputesSnapshot(t *testing.T) {
	e := newEngine(t, Options{})

	id, err := e.Mount("", "button")
	require.NoError(t, err)

	s, ok := e.Snapshot(id)
	require.True(t, ok)
	require.Equal(t, "white", s.Value("bg"))
	require.Equal(t, "black", s.Value("text"))
	require.Equal(t, "light", s.Theme())
}

func TestMount_Errors(t *testing.T) {
	e := newEngine(t, Options{})

	_, err := e.Mount("", "unknown")
	require.ErrorIs(t, err, skin.ErrUnknownSkin)

	_, err = e.Mount("", "searchbar-icon")
	require.ErrorIs(t, err, skin.ErrPrefixViolation)
	require.Zero(t, e.Registry().Len())
}

func TestSetState_UpdatesVariants(t *testing.T) {
	e := newEngine(t, Options{})
	id, err := e.Mount("", "button")
	require.NoError(t, err)

	s, err := e.SetState(id, variant.ElementState{Hovered: true})
	require.NoError(t, err)
	require.Equal(t, "light-gray", s.Value("bg"))
	require.Equal(t, variant.NewSet("hover"), e.Variants(id))

	s, err = e.SetState(id, variant.ElementState{})
	require.NoError(t, err)
	require.Equal(t, "white", s.Value("bg"))

	_, err = e.SetState("missing", variant.ElementState{})
	require.ErrorIs(t, err, skin.ErrUnknownSkin)
}

func TestActivate_RecomputesWithoutRemount(t *testing.T) {
	e := newEngine(t, Options{})
	id, err := e.Mount("", "button")
	require.NoError(t, err)
	_, err = e.SetState(id, variant.ElementState{Hovered: true})
	require.NoError(t, err)

	require.NoError(t, e.Activate("dark"))

	s, ok := e.Snapshot(id)
	require.True(t, ok)
	require.Equal(t, "dark-gray", s.Value("bg"))
	require.Equal(t, "dark", s.Theme())
	require.Equal(t, []skin.InstanceID{id}, e.Registry().IDs(), "same instance, nothing remounted")

	require.ErrorIs(t, e.Activate("sepia"), theme.ErrUnknownTheme)
	s, _ = e.Snapshot(id)
	require.Equal(t, "dark", s.Theme(), "failed activation leaves snapshots alone")
}

func TestActivateScope_NearestScopeWins(t *testing.T) {
	e := newEngine(t, Options{})

	scoped, err := e.Mount("", "searchbar")
	require.NoError(t, err)
	scopedIcon, err := e.Mount(scoped, "searchbar-icon")
	require.NoError(t, err)
	plain, err := e.Mount("", "searchbar")
	require.NoError(t, err)
	plainIcon, err := e.Mount(plain, "searchbar-icon")
	require.NoError(t, err)

	require.NoError(t, e.ActivateScope(scoped, "dark"))

	s, _ := e.Snapshot(scopedIcon)
	require.Equal(t, "silver", s.Value("text"))
	s, _ = e.Snapshot(plainIcon)
	require.Equal(t, "gray", s.Value("text"))

	e.ClearScope(scoped)
	s, _ = e.Snapshot(scopedIcon)
	require.Equal(t, "gray", s.Value("text"))

	require.ErrorIs(t, e.ActivateScope(scoped, "sepia"), theme.ErrUnknownTheme)
	require.ErrorIs(t, e.ActivateScope("missing", "dark"), skin.ErrUnknownSkin)
}

func TestUnmount_RemovesSubtree(t *testing.T) {
	e := newEngine(t, Options{})

	root, err := e.Mount("", "searchbar")
	require.NoError(t, err)
	icon, err := e.Mount(root, "searchbar-icon")
	require.NoError(t, err)
	require.NoError(t, e.ActivateScope(root, "dark"))

	require.NoError(t, e.Unmount(root))

	require.Zero(t, e.Registry().Len())
	_, ok := e.Snapshot(icon)
	require.False(t, ok)
	_, scoped := e.Store().ScopeOf(root)
	require.False(t, scoped)

	require.ErrorIs(t, e.Unmount(root), skin.ErrUnknownSkin)
}

func TestUnmount_RepeatedMountsDoNotLeak(t *testing.T) {
	e := newEngine(t, Options{})

	for range 100 {
		root, err := e.Mount("", "searchbar")
		require.NoError(t, err)
		_, err = e.Mount(root, "searchbar-icon")
		require.NoError(t, err)
		require.NoError(t, e.Unmount(root))
	}
	require.Zero(t, e.Registry().Len())
	require.Empty(t, e.snapshots)
	require.Empty(t, e.states)
}

func TestSubscribe_DeliversLatestSnapshotOnly(t *testing.T) {
	e := newEngine(t, Options{})
	id, err := e.Mount("", "button")
	require.NoError(t, err)

	sub := e.Subscribe(context.Background())
	_, err = e.SetState(id, variant.ElementState{Hovered: true})
	require.NoError(t, err)
	_, err = e.SetState(id, variant.ElementState{Disabled: true})
	require.NoError(t, err)
	_, err = e.SetState(id, variant.ElementState{Hovered: true, Disabled: true})
	require.NoError(t, err)

	events := sub.Drain()
	require.Len(t, events, 1)
	require.Equal(t, id, events[0].Key)
	require.Equal(t, "mid-gray", events[0].Payload.Style.Value("bg"))
	require.Equal(t, 2, sub.Superseded())
}

func TestSubscribe_UnmountPublishesDelete(t *testing.T) {
	e := newEngine(t, Options{})
	root, err := e.Mount("", "searchbar")
	require.NoError(t, err)
	icon, err := e.Mount(root, "searchbar-icon")
	require.NoError(t, err)

	sub := e.Subscribe(context.Background())
	require.NoError(t, e.Unmount(root))

	events := sub.Drain()
	require.Len(t, events, 2)
	for _, ev := range events {
		require.Equal(t, pubsub.DeletedEvent, ev.Type)
	}
	require.ElementsMatch(t, []skin.InstanceID{root, icon}, []skin.InstanceID{events[0].Key, events[1].Key})
}

func TestResolveElement_DoesNotStore(t *testing.T) {
	e := newEngine(t, Options{})
	dd, err := e.Mount("", "dropdown")
	require.NoError(t, err)
	opt, err := e.Mount(dd, "dropdown-option")
	require.NoError(t, err)

	selected := variant.ElementState{}.WithAttr("aria-selected", "true")
	s, err := e.ResolveElement(opt, selected)
	require.NoError(t, err)
	require.Equal(t, "blue", s.Value("bg"))

	stored, _ := e.Snapshot(opt)
	require.Equal(t, "white", stored.Value("bg"))

	_, err = e.ResolveElement("missing", selected)
	require.ErrorIs(t, err, skin.ErrUnknownSkin)
}

func TestLoadTheme_ReloadRecomputes(t *testing.T) {
	e := newEngine(t, Options{})
	id, err := e.Mount("", "button")
	require.NoError(t, err)
	before, _ := e.Snapshot(id)

	def := lightTheme()
	def.Rules[0] = rule("button", "bg", "ivory")
	require.NoError(t, e.LoadTheme(context.Background(), def))

	after, _ := e.Snapshot(id)
	require.Equal(t, "ivory", after.Value("bg"))
	require.Greater(t, after.Revision(), before.Revision())
}

func TestLoadTheme_RejectedKeepsSnapshots(t *testing.T) {
	e := newEngine(t, Options{})
	id, err := e.Mount("", "button")
	require.NoError(t, err)

	def := lightTheme()
	def.Rules = append(def.Rules, rule("checkbox", "bg", "red"))
	require.ErrorIs(t, e.LoadTheme(context.Background(), def), theme.ErrUnknownTarget)

	s, _ := e.Snapshot(id)
	require.Equal(t, "white", s.Value("bg"))
}

func TestCache_MemoizesPerVariantKey(t *testing.T) {
	e := newEngine(t, Options{})

	_, err := e.Mount("", "button")
	require.NoError(t, err)
	first := e.CacheStats()
	_, err = e.Mount("", "button")
	require.NoError(t, err)
	second := e.CacheStats()

	require.Equal(t, first.Misses, second.Misses, "same theme, skin and variants")
	require.Equal(t, first.Hits+1, second.Hits)
}

func TestCache_Disabled(t *testing.T) {
	e := newEngine(t, Options{DisableCache: true})

	_, err := e.Mount("", "button")
	require.NoError(t, err)
	_, err = e.Mount("", "button")
	require.NoError(t, err)

	require.Zero(t, e.CacheStats().Hits)
	require.Zero(t, e.CacheStats().Misses)
}

func TestNoActiveTheme_FallsBackToDefaults(t *testing.T) {
	vocab := skin.NewVocabulary()
	require.NoError(t, vocab.Declare(skin.Decl{ID: "button", Hooks: []string{skin.HookBg}}))
	require.NoError(t, vocab.SetDefault(skin.HookBg, "transparent"))
	resolver, err := variant.NewResolver()
	require.NoError(t, err)

	e := New(skin.NewRegistry(vocab), theme.NewStore(vocab, resolver), Options{})
	defer e.Close()

	id, err := e.Mount("", "button")
	require.NoError(t, err)
	s, ok := e.Snapshot(id)
	require.True(t, ok)
	require.Equal(t, "transparent", s.Value("bg"))
}
