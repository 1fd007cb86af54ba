package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_On(t *testing.T) {
	tests := []struct {
		name     string
		registry *Registry
		flag     string
		expected bool
	}{
		{"enabled flag", New(map[string]bool{FlagStrictDefaults: true}), FlagStrictDefaults, true},
		{"disabled flag", New(map[string]bool{FlagResolveCache: false}), FlagResolveCache, false},
		{"default kept", New(map[string]bool{FlagStrictDefaults: true}), FlagResolveCache, true},
		{"unknown flag", New(nil), "unknown-flag", false},
		{"nil registry", nil, FlagResolveCache, false},
		{"nil map uses defaults", New(nil), FlagResolveCache, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, tt.registry.On(tt.flag))
		})
	}
}

func TestDefaults(t *testing.T) {
	require.Equal(t, map[string]bool{FlagResolveCache: true, FlagStrictDefaults: false}, Defaults())
	require.Len(t, Known(), 2)
	require.True(t, IsKnown(FlagStrictDefaults))
	require.False(t, IsKnown("nope"))
}

func TestRegistry_IsolatedFromCaller(t *testing.T) {
	original := map[string]bool{FlagStrictDefaults: true}
	r := New(original)
	original[FlagStrictDefaults] = false
	require.True(t, r.On(FlagStrictDefaults), "registry keeps its own copy")
	require.Equal(t, []string{FlagResolveCache, FlagStrictDefaults}, r.Enabled())
	require.Nil(t, (*Registry)(nil).Enabled())
}
