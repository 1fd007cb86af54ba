package components

import (
	"fmt"

	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/engine"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/variant"
)

// SearchBarVariant selects the search bar look.
type SearchBarVariant string

const (
	SearchBarDefault SearchBarVariant = "default"
	SearchBarOutline SearchBarVariant = "outline"
)

// SearchBarConfig configures a SearchBar.
type SearchBarConfig struct {
	Variant     SearchBarVariant // defaults to default
	Placeholder string
}

// SearchBar is a mounted search bar: the root plus icon and input children.
type SearchBar struct {
	eng   *engine.Engine
	cfg   SearchBarConfig
	root  skin.InstanceID
	icon  skin.InstanceID
	input skin.InstanceID
	state variant.ElementState
	query string
}

// MountSearchBar mounts a search bar under parent.
func MountSearchBar(eng *engine.Engine, parent skin.InstanceID, cfg SearchBarConfig) (*SearchBar, error) {
	if cfg.Variant == "" {
		cfg.Variant = SearchBarDefault
	}
	if cfg.Variant != SearchBarDefault && cfg.Variant != SearchBarOutline {
		return nil, fmt.Errorf("searchbar variant %q: want default or outline", cfg.Variant)
	}

	root, err := eng.Mount(parent, SkinSearchBar)
	if err != nil {
		return nil, err
	}
	sb := &SearchBar{eng: eng, cfg: cfg, root: root}
	if sb.icon, err = eng.Mount(root, SkinSearchBarIcon); err != nil {
		_ = eng.Unmount(root)
		return nil, err
	}
	if sb.input, err = eng.Mount(root, SkinSearchBarInput); err != nil {
		_ = eng.Unmount(root)
		return nil, err
	}
	sb.state = variant.ElementState{}.WithAttr(AttrVariant, string(cfg.Variant))
	if err := sb.apply(); err != nil {
		return nil, err
	}
	return sb, nil
}

// ID returns the root instance id.
func (sb *SearchBar) ID() skin.InstanceID { return sb.root }

// Config returns the configuration.
func (sb *SearchBar) Config() SearchBarConfig { return sb.cfg }

// Query returns the typed text.
func (sb *SearchBar) Query() string { return sb.query }

// SetQuery replaces the typed text.
func (sb *SearchBar) SetQuery(q string) { sb.query = q }

// Style returns the root snapshot.
func (sb *SearchBar) Style() cascade.Style { return sb.snapshot(sb.root) }

// IconStyle returns the icon snapshot.
func (sb *SearchBar) IconStyle() cascade.Style { return sb.snapshot(sb.icon) }

// InputStyle returns the input snapshot.
func (sb *SearchBar) InputStyle() cascade.Style { return sb.snapshot(sb.input) }

// SetHovered records pointer hover on the bar.
func (sb *SearchBar) SetHovered(on bool) error {
	sb.state.Hovered = on
	return sb.apply()
}

// SetFocused records keyboard focus on the input.
func (sb *SearchBar) SetFocused(on bool) error {
	sb.state.Focused = on
	return sb.apply()
}

// Unmount removes the bar and its children.
func (sb *SearchBar) Unmount() error { return sb.eng.Unmount(sb.root) }

// apply pushes the bar state to all three points. Children share the root's
// element state: hovering the bar hovers its icon.
func (sb *SearchBar) apply() error {
	for _, id := range []skin.InstanceID{sb.root, sb.icon, sb.input} {
		if _, err := sb.eng.SetState(id, sb.state); err != nil {
			return err
		}
	}
	return nil
}

func (sb *SearchBar) snapshot(id skin.InstanceID) cascade.Style {
	s, _ := sb.eng.Snapshot(id)
	return s
}
