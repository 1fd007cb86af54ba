package components

import (
	"fmt"

	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/engine"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/variant"
)

// Size is the button size.
type Size string

const (
	SizeSmall  Size = "sm"
	SizeMedium Size = "md"
	SizeLarge  Size = "lg"
)

// Valid reports whether s is one of the declared sizes.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge:
		return true
	}
	return false
}

// Padding returns the horizontal padding used when rendering s.
func (s Size) Padding() int {
	switch s {
	case SizeSmall:
		return 1
	case SizeLarge:
		return 4
	}
	return 2
}

// ButtonConfig configures a Button.
type ButtonConfig struct {
	Size     Size // defaults to md
	Label    string
	Disabled bool
}

// Button is a mounted button: one skin point, no children.
type Button struct {
	eng   *engine.Engine
	id    skin.InstanceID
	cfg   ButtonConfig
	state variant.ElementState
}

// MountButton mounts a button under parent (empty for top level).
func MountButton(eng *engine.Engine, parent skin.InstanceID, cfg ButtonConfig) (*Button, error) {
	if cfg.Size == "" {
		cfg.Size = SizeMedium
	}
	if !cfg.Size.Valid() {
		return nil, fmt.Errorf("button size %q: want sm, md or lg", cfg.Size)
	}
	id, err := eng.Mount(parent, SkinButton)
	if err != nil {
		return nil, err
	}
	b := &Button{eng: eng, id: id, cfg: cfg}
	b.state = variant.ElementState{Disabled: cfg.Disabled}.WithAttr(AttrSize, string(cfg.Size))
	if err := b.apply(); err != nil {
		return nil, err
	}
	return b, nil
}

// ID returns the button's instance id.
func (b *Button) ID() skin.InstanceID { return b.id }

// Config returns the current configuration.
func (b *Button) Config() ButtonConfig { return b.cfg }

// Style returns the current snapshot.
func (b *Button) Style() cascade.Style {
	s, _ := b.eng.Snapshot(b.id)
	return s
}

// SetHovered records pointer hover.
func (b *Button) SetHovered(on bool) error {
	b.state.Hovered = on
	return b.apply()
}

// SetPressed records a pointer press. Disabled buttons ignore presses.
func (b *Button) SetPressed(on bool) error {
	if b.cfg.Disabled {
		on = false
	}
	b.state.Pressed = on
	return b.apply()
}

// SetFocused records keyboard focus.
func (b *Button) SetFocused(on bool) error {
	b.state.Focused = on
	return b.apply()
}

// SetDisabled toggles the disabled flag.
func (b *Button) SetDisabled(on bool) error {
	b.cfg.Disabled = on
	b.state.Disabled = on
	if on {
		b.state.Pressed = false
	}
	return b.apply()
}

// Unmount removes the button from the engine.
func (b *Button) Unmount() error { return b.eng.Unmount(b.id) }

func (b *Button) apply() error {
	_, err := b.eng.SetState(b.id, b.state)
	return err
}
