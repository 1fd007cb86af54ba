package components

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zjrosen/skins/internal/cascade"
	"github.com/zjrosen/skins/internal/engine"
	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/skin"
	"github.com/zjrosen/skins/internal/variant"
)

// ErrUnknownOption is returned when selecting a value no option carries.
var ErrUnknownOption = errors.New("unknown option")

// Option is one dropdown entry.
type Option struct {
	Label string
	Value string
}

// DropdownConfig configures a Dropdown. OnChange receives the newly selected
// value and is only called when the value actually changes.
type DropdownConfig struct {
	Options  []Option
	Value    string
	OnChange func(value string)
}

// Dropdown is a mounted dropdown. All options share one dropdown-option skin
// point; each option is resolved with its own element state.
type Dropdown struct {
	eng    *engine.Engine
	cfg    DropdownConfig
	root   skin.InstanceID
	icon   skin.InstanceID
	menu   skin.InstanceID
	option skin.InstanceID
	state  variant.ElementState
	open   bool
	cursor int
}

// MountDropdown mounts a dropdown under parent.
func MountDropdown(eng *engine.Engine, parent skin.InstanceID, cfg DropdownConfig) (*Dropdown, error) {
	seen := make(map[string]bool, len(cfg.Options))
	for _, o := range cfg.Options {
		if seen[o.Value] {
			return nil, fmt.Errorf("dropdown option value %q listed twice", o.Value)
		}
		seen[o.Value] = true
	}
	if cfg.Value != "" && !seen[cfg.Value] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOption, cfg.Value)
	}
	cfg.Options = slices.Clone(cfg.Options)

	root, err := eng.Mount(parent, SkinDropdown)
	if err != nil {
		return nil, err
	}
	d := &Dropdown{eng: eng, cfg: cfg, root: root}
	for _, child := range []struct {
		dst  *skin.InstanceID
		skin string
	}{
		{&d.icon, SkinDropdownIcon},
		{&d.menu, SkinDropdownMenu},
		{&d.option, SkinDropdownOption},
	} {
		if *child.dst, err = eng.Mount(root, child.skin); err != nil {
			_ = eng.Unmount(root)
			return nil, err
		}
	}
	d.cursor = max(d.selectedIndex(), 0)
	d.state = variant.ElementState{}.WithAttr(AttrExpanded, attrFalse)
	if err := d.apply(); err != nil {
		return nil, err
	}
	return d, nil
}

// ID returns the root instance id.
func (d *Dropdown) ID() skin.InstanceID { return d.root }

// Options returns the options in display order.
func (d *Dropdown) Options() []Option { return slices.Clone(d.cfg.Options) }

// Value returns the selected value, empty when nothing is selected.
func (d *Dropdown) Value() string { return d.cfg.Value }

// Label returns the label of the selected option.
func (d *Dropdown) Label() string {
	if i := d.selectedIndex(); i >= 0 {
		return d.cfg.Options[i].Label
	}
	return ""
}

// IsOpen reports whether the menu is shown.
func (d *Dropdown) IsOpen() bool { return d.open }

// Cursor returns the highlighted option index.
func (d *Dropdown) Cursor() int { return d.cursor }

// Open shows the menu with the cursor on the selected option.
func (d *Dropdown) Open() error {
	if d.open {
		return nil
	}
	d.open = true
	d.cursor = max(d.selectedIndex(), 0)
	d.state = d.state.WithAttr(AttrExpanded, attrTrue)
	return d.apply()
}

// Close hides the menu.
func (d *Dropdown) Close() error {
	if !d.open {
		return nil
	}
	d.open = false
	d.state = d.state.WithAttr(AttrExpanded, attrFalse)
	return d.apply()
}

// Toggle opens a closed menu and closes an open one.
func (d *Dropdown) Toggle() error {
	if d.open {
		return d.Close()
	}
	return d.Open()
}

// Move shifts the cursor by delta, clamped to the option list.
func (d *Dropdown) Move(delta int) {
	if len(d.cfg.Options) == 0 {
		return
	}
	d.cursor = min(max(d.cursor+delta, 0), len(d.cfg.Options)-1)
}

// Select makes value the selection and closes the menu. OnChange fires only
// when the selection changed.
func (d *Dropdown) Select(value string) error {
	i := slices.IndexFunc(d.cfg.Options, func(o Option) bool { return o.Value == value })
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownOption, value)
	}
	d.cursor = i
	changed := d.cfg.Value != value
	d.cfg.Value = value
	if err := d.Close(); err != nil {
		return err
	}
	if changed {
		log.Debug(log.CatUI, "Dropdown changed", "id", d.root, "value", value)
		if d.cfg.OnChange != nil {
			d.cfg.OnChange(value)
		}
	}
	return nil
}

// SelectCursor selects the highlighted option.
func (d *Dropdown) SelectCursor() error {
	if len(d.cfg.Options) == 0 {
		return nil
	}
	return d.Select(d.cfg.Options[d.cursor].Value)
}

// SetHovered records pointer hover on the trigger.
func (d *Dropdown) SetHovered(on bool) error {
	d.state.Hovered = on
	return d.apply()
}

// SetFocused records keyboard focus on the trigger.
func (d *Dropdown) SetFocused(on bool) error {
	d.state.Focused = on
	return d.apply()
}

// Style returns the trigger snapshot.
func (d *Dropdown) Style() cascade.Style { return d.snapshot(d.root) }

// IconStyle returns the chevron snapshot.
func (d *Dropdown) IconStyle() cascade.Style { return d.snapshot(d.icon) }

// MenuStyle returns the menu snapshot.
func (d *Dropdown) MenuStyle() cascade.Style { return d.snapshot(d.menu) }

// OptionStyle resolves option i: aria-selected follows the selection and the
// cursor counts as hover.
func (d *Dropdown) OptionStyle(i int) (cascade.Style, error) {
	if i < 0 || i >= len(d.cfg.Options) {
		return cascade.Style{}, fmt.Errorf("option index %d out of range", i)
	}
	return d.eng.ResolveElement(d.option, d.optionState(i))
}

// Unmount removes the dropdown and its children.
func (d *Dropdown) Unmount() error { return d.eng.Unmount(d.root) }

func (d *Dropdown) optionState(i int) variant.ElementState {
	selected := attrFalse
	if d.cfg.Options[i].Value == d.cfg.Value {
		selected = attrTrue
	}
	return variant.ElementState{Hovered: d.open && i == d.cursor}.WithAttr(AttrSelected, selected)
}

func (d *Dropdown) selectedIndex() int {
	return slices.IndexFunc(d.cfg.Options, func(o Option) bool { return o.Value == d.cfg.Value })
}

// apply pushes the trigger state to the trigger and its icon. The menu is a
// separate element: it only sees whether it is expanded.
func (d *Dropdown) apply() error {
	for _, id := range []skin.InstanceID{d.root, d.icon} {
		if _, err := d.eng.SetState(id, d.state); err != nil {
			return err
		}
	}
	expanded := attrFalse
	if d.open {
		expanded = attrTrue
	}
	_, err := d.eng.SetState(d.menu, variant.ElementState{}.WithAttr(AttrExpanded, expanded))
	return err
}

func (d *Dropdown) snapshot(id skin.InstanceID) cascade.Style {
	s, _ := d.eng.Snapshot(id)
	return s
}
