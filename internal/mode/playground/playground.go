// Package playground is an interactive showcase of the themed components.
package playground

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/skins/internal/components"
	"github.com/zjrosen/skins/internal/engine"
	"github.com/zjrosen/skins/internal/keys"
	"github.com/zjrosen/skins/internal/log"
	"github.com/zjrosen/skins/internal/pubsub"
	"github.com/zjrosen/skins/internal/skin"
)

// Target identifies one showcased component.
type Target int

const (
	TargetNone Target = iota - 1
	TargetButton
	TargetSearch
	TargetDropdown
	targetCount
)

func (t Target) String() string {
	switch t {
	case TargetButton:
		return "Button"
	case TargetSearch:
		return "SearchBar"
	case TargetDropdown:
		return "Dropdown"
	}
	return "none"
}

// pressDuration is how long a keyboard press keeps the button pressed.
const pressDuration = 150 * time.Millisecond

type releaseMsg struct{}

// Config configures a Model.
type Config struct {
	// Themes cycled by the theme key. Defaults to every loaded theme.
	Themes  []string
	Label   string
	Options []components.Option
}

// DefaultOptions are the dropdown entries used when Config has none.
var DefaultOptions = []components.Option{
	{Label: "Small", Value: "sm"},
	{Label: "Medium", Value: "md"},
	{Label: "Large", Value: "lg"},
}

// Model holds the playground state. Components are mounted once; their
// styles are read back from engine snapshots on every render.
type Model struct {
	ctx      context.Context
	eng      *engine.Engine
	keys     keys.PlaygroundKeyMap
	help     help.Model
	listener *pubsub.ContinuousListener[skin.InstanceID, engine.Snapshot]

	themes   []string
	button   *components.Button
	search   *components.SearchBar
	dropdown *components.Dropdown
	input    textinput.Model

	focus      Target
	hover      Target
	lastAction string
	snapshots  int
	err        error

	width  int
	height int
}

// New mounts the showcased components on eng and subscribes to its
// snapshots. The subscription ends with ctx.
func New(ctx context.Context, eng *engine.Engine, cfg Config) (Model, error) {
	if len(cfg.Themes) == 0 {
		for _, th := range eng.Store().Themes() {
			cfg.Themes = append(cfg.Themes, th.ID())
		}
	}
	if len(cfg.Themes) == 0 {
		return Model{}, fmt.Errorf("playground: no themes loaded")
	}
	if cfg.Label == "" {
		cfg.Label = "Save"
	}
	if len(cfg.Options) == 0 {
		cfg.Options = DefaultOptions
	}

	m := Model{
		ctx:    ctx,
		eng:    eng,
		keys:   keys.Playground,
		help:   help.New(),
		themes: cfg.Themes,
		focus:  TargetButton,
		hover:  TargetNone,
		width:  100,
		height: 30,
	}

	var err error
	if m.button, err = components.MountButton(eng, "", components.ButtonConfig{Label: cfg.Label}); err != nil {
		return Model{}, fmt.Errorf("mount button: %w", err)
	}
	if m.search, err = components.MountSearchBar(eng, "", components.SearchBarConfig{Placeholder: "Search"}); err != nil {
		return Model{}, fmt.Errorf("mount searchbar: %w", err)
	}
	m.dropdown, err = components.MountDropdown(eng, "", components.DropdownConfig{
		Options:  cfg.Options,
		Value:    cfg.Options[0].Value,
		OnChange: func(v string) { log.Debug(log.CatUI, "Dropdown changed", "value", v) },
	})
	if err != nil {
		return Model{}, fmt.Errorf("mount dropdown: %w", err)
	}

	m.input = textinput.New()
	m.input.Prompt = ""
	m.input.Placeholder = m.search.Config().Placeholder
	m.input.Width = 24

	if err := m.button.SetFocused(true); err != nil {
		return Model{}, err
	}
	m.listener = pubsub.NewContinuousListener[skin.InstanceID, engine.Snapshot](ctx, eng)
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.listener.Listen()
}

// Focus returns the focused component.
func (m Model) Focus() Target { return m.focus }

// Hover returns the component under the pointer.
func (m Model) Hover() Target { return m.hover }

// Button returns the showcased button.
func (m Model) Button() *components.Button { return m.button }

// SearchBar returns the showcased search bar.
func (m Model) SearchBar() *components.SearchBar { return m.search }

// Dropdown returns the showcased dropdown.
func (m Model) Dropdown() *components.Dropdown { return m.dropdown }

// Snapshots returns how many snapshot updates the model has received.
func (m Model) Snapshots() int { return m.snapshots }

// LastAction describes the most recent user action.
func (m Model) LastAction() string { return m.lastAction }

// Err returns the last component error, if any.
func (m Model) Err() error { return m.err }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case pubsub.BatchMsg[skin.InstanceID, engine.Snapshot]:
		m.snapshots += len(msg.Events)
		return m, m.listener.Listen()

	case releaseMsg:
		m.check(m.button.SetPressed(false))
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)
	}

	if m.focus == TargetSearch {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyMsg handles keyboard input. A focused search bar receives every
// key except those that move focus or leave the input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == TargetSearch && keys.Typing(msg.String()) {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.search.SetQuery(m.input.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		return m.setFocus((m.focus + 1) % targetCount)
	case key.Matches(msg, m.keys.Prev):
		return m.setFocus((m.focus + targetCount - 1) % targetCount)
	case key.Matches(msg, m.keys.Escape):
		m.check(m.dropdown.Close())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Disable):
		disabled := !m.button.Config().Disabled
		m.check(m.button.SetDisabled(disabled))
		m.lastAction = fmt.Sprintf("Button disabled: %t", disabled)
	case key.Matches(msg, m.keys.Theme):
		m.cycleTheme()
	case key.Matches(msg, m.keys.Enter):
		return m.activate()
	case key.Matches(msg, m.keys.Up):
		if m.focus == TargetDropdown && m.dropdown.IsOpen() {
			m.dropdown.Move(-1)
		}
	case key.Matches(msg, m.keys.Down):
		if m.focus == TargetDropdown && m.dropdown.IsOpen() {
			m.dropdown.Move(1)
		}
	}
	return m, nil
}

// handleMouseMsg tracks hover through zones and treats a left press as
// focus plus activation.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	option := m.optionAt(msg)
	if option >= 0 {
		m.dropdown.Move(option - m.dropdown.Cursor())
	}
	m.setHover(m.targetAt(msg))

	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return m, nil
	}
	if option >= 0 {
		m.selectCursor()
		return m, nil
	}
	if m.hover == TargetNone {
		return m, nil
	}
	var cmd tea.Cmd
	m, cmd = m.focusModel(m.hover)
	if m.hover == TargetSearch {
		return m, cmd
	}
	next, act := m.activate()
	return next, tea.Batch(cmd, act)
}

func (m Model) targetAt(msg tea.MouseMsg) Target {
	for _, t := range []Target{TargetButton, TargetSearch, TargetDropdown} {
		if z := zone.Get(zoneID(t)); z != nil && z.InBounds(msg) {
			return t
		}
	}
	return TargetNone
}

func (m Model) optionAt(msg tea.MouseMsg) int {
	if !m.dropdown.IsOpen() {
		return -1
	}
	for i := range m.dropdown.Options() {
		if z := zone.Get(optionZoneID(i)); z != nil && z.InBounds(msg) {
			return i
		}
	}
	return -1
}

func (m Model) setFocus(t Target) (tea.Model, tea.Cmd) {
	return m.focusModel(t)
}

func (m Model) focusModel(t Target) (Model, tea.Cmd) {
	if t == m.focus {
		return m, nil
	}
	switch m.focus {
	case TargetButton:
		m.check(m.button.SetFocused(false))
	case TargetSearch:
		m.input.Blur()
		m.check(m.search.SetFocused(false))
	case TargetDropdown:
		m.check(m.dropdown.Close())
		m.check(m.dropdown.SetFocused(false))
	}

	m.focus = t
	var cmd tea.Cmd
	switch t {
	case TargetButton:
		m.check(m.button.SetFocused(true))
	case TargetSearch:
		cmd = m.input.Focus()
		m.check(m.search.SetFocused(true))
	case TargetDropdown:
		m.check(m.dropdown.SetFocused(true))
	}
	return m, cmd
}

func (m *Model) setHover(t Target) {
	if t == m.hover {
		return
	}
	m.setHovered(m.hover, false)
	m.setHovered(t, true)
	m.hover = t
}

func (m *Model) setHovered(t Target, on bool) {
	switch t {
	case TargetButton:
		m.check(m.button.SetHovered(on))
	case TargetSearch:
		m.check(m.search.SetHovered(on))
	case TargetDropdown:
		m.check(m.dropdown.SetHovered(on))
	}
}

// activate performs the enter action of the focused component.
func (m Model) activate() (tea.Model, tea.Cmd) {
	switch m.focus {
	case TargetButton:
		if m.button.Config().Disabled {
			m.lastAction = "Button is disabled"
			return m, nil
		}
		m.check(m.button.SetPressed(true))
		m.lastAction = "Pressed " + m.button.Config().Label
		return m, tea.Tick(pressDuration, func(time.Time) tea.Msg { return releaseMsg{} })
	case TargetSearch:
		m.lastAction = fmt.Sprintf("Search: %q", m.search.Query())
	case TargetDropdown:
		if m.dropdown.IsOpen() {
			m.selectCursor()
			return m, nil
		}
		m.check(m.dropdown.Open())
	}
	return m, nil
}

func (m *Model) selectCursor() {
	m.check(m.dropdown.SelectCursor())
	m.lastAction = "Selected " + m.dropdown.Label()
}

func (m *Model) cycleTheme() {
	i := slices.Index(m.themes, m.eng.Store().ActiveID())
	next := m.themes[(i+1)%len(m.themes)]
	if err := m.eng.Activate(next); err != nil {
		m.check(err)
		return
	}
	m.lastAction = "Theme: " + next
}

// check records a component error. Errors are shown in the status line
// rather than ending the program.
func (m *Model) check(err error) {
	if err == nil {
		return
	}
	log.ErrorErr(log.CatUI, "Playground action failed", err)
	m.err = err
}

// Close unmounts the showcased components.
func (m Model) Close() error {
	var errs []error
	for _, unmount := range []func() error{m.button.Unmount, m.search.Unmount, m.dropdown.Unmount} {
		if err := unmount(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
