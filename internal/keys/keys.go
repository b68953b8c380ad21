package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down  key.Binding
	Up    key.Binding
	Left  key.Binding
	Right key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	Search  key.Binding
	Command key.Binding
	Help    key.Binding

	// Views
	ToggleView key.Binding
	PriceBook  key.Binding
	Settings   key.Binding

	// Job actions
	New       key.Binding
	Edit      key.Binding
	Delete    key.Binding
	MovePrev  key.Binding
	MoveNext  key.Binding
	AddTodo   key.Binding
	Toggle    key.Binding
	Address   key.Binding
	Attach    key.Binding
	Seed      key.Binding
	StageNext key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev column"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next column"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open job"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command palette"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		ToggleView: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "board/table"),
		),
		PriceBook: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "price book"),
		),
		Settings: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "settings"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		MovePrev: key.NewBinding(
			key.WithKeys("H", "shift+left"),
			key.WithHelp("H", "move to prev stage"),
		),
		MoveNext: key.NewBinding(
			key.WithKeys("L", "shift+right"),
			key.WithHelp("L", "move to next stage"),
		),
		AddTodo: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "add todo"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle todo"),
		),
		Address: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "look up address"),
		),
		Attach: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "attach file"),
		),
		Seed: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "load KNG July 2025"),
		),
		StageNext: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stage filter"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Select, k.Back, k.Quit},
		{k.Search, k.StageNext, k.Command, k.Help, k.ToggleView, k.PriceBook, k.Settings},
		{k.New, k.Edit, k.Delete, k.MovePrev, k.MoveNext},
		{k.AddTodo, k.Toggle, k.Address, k.Attach, k.Seed},
	}
}
