package ui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrCancelled is returned by Pick when the user quits without choosing.
var ErrCancelled = errors.New("selection cancelled")

// PickerItem is one selectable row.
type PickerItem struct {
	Label  string
	Detail string
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Quit   key.Binding
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "cancel")),
}

// Picker is a single-choice list model.
type Picker struct {
	title    string
	items    []PickerItem
	cursor   int
	chosen   bool
	quitting bool
}

// NewPicker returns a Picker over items.
func NewPicker(title string, items []PickerItem) Picker {
	return Picker{title: title, items: items}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch {
	case key.Matches(km, keys.Quit):
		p.quitting = true
		return p, tea.Quit
	case key.Matches(km, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(km, keys.Down):
		if p.cursor < len(p.items)-1 {
			p.cursor++
		}
	case key.Matches(km, keys.Choose):
		if len(p.items) > 0 {
			p.chosen = true
			return p, tea.Quit
		}
	}
	return p, nil
}

func (p Picker) View() string {
	if p.chosen || p.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(Title.Render(p.title) + "\n\n")
	for i, item := range p.items {
		prefix := "  "
		label := item.Label
		if i == p.cursor {
			prefix = Cursor.Render("> ")
			label = Cursor.Render(label)
		}
		b.WriteString(prefix + label)
		if item.Detail != "" {
			b.WriteString("  " + Muted.Render(item.Detail))
		}
		b.WriteString("\n")
	}
	help := []string{}
	for _, k := range []key.Binding{keys.Up, keys.Down, keys.Choose, keys.Quit} {
		h := k.Help()
		help = append(help, h.Key+" "+h.Desc)
	}
	b.WriteString("\n" + Muted.Render(strings.Join(help, " • ")) + "\n")
	return b.String()
}

// Choice returns the selected index, if any.
func (p Picker) Choice() (int, bool) {
	if !p.chosen {
		return -1, false
	}
	return p.cursor, true
}

// Pick runs the picker on in/out and returns the chosen index.
func Pick(title string, items []PickerItem, in io.Reader, out io.Writer) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("nothing to choose from")
	}
	final, err := tea.NewProgram(NewPicker(title, items), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return -1, fmt.Errorf("running picker: %w", err)
	}
	idx, ok := final.(Picker).Choice()
	if !ok {
		return -1, ErrCancelled
	}
	return idx, nil
}
