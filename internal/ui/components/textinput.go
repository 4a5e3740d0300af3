package components

import (
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levo/internal/ui/theme"
)

// TextInput wraps bubbles/textinput with Levo styling and an optional
// validator run on submit.
type TextInput struct {
	Model    textinput.Model
	Validate func(string) error
	err      error
}

// NewTextInput creates a new focused text input.
func NewTextInput(placeholder string, charLimit int, validate func(string) error) TextInput {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Focus()
	if charLimit > 0 {
		ti.CharLimit = charLimit
	}
	return TextInput{Model: ti, Validate: validate}
}

// Init returns the initial command.
func (t TextInput) Init() tea.Cmd {
	return t.Model.Focus()
}

// Update forwards messages to the underlying input and clears any stale
// validation error on edit.
func (t TextInput) Update(msg tea.Msg) (TextInput, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		t.err = nil
	}
	var cmd tea.Cmd
	t.Model, cmd = t.Model.Update(msg)
	return t, cmd
}

// Submit validates the trimmed value. The error is kept for rendering.
func (t *TextInput) Submit() (string, error) {
	v := strings.TrimSpace(t.Model.Value())
	if t.Validate != nil {
		t.err = t.Validate(v)
	}
	return v, t.err
}

// Value returns the current input value.
func (t TextInput) Value() string {
	return t.Model.Value()
}

// View renders the input with its validation error, if any.
func (t TextInput) View() string {
	view := t.Model.View()
	if t.err != nil {
		view += "\n" + lipgloss.NewStyle().Foreground(theme.Error).Render("✗ "+t.err.Error())
	}
	return view
}
