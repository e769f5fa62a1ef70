package styles

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

// NewStyledInput creates a themed text input.
func NewStyledInput(theme *Theme, placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(theme.Muted)
	ti.TextStyle = lipgloss.NewStyle().Foreground(theme.Text)
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(theme.Accent)
	ti.PromptStyle = lipgloss.NewStyle().Foreground(theme.Accent)
	ti.Prompt = "> "
	return ti
}

// NewPromptInput creates the composer input of the play screen.
func NewPromptInput(theme *Theme) textinput.Model {
	ti := NewStyledInput(theme, "Message")
	ti.Prompt = IconPrompt + " "
	ti.CharLimit = 4096
	return ti
}

// InputBox wraps a text input in a styled box.
func (t *Theme) InputBox(input string, focused bool) string {
	style := t.Input
	if focused {
		style = t.InputFocused
	}
	return style.Render(input)
}

// GhostLine renders typed text followed by the untyped rest of a suggestion.
// A suggestion that does not extend the typed text is shown on its own after
// an arrow.
func (t *Theme) GhostLine(typed, suggestion string) string {
	if suggestion == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(suggestion, typed); ok {
		return t.Ghost.Render(rest)
	}
	return t.Ghost.Render("  " + IconArrow + " " + suggestion)
}

