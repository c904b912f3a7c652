package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
)

// DescriptionEditor is a modal textarea for rewriting an endpoint's
// description before it reaches the collection.
type DescriptionEditor struct {
	textarea textarea.Model
}

// NewDescriptionEditor creates a focused editor seeded with the current
// description.
func NewDescriptionEditor(initial string) DescriptionEditor {
	ta := textarea.New()
	ta.Placeholder = "Describe what this endpoint does..."
	ta.SetValue(initial)
	ta.Focus()
	return DescriptionEditor{textarea: ta}
}

func (m DescriptionEditor) Init() tea.Cmd {
	return textarea.Blink
}

func (m DescriptionEditor) Update(msg tea.Msg) (DescriptionEditor, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc:
			if m.textarea.Focused() {
				m.textarea.Blur()
			}
		case tea.KeyCtrlC:
			return m, tea.Quit
		default:
			if !m.textarea.Focused() {
				cmd = m.textarea.Focus()
				cmds = append(cmds, cmd)
			}
		}
	}

	m.textarea, cmd = m.textarea.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// Value returns the edited description.
func (m DescriptionEditor) Value() string {
	return m.textarea.Value()
}

func (m DescriptionEditor) View(title string) string {
	return fmt.Sprintf(
		"%s\n\n%s\n\n%s",
		editHeaderStyle.Render(title),
		m.textarea.View(),
		"(ctrl+s to save)",
	) + "\n\n"
}
