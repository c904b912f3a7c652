package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/recordkit/postsync/internal/tui/models"
)

// newItemDelegate returns a list.DefaultDelegate that handles the
// exclude toggle on the selected endpoint.
func newItemDelegate(keys *delegateKeyMap) list.DefaultDelegate {
	d := list.NewDefaultDelegate()

	d.UpdateFunc = func(msg tea.Msg, m *list.Model) tea.Cmd {
		item, ok := m.SelectedItem().(models.EndpointItem)
		if !ok {
			return nil
		}

		if msg, ok := msg.(tea.KeyMsg); ok {
			if key.Matches(msg, keys.exclude) {
				updated := item.ToggleExcluded()
				m.SetItem(m.Index(), updated)
				if updated.Excluded {
					return m.NewStatusMessage(statusMessageStyle("Excluded " + item.Title() + " from sync"))
				}
				return m.NewStatusMessage(statusMessageStyle("Restored " + item.Title()))
			}
		}
		return nil
	}

	help := []key.Binding{keys.exclude}

	d.ShortHelpFunc = func() []key.Binding {
		return help
	}

	d.FullHelpFunc = func() [][]key.Binding {
		return [][]key.Binding{help}
	}

	return d
}

type delegateKeyMap struct {
	exclude key.Binding
}

func newDelegateKeyMap() *delegateKeyMap {
	return &delegateKeyMap{
		exclude: key.NewBinding(
			key.WithKeys("x", "backspace"),
			key.WithHelp("x", "Exclude from sync"),
		),
	}
}
