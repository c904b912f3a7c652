package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/recordkit/postsync/internal/adjust"
	"github.com/recordkit/postsync/internal/tui/models"
)

type listKeyMap struct {
	editDescription key.Binding
	save            key.Binding
	finish          key.Binding
	quit            key.Binding
}

// DoneMsg carries the reviewed endpoints to the export view.
type DoneMsg struct {
	Endpoints []*models.EndpointItem
}

func newListKeyMap() *listKeyMap {
	return &listKeyMap{
		editDescription: key.NewBinding(
			key.WithKeys("E", "e"),
			key.WithHelp("E", "Edit Description"),
		),
		save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Save"),
		),
		finish: key.NewBinding(
			key.WithKeys("F", "f"),
			key.WithHelp("F", "Finish"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "Quit"),
		),
	}
}

// ListPageModel is the endpoint review list with an optional editor modal.
type ListPageModel struct {
	list      list.Model
	keys      *listKeyMap
	editing   bool
	editIndex int
	editor    DescriptionEditor
}

// NewListPageModel builds the review list, pre-applying any existing
// adjustments so a second review session starts from the saved state.
func NewListPageModel(endpoints []models.EndpointItem, adjuster *adjust.Adjuster) ListPageModel {
	keys := newListKeyMap()

	items := make([]list.Item, len(endpoints))
	for i, item := range endpoints {
		item.Override = adjuster.Description(item.Desc.Path, item.Desc.Method, "")
		item.Excluded = !adjuster.Selected(item.Desc.Path, item.Desc.Method)
		items[i] = item
	}

	l := list.New(items, newItemDelegate(newDelegateKeyMap()), 0, 0)
	l.Title = titleStyle.Render("Endpoint review")
	l.SetShowFilter(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			keys.editDescription,
			keys.finish,
			keys.quit,
		}
	}

	return ListPageModel{list: l, keys: keys, editIndex: -1}
}

func (m ListPageModel) Init() tea.Cmd {
	return nil
}

func (m ListPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.editing {
		return m.updateEditing(msg)
	}
	return m.updateList(msg)
}

func (m ListPageModel) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.save) {
			m.editing = false
			item := m.list.SelectedItem().(models.EndpointItem)
			edited := m.editor.Value()
			if edited != item.Desc.Description {
				m.list.SetItem(m.editIndex, item.WithOverride(edited))
				m.list.NewStatusMessage(statusMessageStyle("Updated description for " + item.Title()))
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m ListPageModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.editDescription):
			item, ok := m.list.SelectedItem().(models.EndpointItem)
			if !ok {
				break
			}
			if item.Excluded {
				m.list.NewStatusMessage(statusMessageStyle("Can't edit excluded endpoints"))
				return m, nil
			}
			m.editing = true
			m.editIndex = m.list.Index()
			m.editor = NewDescriptionEditor(item.Description())
			return m, nil

		case key.Matches(msg, m.keys.finish):
			return m, func() tea.Msg {
				return DoneMsg{Endpoints: m.ReviewedEndpoints()}
			}
		}

	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.list.SetSize(msg.Width-h, msg.Height-v)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m ListPageModel) View() string {
	if m.editing {
		return docStyle.Render(m.editor.View(m.list.SelectedItem().(models.EndpointItem).Title()))
	}
	return docStyle.Render(m.list.View())
}

// ReviewedEndpoints returns the currently visible items with their edits.
func (m ListPageModel) ReviewedEndpoints() []*models.EndpointItem {
	visible := m.list.VisibleItems()
	result := make([]*models.EndpointItem, len(visible))
	for i, item := range visible {
		endpointItem := item.(models.EndpointItem)
		result[i] = &endpointItem
	}
	return result
}
