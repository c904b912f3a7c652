// Package tui is the interactive review flow for generated endpoints:
// browse, filter, edit descriptions, exclude, and save the result as an
// adjustments file the sync pass applies.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/recordkit/postsync/internal/adjust"
	"github.com/recordkit/postsync/internal/tui/models"
)

// AppModel switches between the landing page, the review list, and the
// export prompt.
type AppModel struct {
	mainPage   MainPageModel
	listPage   ListPageModel
	exportView ExportView
	page       string // "main", "list" or "export"
}

// NewAppModel wires the pages around the endpoints under review.
func NewAppModel(endpoints []models.EndpointItem, adjuster *adjust.Adjuster) AppModel {
	return AppModel{
		mainPage: NewMainPageModel(endpoints),
		listPage: NewListPageModel(endpoints, adjuster),
		page:     "main",
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(
		m.mainPage.Init(),
		m.listPage.Init(),
	)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case OpenReviewMsg:
		m.page = "list"
		return m, m.listPage.Init()

	case DoneMsg:
		m.page = "export"
		m.exportView = NewExportView(msg.Endpoints)
		return m, m.exportView.Init()

	case BackToListMsg:
		m.page = "list"
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "esc" && m.page == "list" {
			m.page = "main"
			return m, nil
		}

	case tea.WindowSizeMsg:
		var cmd tea.Cmd
		var next tea.Model

		next, cmd = m.mainPage.Update(msg)
		m.mainPage = next.(MainPageModel)
		cmds = append(cmds, cmd)

		next, cmd = m.listPage.Update(msg)
		m.listPage = next.(ListPageModel)
		cmds = append(cmds, cmd)

		next, cmd = m.exportView.Update(msg)
		m.exportView = next.(ExportView)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	var next tea.Model
	switch m.page {
	case "main":
		next, cmd = m.mainPage.Update(msg)
		m.mainPage = next.(MainPageModel)
	case "export":
		next, cmd = m.exportView.Update(msg)
		m.exportView = next.(ExportView)
	default:
		next, cmd = m.listPage.Update(msg)
		m.listPage = next.(ListPageModel)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m AppModel) View() string {
	switch m.page {
	case "main":
		return m.mainPage.View()
	case "export":
		return m.exportView.View()
	default:
		return m.listPage.View()
	}
}

// Finished reports whether the user completed the flow through the
// export page.
func (m AppModel) Finished() bool {
	return m.exportView.Success
}

// Run starts the review program and blocks until it exits. It returns
// an error when the user quits without saving.
func Run(endpoints []models.EndpointItem, adjuster *adjust.Adjuster) error {
	program := tea.NewProgram(NewAppModel(endpoints, adjuster), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return err
	}
	if app, ok := final.(AppModel); ok && !app.Finished() {
		return fmt.Errorf("review cancelled before saving adjustments")
	}
	return nil
}
