package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/recordkit/postsync/internal/tui/models"
)

type mainPageKeyMap struct {
	open key.Binding
	quit key.Binding
}

func newMainPageKeyMap() *mainPageKeyMap {
	return &mainPageKeyMap{
		open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Open Endpoint Review"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("ctrl+c/q", "Quit"),
		),
	}
}

// OpenReviewMsg is sent when the user opens the review list.
type OpenReviewMsg struct{}

// MainPageModel is the landing page summarizing what will be reviewed.
type MainPageModel struct {
	keys      *mainPageKeyMap
	width     int
	height    int
	endpoints []models.EndpointItem
}

func NewMainPageModel(endpoints []models.EndpointItem) MainPageModel {
	return MainPageModel{
		keys:      newMainPageKeyMap(),
		endpoints: endpoints,
	}
}

func (m MainPageModel) Init() tea.Cmd {
	return nil
}

func (m MainPageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.open):
			return m, func() tea.Msg { return OpenReviewMsg{} }
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	return m, nil
}

func (m MainPageModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render("Endpoint Review")

	descStyle := lipgloss.NewStyle().
		Padding(1, 0).
		Width(m.width - 4).
		Align(lipgloss.Center)

	description := descStyle.Render(
		"Review the generated endpoints before they sync to the collection.\n" +
			"You can filter, edit descriptions, and exclude endpoints.\n\n" +
			fmt.Sprintf("There are %d generated endpoints to review.", len(m.endpoints)),
	)

	previewStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#fa8231")).
		Padding(1, 1).
		Width(m.width - 10).
		Align(lipgloss.Left)

	var preview strings.Builder
	shown := len(m.endpoints)
	if shown > 5 {
		shown = 5
	}
	for i := 0; i < shown; i++ {
		preview.WriteString(m.endpoints[i].Title() + "\n")
	}
	if len(m.endpoints) > shown {
		preview.WriteString(fmt.Sprintf("\n... and %d more endpoints", len(m.endpoints)-shown))
	}

	instructionStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#fa8231")).
		Padding(1, 0).
		Width(m.width - 4).
		Align(lipgloss.Center)

	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.AdaptiveColor{Light: "#626262", Dark: "#A49FA5"}).
		Width(m.width - 4).
		Align(lipgloss.Center)

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		title,
		"",
		description,
		"",
		previewStyle.Render(preview.String()),
		"",
		instructionStyle.Render("Press ENTER to open the review list"),
		"",
		helpStyle.Render("Press q or Ctrl+C to quit"),
	))
}
