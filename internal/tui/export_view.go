package tui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/recordkit/postsync/internal/adjust"
	"github.com/recordkit/postsync/internal/tui/models"
	"gopkg.in/yaml.v3"
)

// BackToListMsg signals a return to the review list.
type BackToListMsg struct{}

// ExportView prompts for a filename and writes the reviewed endpoints
// out as an adjustments file.
type ExportView struct {
	endpoints    []*models.EndpointItem
	textInput    textinput.Model
	width        int
	height       int
	exportStatus string
	Success      bool
}

// NewExportView creates the export prompt.
func NewExportView(endpoints []*models.EndpointItem) ExportView {
	ti := textinput.New()
	ti.Placeholder = "adjustments.yaml"
	ti.Focus()
	ti.Width = 40

	return ExportView{
		endpoints: endpoints,
		textInput: ti,
	}
}

func (m ExportView) Init() tea.Cmd {
	return textinput.Blink
}

func (m ExportView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			return m, func() tea.Msg { return BackToListMsg{} }
		case "enter":
			if m.textInput.Value() == "" {
				m.exportStatus = "Please enter a filename"
				return m, nil
			}

			filename := m.textInput.Value()
			if !strings.HasSuffix(filename, ".yaml") && !strings.HasSuffix(filename, ".yml") {
				filename += ".yaml"
			}

			if err := WriteAdjustmentsFile(m.endpoints, filename); err != nil {
				m.exportStatus = fmt.Sprintf("Error exporting: %v", err)
				return m, nil
			}

			m.Success = true
			m.exportStatus = completeMessageStyle(fmt.Sprintf("Saved adjustments to %s", filename))
			return m, tea.Sequence(
				tea.Tick(time.Second, func(time.Time) tea.Msg {
					return tea.Quit()
				}),
			)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m ExportView) View() string {
	var sb strings.Builder

	verticalPadding := (m.height - 6) / 2
	for i := 0; i < verticalPadding; i++ {
		sb.WriteString("\n")
	}

	sb.WriteString(centerText(titleStyle.Render("Save Adjustments"), m.width))
	sb.WriteString("\n\n")
	sb.WriteString(centerText("Enter filename for the adjustments file:", m.width))
	sb.WriteString("\n")
	sb.WriteString(centerText(m.textInput.View(), m.width))
	sb.WriteString("\n\n")

	if m.exportStatus != "" {
		sb.WriteString(centerText(m.exportStatus, m.width))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(centerText("(esc) Back to review | (enter) Save", m.width))

	return sb.String()
}

// WriteAdjustmentsFile converts the reviewed endpoints into an
// adjustments document and writes it as YAML.
func WriteAdjustmentsFile(endpoints []*models.EndpointItem, filename string) error {
	doc := adjust.Adjustments{
		Descriptions: []adjust.EndpointDescription{},
		Endpoints:    []adjust.EndpointSelection{},
	}

	overridesByPath := make(map[string][]adjust.FieldUpdate)
	methodsByPath := make(map[string][]string)
	seen := make(map[string]bool)
	var pathOrder []string

	for _, item := range endpoints {
		path := item.Desc.Path
		method := item.Desc.Method

		if !seen[path] {
			seen[path] = true
			pathOrder = append(pathOrder, path)
		}

		if item.Override != "" {
			overridesByPath[path] = append(overridesByPath[path], adjust.FieldUpdate{
				Method:         method,
				NewDescription: item.Override,
			})
		}
		if !item.Excluded {
			methodsByPath[path] = append(methodsByPath[path], method)
		}
	}

	for _, path := range pathOrder {
		if updates, ok := overridesByPath[path]; ok {
			doc.Descriptions = append(doc.Descriptions, adjust.EndpointDescription{
				Path:    path,
				Updates: updates,
			})
		}
		if methods, ok := methodsByPath[path]; ok {
			doc.Endpoints = append(doc.Endpoints, adjust.EndpointSelection{
				Path:    path,
				Methods: methods,
			})
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

func centerText(text string, width int) string {
	if width <= len(text) {
		return text
	}
	padding := (width - len(text)) / 2
	return strings.Repeat(" ", padding) + text
}
