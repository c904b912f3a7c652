package models

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/recordkit/postsync/internal/endpoint"
)

// EndpointItem wraps a generated endpoint descriptor for display in the
// review list. Implements list.Item.
type EndpointItem struct {
	Desc       endpoint.Descriptor
	RecordType string
	Override   string
	Excluded   bool
}

func (i EndpointItem) Title() string {
	return fmt.Sprintf("%s %s", i.Desc.Method, i.Desc.Path)
}

func (i EndpointItem) Description() string {
	if i.Excluded {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Render("[Excluded]")
	}
	if i.Override != "" {
		return i.Override
	}
	return i.Desc.Description
}

func (i EndpointItem) WithOverride(description string) EndpointItem {
	i.Override = description
	return i
}

func (i EndpointItem) ToggleExcluded() EndpointItem {
	i.Excluded = !i.Excluded
	return i
}

func (i EndpointItem) FilterValue() string {
	return i.RecordType + " " + i.Desc.Path + " " + i.Desc.Description
}
