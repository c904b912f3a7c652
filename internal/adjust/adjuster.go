// Package adjust applies operator adjustments to generated endpoints:
// selecting which endpoints reach the collection and overriding their
// descriptions, driven by a YAML file.
package adjust

import (
	"os"

	"github.com/recordkit/postsync/internal/logger"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Adjuster provides filtering and description overrides based on YAML
// configuration.
type Adjuster struct {
	adjustments *Adjustments
}

// NewAdjuster creates a new Adjuster instance
func NewAdjuster() *Adjuster {
	return &Adjuster{
		adjustments: &Adjustments{
			Descriptions: []EndpointDescription{},
			Endpoints:    []EndpointSelection{},
		},
	}
}

// Load loads adjustments from a YAML file. A missing file leaves the
// adjuster empty rather than failing.
func (a *Adjuster) Load(filePath string) error {
	if filePath == "" {
		logger.Info("No adjustments file provided")
		return nil
	}

	logger.Info("Loading adjustments from file", zap.String("file", filePath))
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		logger.Warn("Adjustments file not found", zap.String("file", filePath))
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var adjustments Adjustments
	if err := yaml.Unmarshal(data, &adjustments); err != nil {
		return err
	}

	a.adjustments = &adjustments
	return nil
}

// Selected reports whether a path/method pair stays in the generated
// collection. With no selections configured everything is selected.
func (a *Adjuster) Selected(path, method string) bool {
	if a.adjustments == nil || len(a.adjustments.Endpoints) == 0 {
		return true
	}

	for _, selection := range a.adjustments.Endpoints {
		if selection.Path == path {
			for _, m := range selection.Methods {
				if m == method {
					return true
				}
			}
			return false // Path found but method not selected
		}
	}

	return false // Path not found
}

// Description returns the overridden description for a path/method pair,
// or originalDesc when no override exists.
func (a *Adjuster) Description(path, method, originalDesc string) string {
	if a.adjustments == nil || len(a.adjustments.Descriptions) == 0 {
		return originalDesc
	}

	for _, desc := range a.adjustments.Descriptions {
		if desc.Path == path {
			for _, update := range desc.Updates {
				if update.Method == method {
					return update.NewDescription
				}
			}
			break // Found the path but no matching method
		}
	}

	return originalDesc
}
