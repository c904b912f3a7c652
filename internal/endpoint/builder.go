// Package endpoint builds REST endpoint descriptors for record types:
// the fixed CRUD surface plus any discovered custom methods.
package endpoint

import (
	"fmt"
	"strings"

	"github.com/recordkit/postsync/internal/discovery"
	"github.com/recordkit/postsync/internal/logger"
	"go.uber.org/zap"
)

const (
	// ResourcePrefix is the collection path for standard CRUD operations.
	ResourcePrefix = "/api/resource/"
	// MethodPrefix is the invocation path for remote-callable methods.
	MethodPrefix = "/api/method/"
	// ReportViewPath is the generic advanced-query endpoint, parameterized
	// by record type through its query string.
	ReportViewPath = MethodPrefix + "reportview.get"
)

// Builder assembles endpoint descriptors for record types.
type Builder struct {
	discoverer *discovery.Discoverer
}

// NewBuilder creates a Builder. The discoverer may be nil, in which case
// no custom methods are appended.
func NewBuilder(discoverer *discovery.Discoverer) *Builder {
	return &Builder{discoverer: discoverer}
}

// BuildCRUDEndpoints returns the fixed CRUD descriptor sequence for a
// record type: List, Get, Create, Update, Delete, Advanced Query — in that
// order. It never fails; missing metadata degrades to descriptors with
// empty parameter lists.
func (b *Builder) BuildCRUDEndpoints(recordType string) []Descriptor {
	resource := ResourcePrefix + recordType
	named := resource + "/{name}"

	return []Descriptor{
		{
			Method:      "GET",
			Path:        resource,
			Description: fmt.Sprintf("Get list of %s records", recordType),
			Parameters: []Parameter{
				{Name: "filters", Kind: ParamQuery, Description: "JSON filters"},
				{Name: "fields", Kind: ParamQuery, Description: "Fields to fetch"},
				{Name: "limit_page_length", Kind: ParamQuery, Description: "Number of records per page"},
				{Name: "limit_start", Kind: ParamQuery, Description: "Starting record number"},
			},
		},
		{
			Method:      "GET",
			Path:        named,
			Description: fmt.Sprintf("Get specific %s record by name", recordType),
			Parameters: []Parameter{
				{Name: "name", Kind: ParamPath, Description: "Record name", Required: true},
			},
		},
		{
			Method:      "POST",
			Path:        resource,
			Description: fmt.Sprintf("Create new %s record", recordType),
			Parameters: []Parameter{
				{Name: "body", Kind: ParamBody, Description: "Record data", Required: true},
			},
		},
		{
			Method:      "PUT",
			Path:        named,
			Description: fmt.Sprintf("Update existing %s record", recordType),
			Parameters: []Parameter{
				{Name: "name", Kind: ParamPath, Description: "Record name", Required: true},
				{Name: "body", Kind: ParamBody, Description: "Updated record data", Required: true},
			},
		},
		{
			Method:      "DELETE",
			Path:        named,
			Description: fmt.Sprintf("Delete %s record", recordType),
			Parameters: []Parameter{
				{Name: "name", Kind: ParamPath, Description: "Record name", Required: true},
			},
		},
		{
			Method:      "GET",
			Path:        ReportViewPath,
			Description: fmt.Sprintf("Get %s records with advanced filtering", recordType),
			Parameters: []Parameter{
				{Name: "record_type", Kind: ParamQuery, Description: "Record type name", Required: true},
				{Name: "filters", Kind: ParamQuery, Description: "JSON filters"},
				{Name: "fields", Kind: ParamQuery, Description: "Fields to fetch"},
				{Name: "order_by", Kind: ParamQuery, Description: "Order by field"},
			},
		},
	}
}

// BuildEndpoints returns the CRUD descriptors followed by the custom
// methods discovered for the record type's module, filtered to methods
// whose path mentions the snake-cased type name.
func (b *Builder) BuildEndpoints(recordType, module string) []Descriptor {
	endpoints := b.BuildCRUDEndpoints(recordType)
	endpoints = append(endpoints, b.customMethods(recordType, module)...)
	return endpoints
}

func (b *Builder) customMethods(recordType, module string) []Descriptor {
	if b.discoverer == nil || module == "" {
		return nil
	}

	methods, err := b.discoverer.Discover(module)
	if err != nil {
		logger.Warn("Custom method discovery failed",
			zap.String("record_type", recordType),
			zap.String("module", module),
			zap.Error(err))
		return nil
	}

	token := SnakeCase(recordType)
	var descriptors []Descriptor
	for _, m := range methods {
		if !strings.Contains(strings.ToLower(m.Path), token) {
			continue
		}
		name := m.Name
		if name == "" {
			parts := strings.Split(m.Path, ".")
			name = parts[len(parts)-1]
		}
		desc := m.Description
		if desc == "" {
			desc = fmt.Sprintf("Custom method: %s", name)
		}
		descriptors = append(descriptors, Descriptor{
			Method:      "POST",
			Path:        MethodPrefix + m.Path,
			Description: desc,
			Parameters: []Parameter{
				{Name: "args", Kind: ParamBody, Description: "Method arguments"},
				{Name: "kwargs", Kind: ParamBody, Description: "Method keyword arguments"},
			},
			IsCustomMethod: true,
			MethodName:     name,
			Source:         m.Source,
		})
	}
	return descriptors
}

// SnakeCase lowercases a record-type name and joins its words with
// underscores, matching how method paths embed type names.
func SnakeCase(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}
