// Package docs exports the generated endpoint catalog as an OpenAPI 3
// document, so the same surface that syncs to the collection service can
// feed standard OpenAPI tooling.
package docs

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/recordkit/postsync/internal/endpoint"
	"github.com/recordkit/postsync/internal/logger"
	"github.com/recordkit/postsync/internal/schema"
	"github.com/recordkit/postsync/internal/service"
	"github.com/recordkit/postsync/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Exporter renders the state file's active generation records into a
// single OpenAPI document.
type Exporter struct {
	store    *store.Store
	provider schema.Provider
}

// Params holds the dependencies for NewExporter.
type Params struct {
	fx.In

	Store    *store.Store
	Provider schema.Provider
}

// NewExporter creates an Exporter.
func NewExporter(params Params) *Exporter {
	return &Exporter{store: params.Store, provider: params.Provider}
}

// Export builds the document and returns it as indented JSON.
func (e *Exporter) Export(title, baseURL string) ([]byte, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       title,
			Description: "Auto-generated CRUD and custom-method endpoints",
			Version:     "1.0.0",
		},
		Paths: openapi3.NewPaths(),
	}
	if baseURL != "" {
		doc.Servers = openapi3.Servers{{URL: baseURL}}
	}

	for _, record := range e.store.ActiveRecords() {
		if err := e.addRecord(doc, record); err != nil {
			logger.Warn("Skipping generation record in export",
				zap.String("target", record.Target),
				zap.Error(err))
		}
	}

	return json.MarshalIndent(doc, "", "  ")
}

func (e *Exporter) addRecord(doc *openapi3.T, record store.GenerationRecord) error {
	switch record.Kind {
	case store.KindSingleType:
		var endpoints []endpoint.Descriptor
		if err := json.Unmarshal(record.Endpoints, &endpoints); err != nil {
			return fmt.Errorf("malformed endpoints payload: %w", err)
		}
		e.addEndpoints(doc, record.Target, endpoints)
		return nil

	case store.KindWholeModule:
		var all []service.TypeEndpoints
		if err := json.Unmarshal(record.Endpoints, &all); err != nil {
			return fmt.Errorf("malformed endpoints payload: %w", err)
		}
		for _, te := range all {
			e.addEndpoints(doc, te.RecordType, te.Endpoints)
		}
		return nil

	default:
		return fmt.Errorf("unknown generation kind %q", record.Kind)
	}
}

func (e *Exporter) addEndpoints(doc *openapi3.T, recordType string, endpoints []endpoint.Descriptor) {
	meta, err := e.provider.Meta(recordType)
	if err != nil {
		meta = nil
	}

	for _, desc := range endpoints {
		op := openapi3.NewOperation()
		op.Summary = desc.Description
		op.Tags = []string{recordType}
		op.AddResponse(200, openapi3.NewResponse().WithDescription("Successful response"))

		bodyProps := openapi3.Schemas{}
		for _, param := range desc.Parameters {
			switch param.Kind {
			case endpoint.ParamPath, endpoint.ParamQuery:
				op.AddParameter(&openapi3.Parameter{
					Name:        param.Name,
					In:          string(param.Kind),
					Required:    param.Kind == endpoint.ParamPath,
					Description: param.Description,
					Schema:      openapi3.NewStringSchema().NewRef(),
				})
			case endpoint.ParamBody:
				bodyProps[param.Name] = openapi3.NewSchema().NewRef()
			}
		}

		if len(bodyProps) > 0 {
			bodySchema := e.bodySchema(desc, recordType, meta, bodyProps)
			op.RequestBody = &openapi3.RequestBodyRef{
				Value: openapi3.NewRequestBody().WithJSONSchema(bodySchema),
			}
		}

		pathItem := doc.Paths.Find(desc.Path)
		if pathItem == nil {
			pathItem = &openapi3.PathItem{}
			doc.Paths.Set(desc.Path, pathItem)
		}
		pathItem.SetOperation(desc.Method, op)
	}
}

// bodySchema widens the generic body parameter into per-field properties
// when the record type's schema is available.
func (e *Exporter) bodySchema(desc endpoint.Descriptor, recordType string, meta *schema.RecordType, generic openapi3.Schemas) *openapi3.Schema {
	out := openapi3.NewObjectSchema()

	if desc.IsCustomMethod || meta == nil {
		out.Properties = generic
		return out
	}

	out.Properties = openapi3.Schemas{}
	for _, field := range meta.Fields {
		fs := fieldSchema(field.Kind)
		if fs == nil {
			continue
		}
		fs.Description = field.Label
		out.Properties[field.Name] = fs.NewRef()
		if field.Required {
			out.Required = append(out.Required, field.Name)
		}
	}
	return out
}

func fieldSchema(kind schema.FieldKind) *openapi3.Schema {
	switch kind {
	case schema.KindInt, schema.KindCheck, schema.KindDuration, schema.KindRating:
		return openapi3.NewIntegerSchema()
	case schema.KindFloat, schema.KindCurrency, schema.KindPercent:
		return openapi3.NewFloat64Schema()
	case schema.KindTable:
		return openapi3.NewArraySchema().WithItems(openapi3.NewObjectSchema())
	case schema.KindGeolocation:
		return openapi3.NewObjectSchema()
	case schema.KindSectionBreak, schema.KindColumnBreak, schema.KindTabBreak,
		schema.KindHTML, schema.KindButton:
		return nil
	default:
		return openapi3.NewStringSchema()
	}
}

// Module provides the docs dependencies
var Module = fx.Module("docs",
	fx.Provide(
		NewExporter,
	),
)
