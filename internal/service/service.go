// Package service implements the generation lifecycle: creating and
// refreshing generation records when record types appear or change, and
// backfilling records for pre-existing types at install time.
package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/recordkit/postsync/internal/endpoint"
	"github.com/recordkit/postsync/internal/logger"
	"github.com/recordkit/postsync/internal/schema"
	"github.com/recordkit/postsync/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ErrSystemType is returned when generation targets a platform-owned type.
var ErrSystemType = errors.New("service: system record types do not get generated endpoints")

// TypeEndpoints pairs a record type with its generated descriptors inside
// a whole-module payload. A slice keeps module generation order stable.
type TypeEndpoints struct {
	RecordType string                `json:"record_type"`
	Endpoints  []endpoint.Descriptor `json:"endpoints"`
}

// Generator creates generation records from schema metadata.
type Generator struct {
	provider schema.Provider
	builder  *endpoint.Builder
	store    *store.Store
}

// GeneratorParams holds the dependencies for NewGenerator.
type GeneratorParams struct {
	fx.In

	Provider schema.Provider
	Builder  *endpoint.Builder
	Store    *store.Store
}

// NewGenerator creates a Generator.
func NewGenerator(params GeneratorParams) *Generator {
	return &Generator{
		provider: params.Provider,
		builder:  params.Builder,
		store:    params.Store,
	}
}

// GenerateSingle builds endpoints for one record type and upserts its
// generation record. Called for new and updated record types.
func (g *Generator) GenerateSingle(recordType string) (*store.GenerationRecord, error) {
	if schema.IsSystemType(recordType) {
		return nil, fmt.Errorf("%w: %s", ErrSystemType, recordType)
	}

	meta, err := g.provider.Meta(recordType)
	if err != nil {
		return nil, fmt.Errorf("failed to load metadata for %s: %w", recordType, err)
	}

	endpoints := g.builder.BuildEndpoints(recordType, meta.Module)
	payload, err := json.Marshal(endpoints)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal endpoints: %w", err)
	}

	record := g.store.Upsert(store.GenerationRecord{
		Kind:         store.KindSingleType,
		Target:       recordType,
		Module:       meta.Module,
		Endpoints:    payload,
		Status:       store.StatusActive,
		AutoGenerate: true,
	})

	logger.Info("Generated endpoints for record type",
		zap.String("record_type", recordType),
		zap.Int("endpoints", len(endpoints)))

	if err := g.store.Save(); err != nil {
		return nil, err
	}
	return &record, nil
}

// GenerateModule builds endpoints for every record type in a module and
// upserts one whole-module generation record. Per-type failures are
// logged and skipped; they never abort the module pass.
func (g *Generator) GenerateModule(module string) (*store.GenerationRecord, error) {
	names, err := g.provider.ListModule(module)
	if err != nil {
		return nil, fmt.Errorf("failed to list record types in module %s: %w", module, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no record types found in module %s", module)
	}

	var all []TypeEndpoints
	for _, name := range names {
		if schema.IsSystemType(name) {
			continue
		}
		all = append(all, TypeEndpoints{
			RecordType: name,
			Endpoints:  g.builder.BuildEndpoints(name, module),
		})
	}

	payload, err := json.Marshal(all)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal endpoints: %w", err)
	}

	record := g.store.Upsert(store.GenerationRecord{
		Kind:         store.KindWholeModule,
		Target:       module,
		Module:       module,
		Endpoints:    payload,
		Status:       store.StatusActive,
		AutoGenerate: true,
		Description:  fmt.Sprintf("Generated APIs for %d record types in module %s", len(all), module),
	})

	logger.Info("Generated endpoints for module",
		zap.String("module", module),
		zap.Int("record_types", len(all)))

	if err := g.store.Save(); err != nil {
		return nil, err
	}
	return &record, nil
}

// Backfill creates generation records for every non-system record type
// that does not have one yet. Called once after install.
func (g *Generator) Backfill() (int, error) {
	names, err := g.provider.ListAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list record types: %w", err)
	}

	created := 0
	for _, name := range names {
		if schema.IsSystemType(name) {
			continue
		}
		if _, exists := g.store.Find(store.KindSingleType, name); exists {
			continue
		}
		if _, err := g.GenerateSingle(name); err != nil {
			logger.Warn("Skipping record type during backfill",
				zap.String("record_type", name),
				zap.Error(err))
			continue
		}
		created++
	}

	return created, nil
}

// BulkResult is the outcome of one target in a bulk generation pass.
type BulkResult struct {
	Target  string `json:"target"`
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// GenerateBulk generates endpoints for a list of record types,
// continuing past per-type failures.
func (g *Generator) GenerateBulk(recordTypes []string) []BulkResult {
	results := make([]BulkResult, 0, len(recordTypes))
	for _, name := range recordTypes {
		if _, err := g.GenerateSingle(name); err != nil {
			results = append(results, BulkResult{Target: name, Status: "error", Message: err.Error()})
			continue
		}
		results = append(results, BulkResult{Target: name, Status: "success"})
	}
	return results
}

// Module provides the generation service dependencies
var Module = fx.Module("service",
	fx.Provide(
		NewGenerator,
		endpoint.NewBuilder,
	),
)
