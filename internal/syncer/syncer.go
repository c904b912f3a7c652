// Package syncer sequences one sync pass against the collection service:
// fetch the remote tree once, build every generated folder in memory,
// merge by name, and write the tree back once. Two round trips per pass,
// independent of how many generation records are active.
package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/recordkit/postsync/internal/adjust"
	"github.com/recordkit/postsync/internal/config"
	"github.com/recordkit/postsync/internal/endpoint"
	"github.com/recordkit/postsync/internal/logger"
	"github.com/recordkit/postsync/internal/postman"
	"github.com/recordkit/postsync/internal/reconcile"
	"github.com/recordkit/postsync/internal/render"
	"github.com/recordkit/postsync/internal/schema"
	"github.com/recordkit/postsync/internal/service"
	"github.com/recordkit/postsync/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Outcome is the per-record result of folder building. Skipped records
// carry a reason; they never abort the pass.
type Outcome struct {
	Target  string
	Skipped bool
	Reason  string
}

// Result is the user-facing summary of a top-level operation.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Syncer orchestrates sync passes.
type Syncer struct {
	cfg      *config.Config
	client   *postman.Client
	store    *store.Store
	renderer *render.Renderer
	provider schema.Provider
	adjuster *adjust.Adjuster
}

// Params holds the dependencies for New.
type Params struct {
	fx.In

	Config   *config.Config
	Client   *postman.Client
	Store    *store.Store
	Provider schema.Provider
	Adjuster *adjust.Adjuster `optional:"true"`
}

// New creates a Syncer.
func New(params Params) *Syncer {
	adjuster := params.Adjuster
	if adjuster == nil {
		adjuster = adjust.NewAdjuster()
	}
	return &Syncer{
		cfg:      params.Config,
		client:   params.Client,
		store:    params.Store,
		renderer: render.NewRenderer(params.Config.Remote.BaseURL),
		provider: params.Provider,
		adjuster: adjuster,
	}
}

// Sync runs one full pass over all active generation records. This is the
// top-level entrypoint: remote errors are logged and returned so the
// caller can surface them.
func (s *Syncer) Sync(ctx context.Context) (*Result, error) {
	records := s.store.ActiveRecords()
	if len(records) == 0 {
		return &Result{Status: "success", Message: "No active generation records to sync"}, nil
	}

	folders, outcomes := s.BuildFolders(records)
	for _, o := range outcomes {
		if o.Skipped {
			logger.Warn("Skipping generation record",
				zap.String("target", o.Target),
				zap.String("reason", o.Reason))
		}
	}

	if dups := reconcile.DuplicateNames(folders); len(dups) > 0 {
		logger.Warn("Multiple generation records produce the same folder name; the last one wins",
			zap.Strings("names", dups))
	}

	collection, err := s.client.GetCollection(ctx, s.cfg.Remote.CollectionID)
	if err != nil {
		return nil, fmt.Errorf("sync failed at collection fetch: %w", err)
	}

	collection.Items = reconcile.Merge(collection.Items, folders)
	if collection.Info.Name == "" {
		collection.Info.Name = "Generated CRUD APIs"
	}
	if collection.Info.Schema == "" {
		collection.Info.Schema = postman.CollectionSchema
	}

	if err := s.client.UpdateCollection(ctx, s.cfg.Remote.CollectionID, collection); err != nil {
		return nil, fmt.Errorf("sync failed at collection update: %w", err)
	}

	settings := s.store.Settings()
	settings.WorkspaceID = s.cfg.Remote.WorkspaceID
	settings.CollectionID = s.cfg.Remote.CollectionID
	settings.BaseURL = s.cfg.Remote.BaseURL
	settings.AutoSync = s.cfg.Remote.AutoSync
	settings.Status = store.StatusActive
	settings.LastSync = time.Now().UTC()
	s.store.PutSettings(settings)
	if err := s.store.Save(); err != nil {
		return nil, err
	}

	logger.Info("Synced generated folders to collection",
		zap.Int("records", len(records)),
		zap.Int("folders", len(folders)))

	return &Result{
		Status:  "success",
		Message: fmt.Sprintf("Synced %d folders from %d generation records", len(folders), len(records)),
	}, nil
}

// BuildFolders renders the top-level folders for a set of generation
// records, entirely in memory. Per-record failures become skip outcomes.
func (s *Syncer) BuildFolders(records []store.GenerationRecord) ([]postman.Item, []Outcome) {
	var folders []postman.Item
	outcomes := make([]Outcome, 0, len(records))

	for _, record := range records {
		built, err := s.buildRecordFolders(record)
		if err != nil {
			outcomes = append(outcomes, Outcome{Target: record.Target, Skipped: true, Reason: err.Error()})
			continue
		}
		folders = append(folders, built...)
		outcomes = append(outcomes, Outcome{Target: record.Target})
	}

	return folders, outcomes
}

func (s *Syncer) buildRecordFolders(record store.GenerationRecord) ([]postman.Item, error) {
	switch record.Kind {
	case store.KindSingleType:
		var endpoints []endpoint.Descriptor
		if err := json.Unmarshal(record.Endpoints, &endpoints); err != nil {
			return nil, fmt.Errorf("malformed endpoints payload: %w", err)
		}
		return []postman.Item{s.typeFolder(record.Target, endpoints)}, nil

	case store.KindWholeModule:
		var all []service.TypeEndpoints
		if err := json.Unmarshal(record.Endpoints, &all); err != nil {
			return nil, fmt.Errorf("malformed endpoints payload: %w", err)
		}

		typeFolders := make([]postman.Item, 0, len(all))
		for _, te := range all {
			typeFolders = append(typeFolders, s.typeFolder(te.RecordType, te.Endpoints))
		}

		// Without a meaningful module name the type folders go to the top
		// level unwrapped.
		if record.Target == "" {
			return typeFolders, nil
		}
		return []postman.Item{{
			Name:        record.Target + " Module",
			Description: fmt.Sprintf("Auto-generated APIs for the %s module", record.Target),
			Items:       typeFolders,
		}}, nil

	default:
		return nil, fmt.Errorf("unknown generation kind %q", record.Kind)
	}
}

func (s *Syncer) typeFolder(recordType string, endpoints []endpoint.Descriptor) postman.Item {
	meta, err := s.provider.Meta(recordType)
	if err != nil {
		// The renderer degrades to a generic body template.
		logger.Warn("Schema lookup failed, rendering with generic templates",
			zap.String("record_type", recordType),
			zap.Error(err))
		meta = nil
	}

	items := make([]postman.Item, 0, len(endpoints))
	for _, desc := range endpoints {
		if !s.adjuster.Selected(desc.Path, desc.Method) {
			continue
		}
		item := s.renderer.Render(desc, recordType, meta)
		item.Request.Description = s.adjuster.Description(desc.Path, desc.Method, item.Request.Description)
		items = append(items, item)
	}

	return postman.Item{
		Name:        recordType,
		Description: fmt.Sprintf("Auto-generated APIs for %s", recordType),
		Items:       items,
	}
}

// ValidateConnection checks workspace and collection access and records
// the resulting status in the settings snapshot.
func (s *Syncer) ValidateConnection(ctx context.Context) *Result {
	settings := s.store.Settings()

	if _, err := s.client.GetWorkspace(ctx, s.cfg.Remote.WorkspaceID); err != nil {
		settings.Status = store.StatusError
		s.store.PutSettings(settings)
		_ = s.store.Save()
		return &Result{Status: "error", Message: fmt.Sprintf("Invalid workspace ID or API key: %v", err)}
	}

	if _, err := s.client.GetCollection(ctx, s.cfg.Remote.CollectionID); err != nil {
		settings.Status = store.StatusError
		s.store.PutSettings(settings)
		_ = s.store.Save()
		return &Result{Status: "error", Message: fmt.Sprintf("Invalid collection ID or insufficient permissions: %v", err)}
	}

	settings.Status = store.StatusActive
	s.store.PutSettings(settings)
	_ = s.store.Save()
	return &Result{Status: "success", Message: "Connection successful"}
}

// CreateEnvironment creates a remote environment holding the site's base
// URL and API-key placeholder, returning the new environment id.
func (s *Syncer) CreateEnvironment(ctx context.Context) (string, error) {
	siteName := s.cfg.SiteName
	if siteName == "" {
		siteName = "Local"
	}

	env := &postman.Environment{
		Name: fmt.Sprintf("Site - %s", siteName),
		Values: []postman.EnvironmentValue{
			{Key: "base_url", Value: s.cfg.Remote.BaseURL, Enabled: true},
			{Key: "api_key", Value: "{{your_api_key}}", Enabled: true, Description: "Your site API key"},
			{Key: "site_name", Value: siteName, Enabled: true},
		},
	}

	return s.client.CreateEnvironment(ctx, env)
}

// Module provides the syncer dependencies
var Module = fx.Module("syncer",
	fx.Provide(
		New,
	),
)
