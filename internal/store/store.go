// Package store persists generation records and the sync settings
// snapshot in a single JSON state file. The store is a small document,
// read and written whole; it is not a database.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/recordkit/postsync/internal/config"
	"go.uber.org/fx"
)

// GenerationKind says what one generation record covers.
type GenerationKind string

const (
	KindSingleType  GenerationKind = "single"
	KindWholeModule GenerationKind = "module"
)

// Status values for generation records and settings.
const (
	StatusActive = "Active"
	StatusError  = "Error"
)

// GenerationRecord describes one generation pass: its target, the
// endpoints it produced, and whether it participates in auto sync.
type GenerationRecord struct {
	ID           string          `json:"id"`
	Kind         GenerationKind  `json:"kind"`
	Target       string          `json:"target"`
	Module       string          `json:"module,omitempty"`
	Endpoints    json.RawMessage `json:"endpoints,omitempty"`
	Status       string          `json:"status"`
	AutoGenerate bool            `json:"auto_generate"`
	Description  string          `json:"description,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Settings is the persisted sync state, mirroring the effective remote
// configuration plus runtime status.
type Settings struct {
	WorkspaceID  string    `json:"workspace_id,omitempty"`
	CollectionID string    `json:"collection_id,omitempty"`
	BaseURL      string    `json:"base_url,omitempty"`
	AutoSync     bool      `json:"auto_sync"`
	Status       string    `json:"status,omitempty"`
	LastSync     time.Time `json:"last_sync"`
}

type state struct {
	Settings Settings           `json:"settings"`
	Records  []GenerationRecord `json:"records"`
}

// Store is the file-backed persistence collaborator.
type Store struct {
	path  string
	state state
}

// Open loads the state file, creating an empty store when the file does
// not exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	return s, nil
}

// Save writes the state file atomically (write temp, rename).
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Settings returns the current settings snapshot.
func (s *Store) Settings() Settings {
	return s.state.Settings
}

// PutSettings replaces the settings snapshot.
func (s *Store) PutSettings(settings Settings) {
	s.state.Settings = settings
}

// Records returns all generation records.
func (s *Store) Records() []GenerationRecord {
	out := make([]GenerationRecord, len(s.state.Records))
	copy(out, s.state.Records)
	return out
}

// ActiveRecords returns generation records eligible for sync.
func (s *Store) ActiveRecords() []GenerationRecord {
	var active []GenerationRecord
	for _, r := range s.state.Records {
		if r.Status == StatusActive {
			active = append(active, r)
		}
	}
	return active
}

// Find returns the record for a kind/target pair, if any.
func (s *Store) Find(kind GenerationKind, target string) (*GenerationRecord, bool) {
	for i := range s.state.Records {
		r := &s.state.Records[i]
		if r.Kind == kind && r.Target == target {
			return r, true
		}
	}
	return nil, false
}

// Upsert creates or replaces the record for its kind/target pair,
// assigning an ID and timestamps as needed.
func (s *Store) Upsert(record GenerationRecord) GenerationRecord {
	now := time.Now().UTC()
	record.UpdatedAt = now

	for i := range s.state.Records {
		existing := &s.state.Records[i]
		if existing.Kind == record.Kind && existing.Target == record.Target {
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			*existing = record
			return record
		}
	}

	record.ID = uuid.NewString()
	record.CreatedAt = now
	s.state.Records = append(s.state.Records, record)
	return record
}

func openFromConfig(cfg *config.Config) (*Store, error) {
	return Open(cfg.StateFile)
}

// Module provides the store dependencies
var Module = fx.Module("store",
	fx.Provide(
		openFromConfig,
	),
)
