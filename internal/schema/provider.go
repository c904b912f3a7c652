package schema

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/recordkit/postsync/internal/config"
	"github.com/recordkit/postsync/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when a record type has no definition.
var ErrNotFound = errors.New("schema: record type not found")

// Provider is the schema collaborator: metadata lookup for record types.
type Provider interface {
	// Meta returns the full definition for one record type.
	Meta(name string) (*RecordType, error)
	// ListModule returns the names of all record types in a module.
	ListModule(module string) ([]string, error)
	// ListAll returns every known record-type name.
	ListAll() ([]string, error)
	// Exists reports whether the record type is defined.
	Exists(name string) bool
}

// DirProvider reads record-type definitions from a directory of YAML or
// JSON files, one definition per file. Definitions are loaded once and
// indexed by name.
type DirProvider struct {
	dir   string
	types map[string]*RecordType
}

// NewDirProvider loads every definition under dir. Files that fail to
// parse are logged and skipped; the provider never aborts the whole load
// for one bad file.
func NewDirProvider(dir string) (*DirProvider, error) {
	p := &DirProvider{
		dir:   dir,
		types: make(map[string]*RecordType),
	}

	if dir == "" {
		return p, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		rt, err := loadDefinition(path)
		if err != nil {
			logger.Warn("Skipping unreadable record type definition",
				zap.String("file", path),
				zap.Error(err))
			continue
		}
		p.types[rt.Name] = rt
	}

	logger.Info("Loaded record type definitions",
		zap.String("dir", dir),
		zap.Int("count", len(p.types)))

	return p, nil
}

func loadDefinition(path string) (*RecordType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rt RecordType
	// YAML is a superset of JSON, so one decoder covers both formats.
	if err := yaml.Unmarshal(data, &rt); err != nil {
		return nil, fmt.Errorf("failed to parse definition: %w", err)
	}
	if rt.Name == "" {
		return nil, fmt.Errorf("definition in %s has no name", path)
	}
	return &rt, nil
}

func (p *DirProvider) Meta(name string) (*RecordType, error) {
	rt, ok := p.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return rt, nil
}

func (p *DirProvider) ListModule(module string) ([]string, error) {
	var names []string
	for name, rt := range p.types {
		if rt.Module == module && !rt.IsChild {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (p *DirProvider) ListAll() ([]string, error) {
	names := make([]string, 0, len(p.types))
	for name := range p.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (p *DirProvider) Exists(name string) bool {
	_, ok := p.types[name]
	return ok
}

func newProviderFromConfig(cfg *config.Config) (*DirProvider, error) {
	return NewDirProvider(cfg.Schema.Dir)
}

// Module provides the schema dependencies
var Module = fx.Module("schema",
	fx.Provide(
		fx.Annotate(
			newProviderFromConfig,
			fx.As(new(Provider)),
		),
	),
)
