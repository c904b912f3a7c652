// Package discovery enumerates the remote-callable methods of a module:
// application functions explicitly exposed over HTTP outside the standard
// CRUD surface. Methods come from a static YAML manifest and from an
// explicit in-process registry; there is no source scanning.
package discovery

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/recordkit/postsync/internal/logger"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Method is one remote-callable method.
type Method struct {
	// Path is the dotted module path of the function, without the
	// /api/method/ prefix.
	Path        string `yaml:"path"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	// Source records where the method was declared (manifest, registry).
	Source string `yaml:"source,omitempty"`
}

// Manifest is the on-disk declaration of remote-callable methods, grouped
// by module.
type Manifest struct {
	Modules map[string][]Method `yaml:"modules"`
}

// LoadManifest reads a manifest file. A missing file is not an error: it
// yields an empty manifest, matching how adjustment files behave.
func LoadManifest(path string) (*Manifest, error) {
	m := &Manifest{Modules: make(map[string][]Method)}
	if path == "" {
		return m, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("No method manifest found", zap.String("file", path))
		return m, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if m.Modules == nil {
		m.Modules = make(map[string][]Method)
	}
	return m, nil
}

// Registry holds methods registered at program start. Registration is the
// compile-time alternative to the manifest for applications that link
// against postsync.
type Registry struct {
	mu      sync.RWMutex
	methods map[string][]Method
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{methods: make(map[string][]Method)}
}

// Register adds a method under a module.
func (r *Registry) Register(module string, m Method) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.Source == "" {
		m.Source = "registry"
	}
	r.methods[module] = append(r.methods[module], m)
}

// Methods returns the registered methods for a module.
func (r *Registry) Methods(module string) []Method {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Method, len(r.methods[module]))
	copy(out, r.methods[module])
	return out
}

// Cache is a TTL cache for discovery results, keyed by module. It is an
// explicit object owned by whoever builds the Discoverer; there is no
// package-level cache.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	methods []Method
	expires time.Time
}

// DefaultTTL matches the host platform's one-hour discovery cache.
const DefaultTTL = time.Hour

// NewCache creates a cache with the given TTL; zero or negative falls
// back to DefaultTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func (c *Cache) get(module string) ([]Method, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[module]
	if !ok || c.now().After(entry.expires) {
		delete(c.entries, module)
		return nil, false
	}
	return entry.methods, true
}

func (c *Cache) put(module string, methods []Method) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[module] = cacheEntry{
		methods: methods,
		expires: c.now().Add(c.ttl),
	}
}

// Clear drops every cached entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Discoverer combines the manifest and the registry behind the cache.
type Discoverer struct {
	manifest *Manifest
	registry *Registry
	cache    *Cache
}

// NewDiscoverer wires a discoverer from its three parts. Any of them may
// be nil and is replaced with an empty equivalent.
func NewDiscoverer(manifest *Manifest, registry *Registry, cache *Cache) *Discoverer {
	if manifest == nil {
		manifest = &Manifest{Modules: make(map[string][]Method)}
	}
	if registry == nil {
		registry = NewRegistry()
	}
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	return &Discoverer{manifest: manifest, registry: registry, cache: cache}
}

// Discover returns the remote-callable methods of a module: manifest
// entries first, then registry entries whose path the manifest did not
// already supply. Results are cached per module.
func (d *Discoverer) Discover(module string) ([]Method, error) {
	if cached, ok := d.cache.get(module); ok {
		return cached, nil
	}

	var methods []Method
	seen := make(map[string]struct{})

	for _, m := range d.manifest.Modules[module] {
		if m.Path == "" {
			continue
		}
		if m.Source == "" {
			m.Source = "manifest"
		}
		methods = append(methods, m)
		seen[m.Path] = struct{}{}
	}

	for _, m := range d.registry.Methods(module) {
		if m.Path == "" {
			continue
		}
		if _, dup := seen[m.Path]; dup {
			continue
		}
		methods = append(methods, m)
		seen[m.Path] = struct{}{}
	}

	logger.Debug("Discovered remote-callable methods",
		zap.String("module", module),
		zap.Int("count", len(methods)))

	d.cache.put(module, methods)
	return methods, nil
}

// CountAll returns the total number of discoverable methods across every
// module known to the manifest and registry. Used by the status report.
func (d *Discoverer) CountAll() int {
	total := 0
	modules := make(map[string]struct{})
	for module := range d.manifest.Modules {
		modules[module] = struct{}{}
	}
	d.registry.mu.RLock()
	for module := range d.registry.methods {
		modules[module] = struct{}{}
	}
	d.registry.mu.RUnlock()

	for module := range modules {
		methods, err := d.Discover(module)
		if err != nil {
			continue
		}
		total += len(methods)
	}
	return total
}

// Module provides the discovery dependencies
var Module = fx.Module("discovery",
	fx.Provide(
		NewRegistry,
		newDiscovererFromConfig,
	),
)
