package discovery

import (
	"time"

	"github.com/recordkit/postsync/internal/config"
)

func newDiscovererFromConfig(cfg *config.Config, registry *Registry) (*Discoverer, error) {
	manifest, err := LoadManifest(cfg.Discovery.ManifestFile)
	if err != nil {
		return nil, err
	}

	ttl := DefaultTTL
	if cfg.Discovery.CacheTTL != "" {
		if parsed, err := time.ParseDuration(cfg.Discovery.CacheTTL); err == nil {
			ttl = parsed
		}
	}

	return NewDiscoverer(manifest, registry, NewCache(ttl)), nil
}
