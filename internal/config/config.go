package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("postsync version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Remote    RemoteConfig    `mapstructure:"remote"`
	Schema    SchemaConfig    `mapstructure:"schema"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	StateFile string          `mapstructure:"state_file"`
	SiteName  string          `mapstructure:"site_name"`
}

// RemoteConfig holds credentials and identifiers for the collection service.
// APIURL is the collection service itself; BaseURL is the site whose
// endpoints appear inside generated requests.
type RemoteConfig struct {
	APIKey       string `mapstructure:"api_key" validate:"required"`
	WorkspaceID  string `mapstructure:"workspace_id" validate:"required"`
	CollectionID string `mapstructure:"collection_id" validate:"required"`
	APIURL       string `mapstructure:"api_url" validate:"required,url"`
	BaseURL      string `mapstructure:"base_url" validate:"required,url"`
	AutoSync     bool   `mapstructure:"auto_sync"`
}

// SchemaConfig points at the record-type definition source.
type SchemaConfig struct {
	Dir string `mapstructure:"dir"`
}

// DiscoveryConfig controls custom-method discovery.
type DiscoveryConfig struct {
	ManifestFile string `mapstructure:"manifest_file"`
	CacheTTL     string `mapstructure:"cache_ttl"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	Color             bool   `mapstructure:"color"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("schema-dir", "", "Directory holding record type definitions")
	pflag.String("state-file", "", "Path to the generation state file")
	pflag.String("manifest-file", "", "Path to the remote-method manifest file")
	// Note: no pflag.Parse() here as it's called in main.go
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("POSTSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/postsync")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("state_file", "postsync-state.json")
	viper.SetDefault("remote.api_url", "https://api.getpostman.com")
	viper.SetDefault("discovery.cache_ttl", "1h")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if dir := viper.GetString("schema-dir"); dir != "" {
		config.Schema.Dir = dir
	}
	if stateFile := viper.GetString("state-file"); stateFile != "" {
		config.StateFile = stateFile
	}
	if manifest := viper.GetString("manifest-file"); manifest != "" {
		config.Discovery.ManifestFile = manifest
	}

	return &config, nil
}

// ValidateRemote checks that every field needed to talk to the collection
// service is present. Commands that never leave the local machine skip this.
func (c *Config) ValidateRemote() error {
	v := validator.New()
	if err := v.Struct(c.Remote); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			e := errs[0]
			return fmt.Errorf("remote config: field %q failed %q validation", strings.ToLower(e.Field()), e.Tag())
		}
		return err
	}
	return nil
}

// SetupChecks reports per-field configuration completeness, used by the
// status command to point at missing pieces.
func (c *Config) SetupChecks() map[string]bool {
	return map[string]bool{
		"api_key_configured":       c.Remote.APIKey != "",
		"workspace_id_configured":  c.Remote.WorkspaceID != "",
		"collection_id_configured": c.Remote.CollectionID != "",
		"base_url_configured":      c.Remote.BaseURL != "",
		"auto_sync_enabled":        c.Remote.AutoSync,
		"schema_dir_configured":    c.Schema.Dir != "",
	}
}
