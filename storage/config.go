package storage

import (
	"github.com/libcatapult/catapult/validation"
)

// Provider names accepted in Config.Provider.
const (
	ProviderS3    = "s3"
	ProviderAzure = "azblob"
	ProviderLocal = "local"
)

// DefaultProvider is used when no provider is configured.
const DefaultProvider = ProviderLocal

// Providers lists every provider name Validate accepts.
var Providers = []string{ProviderS3, ProviderAzure, ProviderLocal}

// Config selects the storage backend. Backend settings live in the
// provider-specific config passed alongside it (s3.Config, azblob.Config,
// local.Config).
type Config struct {
	// Provider selects the backend: "s3", "azblob" or "local".
	Provider string `mapstructure:"provider" json:"provider"`

	// Enabled controls whether the storage component is active.
	Enabled bool `mapstructure:"enabled" json:"enabled"`

	// Instrument wraps the backend with tracing and metrics.
	Instrument bool `mapstructure:"instrument" json:"instrument"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
}

// Validate checks that the provider is one of the known backends.
func (c *Config) Validate() error {
	return validation.New().
		OneOf("provider", c.Provider, Providers).
		Err()
}
