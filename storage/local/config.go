package local

import (
	"github.com/libcatapult/catapult/validation"
)

// DefaultBasePath is the default root directory for local storage.
const DefaultBasePath = "/tmp/catapult"

// Config holds local filesystem storage configuration.
type Config struct {
	// BasePath is the root directory objects are stored under.
	BasePath string `mapstructure:"base_path" json:"base_path" validate:"required"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.BasePath == "" {
		c.BasePath = DefaultBasePath
	}
}

// Validate checks that the local configuration is valid.
func (c *Config) Validate() error {
	return validation.Validate(c)
}

// Target returns the base directory.
func (c *Config) Target() string { return c.BasePath }
