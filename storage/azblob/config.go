package azblob

import (
	"github.com/libcatapult/catapult/security"
	"github.com/libcatapult/catapult/validation"
)

// Config holds Azure Blob Storage configuration.
type Config struct {
	// ConnectionString is the storage account connection string
	// ("DefaultEndpointsProtocol=https;AccountName=...;AccountKey=...").
	ConnectionString string `mapstructure:"connection_string" json:"-" validate:"required"`

	// Container is the blob container every operation targets.
	Container string `mapstructure:"container" json:"container" validate:"required"`

	// TLS customises the HTTPS transport, e.g. a private CA in front of
	// Azurite.
	TLS *security.TLS `mapstructure:"tls" json:"tls"`
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.TLS.Validate()
}

// Target returns the container name.
func (c *Config) Target() string { return c.Container }
