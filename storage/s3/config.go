package s3

import (
	"github.com/libcatapult/catapult/security"
	"github.com/libcatapult/catapult/validation"
)

const (
	// DefaultRegion is the default AWS region.
	DefaultRegion = "us-east-1"

	// DefaultPartSize is the transfer chunk size. Objects up to this size move
	// in a single request.
	DefaultPartSize int64 = 64 * 1024 * 1024

	// DefaultConcurrency is the number of parts transferred in parallel.
	DefaultConcurrency = 10
)

// Config holds S3-specific storage configuration.
type Config struct {
	// Bucket is the S3 bucket name.
	Bucket string `mapstructure:"bucket" json:"bucket" validate:"required"`

	// Region is the AWS region.
	Region string `mapstructure:"region" json:"region" validate:"required"`

	// Endpoint is a custom S3-compatible endpoint URL (e.g. MinIO).
	Endpoint string `mapstructure:"endpoint" json:"endpoint" validate:"omitempty,url"`

	// AccessKey is the access key ID. When both keys are empty the default
	// AWS credential chain is used.
	AccessKey string `mapstructure:"access_key" json:"access_key" validate:"required_with=SecretKey"`

	// SecretKey is the secret access key.
	SecretKey string `mapstructure:"secret_key" json:"-" validate:"required_with=AccessKey"`

	// ForcePathStyle forces path-style URLs instead of virtual-hosted-style.
	// Always on when Endpoint is set.
	ForcePathStyle bool `mapstructure:"force_path_style" json:"force_path_style"`

	// PartSize is the multipart chunk size in bytes; S3 requires at least 5 MiB.
	PartSize int64 `mapstructure:"part_size" json:"part_size" validate:"omitempty,min=5242880"`

	// Concurrency is the number of parts uploaded or downloaded at once.
	Concurrency int `mapstructure:"concurrency" json:"concurrency" validate:"omitempty,min=1"`

	// TLS customises the HTTPS transport, e.g. a private CA for MinIO.
	TLS *security.TLS `mapstructure:"tls" json:"tls"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.PartSize == 0 {
		c.PartSize = DefaultPartSize
	}
	if c.Concurrency == 0 {
		c.Concurrency = DefaultConcurrency
	}
}

// Validate checks that the S3 configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.TLS.Validate()
}

// Target returns the bucket name.
func (c *Config) Target() string { return c.Bucket }
