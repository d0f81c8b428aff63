package nats

import (
	"time"

	"github.com/libcatapult/catapult/security"
	"github.com/libcatapult/catapult/validation"
)

// Default connection settings.
const (
	DefaultURL           = "nats://127.0.0.1:4222"
	DefaultTimeout       = 5 * time.Second
	DefaultReconnectWait = 2 * time.Second
	DefaultMaxReconnects = 60
	DefaultDrainTimeout  = 10 * time.Second
)

// Config holds the NATS connection settings.
type Config struct {
	URL           string        `mapstructure:"url" json:"url" validate:"required,url"`
	Name          string        `mapstructure:"name" json:"name"`
	Token         string        `mapstructure:"token" json:"-"`
	Username      string        `mapstructure:"username" json:"username" validate:"required_with=Password"`
	Password      string        `mapstructure:"password" json:"-"`
	Timeout       time.Duration `mapstructure:"timeout" json:"timeout"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait" json:"reconnect_wait"`
	MaxReconnects int           `mapstructure:"max_reconnects" json:"max_reconnects"`
	DrainTimeout  time.Duration `mapstructure:"drain_timeout" json:"drain_timeout"`
	TLS           *security.TLS `mapstructure:"tls" json:"tls"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ReconnectWait <= 0 {
		c.ReconnectWait = DefaultReconnectWait
	}
	if c.MaxReconnects == 0 {
		c.MaxReconnects = DefaultMaxReconnects
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = DefaultDrainTimeout
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	return c.TLS.Validate()
}
