package security

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	apperrors "github.com/libcatapult/catapult/errors"
	"github.com/libcatapult/catapult/validation"
)

// TLS holds client TLS settings.
type TLS struct {
	// SkipVerify disables server certificate verification. Only for
	// self-signed development endpoints.
	SkipVerify bool `yaml:"skip_verify" mapstructure:"skip_verify" json:"skip_verify"`

	// CAFile is a PEM bundle used instead of the system roots.
	CAFile string `yaml:"ca_file" mapstructure:"ca_file" json:"ca_file"`

	// CertFile and KeyFile enable mutual TLS.
	CertFile string `yaml:"cert_file" mapstructure:"cert_file" json:"cert_file"`
	KeyFile  string `yaml:"key_file" mapstructure:"key_file" json:"key_file"`

	// ServerName overrides the name verified against the server certificate.
	ServerName string `yaml:"server_name" mapstructure:"server_name" json:"server_name"`

	// MinVersion defaults to TLS 1.2.
	MinVersion uint16 `yaml:"min_version" mapstructure:"min_version" json:"min_version"`
}

// Enabled reports whether any setting differs from the client default.
func (c *TLS) Enabled() bool {
	return c != nil && (c.SkipVerify || c.CAFile != "" || c.CertFile != "" || c.ServerName != "")
}

// Validate checks that cert_file and key_file come as a pair.
func (c *TLS) Validate() error {
	if c == nil {
		return nil
	}
	return validation.New().
		Custom((c.CertFile == "") == (c.KeyFile == ""), "tls", "cert_file and key_file must be set together").
		Err()
}

// Build returns the *tls.Config, or nil when Enabled is false.
func (c *TLS) Build() (*tls.Config, error) {
	if !c.Enabled() {
		return nil, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cfg := &tls.Config{
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec // explicit opt-in
		ServerName:         c.ServerName,
		MinVersion:         c.MinVersion,
	}
	if cfg.MinVersion == 0 {
		cfg.MinVersion = tls.VersionTLS12
	}

	if c.CAFile != "" {
		pem, err := os.ReadFile(c.CAFile)
		if err != nil {
			return nil, apperrors.LocalIO(c.CAFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, apperrors.InvalidInput("tls.ca_file", fmt.Sprintf("no certificates in %s", c.CAFile))
		}
		cfg.RootCAs = pool
	}

	if c.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
		if err != nil {
			return nil, apperrors.InvalidInput("tls.cert_file", "cannot load key pair").WithCause(err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}
