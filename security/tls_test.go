package security

import (
	"crypto/tls"
	"path/filepath"
	"testing"

	apperrors "github.com/libcatapult/catapult/errors"
	"github.com/libcatapult/catapult/security/tlstest"
)

func TestBuildDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  *TLS
	}{
		{"nil", nil},
		{"zero", &TLS{}},
		{"min version only", &TLS{MinVersion: tls.VersionTLS13}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.cfg.Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != nil {
				t.Error("expected nil tls.Config")
			}
			if tc.cfg.Enabled() {
				t.Error("expected Enabled() == false")
			}
		})
	}
}

func TestBuildSettings(t *testing.T) {
	got, err := (&TLS{SkipVerify: true, ServerName: "minio.internal"}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.InsecureSkipVerify {
		t.Error("expected InsecureSkipVerify")
	}
	if got.ServerName != "minio.internal" {
		t.Errorf("unexpected server name %q", got.ServerName)
	}
	if got.MinVersion != tls.VersionTLS12 {
		t.Errorf("expected TLS 1.2 minimum, got %x", got.MinVersion)
	}

	got, err = (&TLS{SkipVerify: true, MinVersion: tls.VersionTLS13}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MinVersion != tls.VersionTLS13 {
		t.Errorf("expected TLS 1.3 minimum, got %x", got.MinVersion)
	}
}

func TestBuildWithCertificates(t *testing.T) {
	certs := tlstest.Generate(t)

	got, err := (&TLS{CAFile: certs.CAFile, CertFile: certs.CertFile, KeyFile: certs.KeyFile}).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RootCAs == nil {
		t.Error("expected RootCAs")
	}
	if len(got.Certificates) != 1 {
		t.Errorf("expected 1 client certificate, got %d", len(got.Certificates))
	}
}

func TestBuildErrors(t *testing.T) {
	certs := tlstest.Generate(t)
	missing := filepath.Join(t.TempDir(), "missing.pem")

	tests := []struct {
		name string
		cfg  TLS
		code apperrors.ErrorCode
	}{
		{"unpaired cert", TLS{CertFile: certs.CertFile}, apperrors.ErrCodeInvalidInput},
		{"missing CA file", TLS{CAFile: missing}, apperrors.ErrCodeLocalIO},
		{"CA without certificates", TLS{CAFile: tlstest.InvalidPEM(t)}, apperrors.ErrCodeInvalidInput},
		{"unreadable key pair", TLS{CertFile: certs.CertFile, KeyFile: certs.CAFile}, apperrors.ErrCodeInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Build()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.CodeOf(err); got != tc.code {
				t.Errorf("expected %s, got %s (%v)", tc.code, got, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	var nilCfg *TLS
	if err := nilCfg.Validate(); err != nil {
		t.Errorf("nil config should validate: %v", err)
	}
	if err := (&TLS{CertFile: "a", KeyFile: "b"}).Validate(); err != nil {
		t.Errorf("paired files should validate: %v", err)
	}
	err := (&TLS{KeyFile: "b"}).Validate()
	if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT for key without cert, got %v", err)
	}
}
