package observability

import (
	"context"
	"errors"
	"time"
)

// Config is the observability section of the application config. Exporters
// are only started when Enabled is set.
type Config struct {
	Enabled        bool          `mapstructure:"enabled" json:"enabled"`
	Endpoint       string        `mapstructure:"endpoint" json:"endpoint" validate:"required_if=Enabled true"`
	Insecure       bool          `mapstructure:"insecure" json:"insecure"`
	SampleRate     *float64      `mapstructure:"sample_rate" json:"sample_rate" validate:"omitempty,min=0,max=1"`
	MetricInterval time.Duration `mapstructure:"metric_interval" json:"metric_interval"`
}

// ApplyDefaults fills in zero-valued fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == nil {
		rate := 1.0
		c.SampleRate = &rate
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = 15 * time.Second
	}
}

// ShutdownFunc flushes and stops the exporters started by Setup.
type ShutdownFunc func(ctx context.Context) error

// Setup starts the trace and metric exporters described by cfg and returns
// the Metrics instruments to record on. When cfg is disabled it returns
// instruments on the global (no-op) meter and a no-op shutdown.
func Setup(ctx context.Context, cfg Config, serviceName, version, environment string) (*Metrics, ShutdownFunc, error) {
	if !cfg.Enabled {
		m, err := NewMetrics(Meter(serviceName))
		return m, func(context.Context) error { return nil }, err
	}
	cfg.ApplyDefaults()

	tp, err := InitTracer(ctx, TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		SampleRate:     *cfg.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}

	mp, err := InitMeter(ctx, &MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    environment,
		Endpoint:       cfg.Endpoint,
		Insecure:       cfg.Insecure,
		Interval:       cfg.MetricInterval,
	})
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, nil, err
	}

	m, err := NewMetrics(Meter(serviceName))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return nil, nil, err
	}

	return m, func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}
