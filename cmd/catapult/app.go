package main

import (
	"context"
	"fmt"

	"github.com/libcatapult/catapult/config"
	"github.com/libcatapult/catapult/logger"
	"github.com/libcatapult/catapult/observability"
	"github.com/libcatapult/catapult/queue/nats"
	"github.com/libcatapult/catapult/storage"
	"github.com/libcatapult/catapult/storage/azblob"
	"github.com/libcatapult/catapult/storage/local"
	"github.com/libcatapult/catapult/storage/s3"
	"github.com/libcatapult/catapult/validation"
	"github.com/libcatapult/catapult/version"
)

const serviceName = "catapult"

// AppConfig is the full configuration of the catapult binary. Importing the
// backend config packages also registers their storage factories.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	S3            s3.Config            `yaml:"s3" mapstructure:"s3"`
	Azblob        azblob.Config        `yaml:"azblob" mapstructure:"azblob"`
	Local         local.Config         `yaml:"local" mapstructure:"local"`
	Queue         nats.Config          `yaml:"queue" mapstructure:"queue"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills defaults for every section. Backend sections are
// defaulted and validated by their storage factory.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Storage.ApplyDefaults()
	c.Queue.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks the sections every command depends on.
func (c *AppConfig) Validate() error {
	return validation.New().
		Merge("config", c.ServiceConfig.Validate()).
		Merge("storage", c.Storage.Validate()).
		Merge("observability", validation.Validate(&c.Observability)).
		Err()
}

// ProviderConfig returns the backend section matching Storage.Provider.
func (c *AppConfig) ProviderConfig() any {
	switch c.Storage.Provider {
	case storage.ProviderS3:
		return &c.S3
	case storage.ProviderAzure:
		return &c.Azblob
	default:
		return &c.Local
	}
}

// app carries state shared by the commands of one invocation.
type app struct {
	configFile string
	envFile    string

	cfg      AppConfig
	log      *logger.Logger
	metrics  *observability.Metrics
	shutdown observability.ShutdownFunc

	queueOpts []nats.Option
}

// setup loads config, configures logging and starts the exporters.
func (a *app) setup(ctx context.Context) error {
	err := config.LoadAndValidate(serviceName, &a.cfg,
		config.WithConfigFile(a.configFile),
		config.WithEnvFile(a.envFile),
	)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc := a.cfg.GetServiceConfig()
	logger.Init(svc.Logging)
	a.log = logger.Get(serviceName)

	build := version.Get()
	a.log.Debug("config loaded", logger.Fields(
		"name", svc.Name,
		"environment", svc.Environment,
		"version", build.Short(),
		"release", build.IsRelease(),
	))

	m, shutdown, err := observability.Setup(ctx, a.cfg.Observability, svc.Name, build.Short(), svc.Environment)
	if err != nil {
		return fmt.Errorf("initialize observability: %w", err)
	}
	a.metrics = m
	a.shutdown = shutdown
	return nil
}

// teardown flushes and stops the exporters. Later calls do nothing.
func (a *app) teardown(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}
	shutdown := a.shutdown
	a.shutdown = nil
	return shutdown(ctx)
}

// openStorage builds the configured backend, instruments it and connects.
func (a *app) openStorage(ctx context.Context) (storage.Storage, error) {
	cfg := a.cfg.Storage
	cfg.Instrument = false

	s, err := storage.New(cfg, a.cfg.ProviderConfig(), a.log)
	if err != nil {
		return nil, err
	}
	s = storage.Instrument(s, cfg.Provider, storage.WithMetrics(a.metrics))
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// withStorage runs fn against a connected backend and closes it afterwards.
func (a *app) withStorage(ctx context.Context, fn func(storage.Storage) error) (err error) {
	s, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

func (a *app) openQueue(ctx context.Context) (*nats.Queue, error) {
	if err := a.cfg.Queue.Validate(); err != nil {
		return nil, fmt.Errorf("queue config: %w", err)
	}
	opts := append([]nats.Option{nats.WithLogger(a.log), nats.WithMetrics(a.metrics)}, a.queueOpts...)
	q := nats.New(a.cfg.Queue, opts...)
	if err := q.Connect(ctx); err != nil {
		return nil, err
	}
	return q, nil
}
