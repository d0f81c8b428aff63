package storage

import (
	"fmt"
	"sort"

	"github.com/libcatapult/catapult/logger"
)

// Factory builds an unconnected backend from the core config and its
// provider-specific configuration. Each provider type-asserts providerCfg to
// its own config type.
type Factory func(cfg Config, providerCfg any, log *logger.Logger) (Storage, error)

var factories = make(map[string]Factory)

// RegisterFactory registers a backend factory under a provider name. Backend
// packages call this from init, so a blank import is enough to make them
// available to New.
func RegisterFactory(name string, f Factory) {
	factories[name] = f
}

// Registered returns the names of all registered providers, sorted.
func Registered() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the backend selected by cfg.Provider. The returned Storage is
// not connected yet. When cfg.Instrument is set the backend is wrapped with
// Instrument.
func New(cfg Config, providerCfg any, log *logger.Logger) (Storage, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	f, ok := factories[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("storage: provider %q is not registered (missing import?)", cfg.Provider)
	}

	l := log.WithComponent("storage")
	l.Debug("building storage backend", logger.Fields(logger.FieldBackend, cfg.Provider))

	s, err := f(cfg, providerCfg, l)
	if err != nil {
		return nil, err
	}
	if cfg.Instrument {
		s = Instrument(s, cfg.Provider)
	}
	return s, nil
}
