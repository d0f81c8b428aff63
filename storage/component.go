package storage

import (
	"context"
	"fmt"

	"github.com/libcatapult/catapult/component"
	"github.com/libcatapult/catapult/logger"
)

// Component wraps Storage and implements component.Component for lifecycle
// management: Start builds and connects the backend, Stop closes it.
type Component struct {
	storage     Storage
	connected   bool
	cfg         Config
	providerCfg any
	log         *logger.Logger
}

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, providerCfg any, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:         cfg,
		providerCfg: providerCfg,
		log:         log.WithComponent("storage"),
	}
}

// Storage returns the underlying Storage, or nil if not started.
func (c *Component) Storage() Storage {
	return c.storage
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Name returns the component name.
func (c *Component) Name() string { return "storage" }

// Start builds the backend and connects it.
func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("storage component is disabled")
		return nil
	}

	s, err := New(c.cfg, c.providerCfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	if err := s.Connect(ctx); err != nil {
		return fmt.Errorf("storage connect: %w", err)
	}
	c.storage = s
	c.connected = true
	return nil
}

// Stop closes the backend. The Storage stays available so callers holding it
// get NotConnected errors instead of a nil dereference.
func (c *Component) Stop(_ context.Context) error {
	if c.storage == nil || !c.connected {
		return nil
	}
	c.connected = false
	return c.storage.Close()
}

// Health reports whether the backend is connected.
func (c *Component) Health(_ context.Context) component.Health {
	switch {
	case !c.cfg.Enabled:
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "disabled"}
	case c.storage == nil:
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	case !c.connected:
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not connected"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "connected"}
}

// Describe returns a summary for startup logging.
func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s", c.cfg.Provider)
	if d, ok := c.providerCfg.(TargetDescriber); ok {
		if t := d.Target(); t != "" {
			details += " target=" + t
		}
	}
	return component.Description{
		Name:    "Storage",
		Type:    "storage",
		Details: details,
	}
}

// TargetDescriber is optionally implemented by provider configs to name the
// bucket, container or directory they point at.
type TargetDescriber interface {
	Target() string
}
