package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component represents a lifecycle-managed piece of infrastructure.
type Component interface {
	// Name returns the unique name of the component for registration.
	Name() string

	// Start initializes and connects the component.
	Start(ctx context.Context) error

	// Stop releases the component's resources. It must be safe to call on a
	// component that never started.
	Stop(ctx context.Context) error

	// Health returns the current health status of the component.
	Health(ctx context.Context) Health
}

// Description holds summary information for startup logging.
type Description struct {
	// Name is the human-readable display name (e.g., "Storage", "Queue").
	Name string
	// Type categorizes the component: "storage", "queue".
	Type string
	// Details is a one-liner such as "provider=s3 bucket=reports".
	Details string
}

// Describable is optionally implemented by Components that can describe
// their configuration.
type Describable interface {
	Describe() Description
}
