package component

import (
	"context"
	"fmt"
	"testing"

	"github.com/libcatapult/catapult/logger"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

// describedComponent adds Describable to mockComponent.
type describedComponent struct {
	mockComponent
}

func (d *describedComponent) Describe() Description {
	return Description{Name: "Storage", Type: "storage", Details: "provider=local"}
}

func newTestRegistry() *Registry {
	return NewRegistry(logger.Nop())
}

func TestRegisterDuplicate(t *testing.T) {
	r := newTestRegistry()
	if err := r.Register(&mockComponent{name: "storage"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "storage"}); err == nil {
		t.Error("expected error registering duplicate name")
	}
}

func TestGet(t *testing.T) {
	r := newTestRegistry()
	c := &mockComponent{name: "queue"}
	r.Register(c)

	if got := r.Get("queue"); got != c {
		t.Errorf("Get returned %v, want %v", got, c)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAll(t *testing.T) {
	r := newTestRegistry()
	order := []string{}

	r.Register(&describedComponent{mockComponent{name: "storage", startOrder: &order}})
	r.Register(&mockComponent{name: "queue", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	if len(order) != 2 || order[0] != "storage" || order[1] != "queue" {
		t.Errorf("expected start order [storage, queue], got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := newTestRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "storage", startErr: fmt.Errorf("connection refused")})
	r.Register(&mockComponent{name: "queue", startOrder: &order})

	if err := r.StartAll(context.Background()); err == nil {
		t.Fatal("expected error from StartAll")
	}
	if len(order) != 0 {
		t.Errorf("components after a failure must not start, got %v", order)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := newTestRegistry()
	order := []string{}

	r.Register(&mockComponent{name: "storage", stopOrder: &order})
	r.Register(&mockComponent{name: "queue", stopOrder: &order})
	r.Register(&mockComponent{name: "archive", stopOrder: &order})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(order) != 3 || order[0] != "archive" || order[1] != "queue" || order[2] != "storage" {
		t.Errorf("expected reverse stop order [archive, queue, storage], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := newTestRegistry()
	order := []string{}
	r.Register(&mockComponent{name: "storage", stopOrder: &order})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := newTestRegistry()
	r.Register(&mockComponent{name: "storage", stopErr: fmt.Errorf("stop failed")})
	r.StartAll(context.Background())

	if err := r.StopAll(context.Background()); err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := newTestRegistry()
	r.Register(&mockComponent{
		name:   "storage",
		health: Health{Name: "storage", Status: StatusHealthy, Message: "connected"},
	})
	r.Register(&mockComponent{
		name:   "queue",
		health: Health{Name: "queue", Status: StatusUnhealthy, Message: "not connected"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected storage healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected queue unhealthy, got %s", results[1].Status)
	}
}
