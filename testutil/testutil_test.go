package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/libcatapult/catapult/component"
)

// counterComponent is a minimal TestComponent holding a single integer.
type counterComponent struct {
	name     string
	value    int
	started  bool
	startErr error
	stopErr  error
	log      *[]string
}

func (c *counterComponent) Name() string { return c.name }

func (c *counterComponent) Start(context.Context) error {
	if c.log != nil {
		*c.log = append(*c.log, "start:"+c.name)
	}
	if c.startErr != nil {
		return c.startErr
	}
	c.started = true
	return nil
}

func (c *counterComponent) Stop(context.Context) error {
	if c.log != nil {
		*c.log = append(*c.log, "stop:"+c.name)
	}
	c.started = false
	return c.stopErr
}

func (c *counterComponent) Health(context.Context) component.Health {
	return component.Health{Name: c.name, Status: component.StatusHealthy}
}

func (c *counterComponent) Reset(context.Context) error {
	c.value = 0
	return nil
}

func (c *counterComponent) Snapshot(context.Context) (any, error) { return c.value, nil }

func (c *counterComponent) Restore(_ context.Context, s any) error {
	v, ok := s.(int)
	if !ok {
		return fmt.Errorf("bad snapshot %T", s)
	}
	c.value = v
	return nil
}

func TestSetupAndCleanup(t *testing.T) {
	c := &counterComponent{name: "store"}
	cleanup, err := Setup(context.Background(), c)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if !c.started {
		t.Error("expected component started")
	}
	if err := cleanup(); err != nil {
		t.Fatal(err)
	}
	if c.started {
		t.Error("expected component stopped")
	}

	if _, err := Setup(context.Background(), &counterComponent{startErr: fmt.Errorf("boom")}); err == nil {
		t.Error("expected start error")
	}
}

func TestTHelper(t *testing.T) {
	c := &counterComponent{name: "store"}

	t.Run("inner", func(t *testing.T) {
		h := T(t)
		h.Setup(c)
		c.value = 5
		snap := h.Snapshot(c)
		c.value = 9
		h.Restore(c, snap)
		if c.value != 5 {
			t.Errorf("value after restore = %d", c.value)
		}
		h.Reset(c)
		if c.value != 0 {
			t.Errorf("value after reset = %d", c.value)
		}
	})

	if c.started {
		t.Error("expected cleanup to stop the component when the subtest ended")
	}
}

func TestManagerOrder(t *testing.T) {
	var log []string
	m := NewManager(context.Background())
	m.Add(&counterComponent{name: "storage", log: &log})
	m.Add(&counterComponent{name: "queue", log: &log})

	if err := m.StartAll(); err != nil {
		t.Fatal(err)
	}
	if err := m.StopAll(); err != nil {
		t.Fatal(err)
	}
	want := []string{"start:storage", "start:queue", "stop:queue", "stop:storage"}
	if fmt.Sprint(log) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", log, want)
	}
	if m.Get("queue") == nil || m.Get("missing") != nil {
		t.Error("unexpected Get result")
	}
}

func TestManagerErrors(t *testing.T) {
	m := NewManager(context.Background())
	m.Add(&counterComponent{name: "a", startErr: fmt.Errorf("refused")})
	m.Add(&counterComponent{name: "b", stopErr: fmt.Errorf("stuck")})

	if err := m.StartAll(); err == nil {
		t.Error("expected start failure")
	}
	if err := m.StopAll(); err == nil {
		t.Error("expected stop failure to be reported")
	}

	reset := NewManager(context.Background())
	c := &counterComponent{name: "c", value: 3}
	reset.Add(c)
	if err := reset.ResetAll(); err != nil || c.value != 0 {
		t.Errorf("ResetAll = %v, value %d", err, c.value)
	}
}
