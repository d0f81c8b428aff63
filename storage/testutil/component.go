package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/libcatapult/catapult/component"
	"github.com/libcatapult/catapult/storage"
	"github.com/libcatapult/catapult/testutil"
)

const backendName = "memory"

// Component is an in-memory storage backend that is also a lifecycle test
// component: Start/Stop map to Connect/Close, and its objects can be reset,
// snapshotted and restored between test cases.
type Component struct {
	objects   map[string][]byte
	connected bool
	// CountUnsupported makes Count fail like a backend that cannot count.
	CountUnsupported bool
	mu               sync.RWMutex
}

var (
	_ component.Component    = (*Component)(nil)
	_ testutil.TestComponent = (*Component)(nil)
	_ storage.Storage        = (*Component)(nil)
)

// NewComponent creates an empty, unconnected in-memory backend.
func NewComponent() *Component {
	return &Component{objects: make(map[string][]byte)}
}

// Storage returns the component as a storage.Storage.
func (c *Component) Storage() storage.Storage { return c }

// Seed stores objects directly, bypassing the connection check.
func (c *Component) Seed(objects map[string]string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range objects {
		c.objects[k] = []byte(v)
	}
}

// --- component.Component ---

func (c *Component) Name() string { return "storage-test" }

func (c *Component) Start(ctx context.Context) error { return c.Connect(ctx) }

func (c *Component) Stop(_ context.Context) error { return c.Close() }

func (c *Component) Health(_ context.Context) component.Health {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "not connected"}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

// --- testutil.TestComponent ---

func (c *Component) Reset(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = make(map[string][]byte)
	return nil
}

func (c *Component) Snapshot(_ context.Context) (any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clone(c.objects), nil
}

func (c *Component) Restore(_ context.Context, snap any) error {
	s, ok := snap.(map[string][]byte)
	if !ok {
		return fmt.Errorf("invalid snapshot type: expected map[string][]byte, got %T", snap)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = clone(s)
	return nil
}

// --- storage.Storage ---

func (c *Component) Connect(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = true
	return nil
}

// Close disconnects. Objects survive, like a remote bucket would.
func (c *Component) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

func (c *Component) Count(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return 0, storage.NotConnected(backendName)
	}
	if c.CountUnsupported {
		return 0, storage.Unsupported(backendName, "count", "disabled for this test")
	}
	return int64(len(c.objects)), nil
}

func (c *Component) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	objects, err := c.ListFilesWithSizes(ctx, prefix)
	if err != nil {
		return nil, err
	}
	return storage.Names(objects), nil
}

func (c *Component) ListFilesWithSizes(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return nil, storage.NotConnected(backendName)
	}
	result := []storage.ObjectInfo{}
	for name, data := range c.objects {
		if strings.HasPrefix(name, prefix) {
			result = append(result, storage.ObjectInfo{Name: name, Size: int64(len(data))})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (c *Component) FetchFile(ctx context.Context, path, destination string) error {
	data, err := c.GetObjectBody(ctx, path)
	if err != nil {
		return err
	}
	return storage.WriteFile(destination, bytes.NewReader(data))
}

func (c *Component) PutFile(_ context.Context, source, destination string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return storage.NotConnected(backendName)
	}
	f, err := storage.OpenSource(source)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read side

	data, err := io.ReadAll(f)
	if err != nil {
		return storage.LocalIO(source, err)
	}
	c.objects[destination] = data
	return nil
}

func (c *Component) GetObjectBody(_ context.Context, path string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected {
		return nil, storage.NotConnected(backendName)
	}
	data, ok := c.objects[path]
	if !ok {
		return nil, storage.ObjectNotFound(backendName, path, nil)
	}
	return append([]byte(nil), data...), nil
}

func clone(m map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(m))
	for k, v := range m {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
