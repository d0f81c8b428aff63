package testutil

import (
	"context"

	"github.com/libcatapult/catapult/component"
)

// TestComponent is a component.Component whose state can be reset and
// rolled back between test cases.
type TestComponent interface {
	component.Component

	// Reset restores the component to its freshly started state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state for a later Restore.
	Snapshot(ctx context.Context) (any, error)

	// Restore returns to a state captured by Snapshot.
	Restore(ctx context.Context, snapshot any) error
}
