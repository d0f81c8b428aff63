// Package testutil adds test-only lifecycle methods (Reset, Snapshot,
// Restore) to components and helpers that tie them to testing.T.
//
//	func TestUpload(t *testing.T) {
//	    store := memory.NewComponent()
//	    testutil.T(t).Setup(store) // stopped automatically
//	    ...
//	}
//
// Manager handles several components at once, starting them in order and
// stopping them in reverse.
package testutil
