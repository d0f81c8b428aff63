// Package testutil provides an in-memory storage backend for tests and a
// contract suite every backend's tests can run.
//
//	store := testutil.NewComponent()
//	coretestutil.T(t).Setup(store) // Start connects, cleanup closes
//	store.Seed(map[string]string{"reports/a.csv": "a,b"})
//
//	func TestContract(t *testing.T) {
//	    testutil.RunContract(t, func(t *testing.T) storage.Storage { return newBackend(t) })
//	}
package testutil
