package storage

import (
	"context"
)

// ObjectInfo is the metadata of a remote object as reported by its backend.
type ObjectInfo struct {
	Name string // Object key within the bucket/container
	Size int64  // Size in bytes
}

// Storage is implemented by every backend. A backend is constructed with its
// credentials, then Connect establishes the client handle; every data
// operation fails with ErrNotConnected until then and again after Close.
//
// Listings are fully materialized. Implementations do no internal locking
// and must not be shared between goroutines without external
// synchronization.
type Storage interface {
	// Connect establishes and caches the backend client. Calling it again
	// while connected is a no-op.
	Connect(ctx context.Context) error

	// Close releases the client. It is safe to call when never connected.
	Close() error

	// Count returns the number of objects in the bucket/container. Backends
	// that cannot count without an unbounded scan return ErrUnsupported.
	Count(ctx context.Context) (int64, error)

	// ListFiles returns the names of objects whose key starts with prefix.
	// Prefix is a literal string match; the empty prefix matches everything.
	ListFiles(ctx context.Context, prefix string) ([]string, error)

	// ListFilesWithSizes is ListFiles with each object's size.
	ListFilesWithSizes(ctx context.Context, prefix string) ([]ObjectInfo, error)

	// FetchFile downloads the object at path into the local file
	// destination, overwriting it. When the object does not exist the
	// destination is left untouched and ErrObjectNotFound is returned.
	FetchFile(ctx context.Context, path, destination string) error

	// PutFile uploads the local file source as object destination,
	// overwriting any existing object of that name.
	PutFile(ctx context.Context, source, destination string) error

	// GetObjectBody returns the full content of the object at path.
	GetObjectBody(ctx context.Context, path string) ([]byte, error)
}

// Names projects a listing with sizes onto its object names.
func Names(objects []ObjectInfo) []string {
	names := make([]string, len(objects))
	for i, o := range objects {
		names[i] = o.Name
	}
	return names
}
