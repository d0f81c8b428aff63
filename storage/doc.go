// Package storage provides one contract over several object-storage
// backends so an application can swap them by configuration.
//
// # Backends
//
//   - storage/s3: Amazon S3 and S3-compatible stores (MinIO, Ceph)
//   - storage/azblob: Azure Blob Storage containers
//   - storage/local: a directory tree, for development
//   - storage/testutil: in-memory backend for tests
//
// Backends register themselves with RegisterFactory from init; import the
// ones you need and select one with Config.Provider:
//
//	storage:
//	  provider: "s3"
//	  enabled: true
//	s3:
//	  bucket: "reports"
//	  region: "us-east-1"
//
// # Lifecycle
//
// A backend is built unconnected. Connect creates the SDK client and Close
// drops it; both are idempotent. Every data operation returns
// ErrNotConnected outside that window.
//
// # Errors
//
// Backends translate their SDK errors into the shared taxonomy. Test with
// errors.Is against ErrNotConnected, ErrObjectNotFound and ErrUnsupported,
// or classify with KindOf.
package storage
