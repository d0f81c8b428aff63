// Package azblob implements storage.Storage on an Azure Blob Storage
// container.
package azblob

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/libcatapult/catapult/logger"
	"github.com/libcatapult/catapult/storage"
)

const backendName = "azblob"

func init() {
	storage.RegisterFactory(storage.ProviderAzure, func(_ storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		c, ok := providerCfg.(*Config)
		if !ok {
			return nil, fmt.Errorf("azblob: expected *azblob.Config, got %T", providerCfg)
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return New(*c, WithLogger(log)), nil
	})
}

// Option configures a Storage.
type Option func(*Storage)

// WithClientFactory replaces the SDK client construction, mainly for tests.
func WithClientFactory(f ClientFactory) Option {
	return func(s *Storage) { s.newClient = f }
}

// WithLogger sets the logger. Defaults to logger.Get("storage").
func WithLogger(l *logger.Logger) Option {
	return func(s *Storage) { s.log = l }
}

// Storage implements storage.Storage on one blob container.
type Storage struct {
	cfg       Config
	client    API
	newClient ClientFactory
	log       *logger.Logger
}

var _ storage.Storage = (*Storage)(nil)

// New creates an unconnected backend for cfg.Container.
func New(cfg Config, opts ...Option) *Storage {
	s := &Storage{cfg: cfg, newClient: NewClient}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get("storage")
	}
	s.log = s.log.WithFields(logger.Fields(logger.FieldBackend, backendName, logger.FieldContainer, cfg.Container))
	return s
}

// Connect builds the client from the connection string. A malformed string
// fails here rather than on the first operation.
func (s *Storage) Connect(_ context.Context) error {
	if s.client != nil {
		return nil
	}
	client, err := s.newClient(s.cfg)
	if err != nil {
		return storage.Other(backendName, "connect", err)
	}
	s.client = client
	s.log.Info("connected")
	return nil
}

// Close drops the client.
func (s *Storage) Close() error {
	if s.client == nil {
		return nil
	}
	s.client = nil
	s.log.Info("closed")
	return nil
}

// Count is not offered: a container can hold an unbounded number of blobs
// and the service has no count call.
func (s *Storage) Count(_ context.Context) (int64, error) {
	if s.client == nil {
		return 0, storage.NotConnected(backendName)
	}
	return 0, storage.Unsupported(backendName, "count", "blob containers have no cheap exact count")
}

// ListFiles returns the blob names the service reports under prefix.
func (s *Storage) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	objects, err := s.list(ctx, "list_files", prefix)
	if err != nil {
		return nil, err
	}
	return storage.Names(objects), nil
}

// ListFilesWithSizes returns the blobs under prefix with their content length.
func (s *Storage) ListFilesWithSizes(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return s.list(ctx, "list_files_with_sizes", prefix)
}

// FetchFile downloads blob path into the local file destination.
func (s *Storage) FetchFile(ctx context.Context, path, destination string) error {
	if s.client == nil {
		return storage.NotConnected(backendName)
	}
	body, err := s.client.Download(ctx, s.cfg.Container, path)
	if err != nil {
		return s.translateRead("fetch_file", path, err)
	}
	defer body.Close() //nolint:errcheck // read side

	if err := storage.WriteFile(destination, body); err != nil {
		if !storage.IsLocalIO(err) {
			return s.translateRead("fetch_file", path, err)
		}
		return err
	}
	s.log.Debug("fetched blob", logger.Fields(logger.FieldKey, path, logger.FieldPath, destination))
	return nil
}

// PutFile uploads the local file source as blob destination.
func (s *Storage) PutFile(ctx context.Context, source, destination string) error {
	if s.client == nil {
		return storage.NotConnected(backendName)
	}
	f, err := storage.OpenSource(source)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read side

	if err := s.client.Upload(ctx, s.cfg.Container, destination, f); err != nil {
		return s.translate("put_file", err)
	}
	s.log.Debug("uploaded blob", logger.Fields(logger.FieldKey, destination, logger.FieldPath, source))
	return nil
}

// GetObjectBody returns the content of blob path.
func (s *Storage) GetObjectBody(ctx context.Context, path string) ([]byte, error) {
	if s.client == nil {
		return nil, storage.NotConnected(backendName)
	}
	body, err := s.client.Download(ctx, s.cfg.Container, path)
	if err != nil {
		return nil, s.translateRead("get_object_body", path, err)
	}
	defer body.Close() //nolint:errcheck // read side

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, s.translateRead("get_object_body", path, err)
	}
	return buf.Bytes(), nil
}

func (s *Storage) list(ctx context.Context, op, prefix string) ([]storage.ObjectInfo, error) {
	if s.client == nil {
		return nil, storage.NotConnected(backendName)
	}
	objects, err := s.client.ListBlobs(ctx, s.cfg.Container, prefix)
	if err != nil {
		return nil, s.translate(op, err)
	}
	if objects == nil {
		objects = []storage.ObjectInfo{}
	}
	return objects, nil
}

// translateRead maps an error from reading blob name onto the storage error
// taxonomy. Only reads can report a missing object.
func (s *Storage) translateRead(op, name string, err error) error {
	if isNotFound(err) {
		return storage.ObjectNotFound(backendName, name, err)
	}
	return s.translate(op, err)
}

// translate wraps any other SDK error as Other. A 404 here means a missing
// container, not a missing blob.
func (s *Storage) translate(op string, err error) error {
	s.log.Debug("blob call failed", logger.ErrorFields(op, err))
	return storage.Other(backendName, op, err)
}

func isNotFound(err error) bool {
	if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound, bloberror.ResourceNotFound) {
		return true
	}
	var respErr *azcore.ResponseError
	return stderrors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound
}
