// Package s3 implements storage.Storage on Amazon S3 and S3-compatible
// object stores.
package s3

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/libcatapult/catapult/logger"
	"github.com/libcatapult/catapult/storage"
)

const backendName = "s3"

func init() {
	storage.RegisterFactory(storage.ProviderS3, func(_ storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		c := &Config{}
		if providerCfg != nil {
			pc, ok := providerCfg.(*Config)
			if !ok {
				return nil, fmt.Errorf("s3: expected *s3.Config, got %T", providerCfg)
			}
			c = pc
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return New(*c, WithLogger(log)), nil
	})
}

// API is the subset of the S3 client the backend uses: listing plus what the
// transfer manager needs for ranged downloads and multipart uploads.
type API interface {
	awss3.ListObjectsV2APIClient
	manager.DownloadAPIClient
	manager.UploadAPIClient
}

// ClientFactory builds the S3 client on Connect.
type ClientFactory func(ctx context.Context, cfg Config) (API, error)

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

// Storage implements storage.Storage on an S3 bucket.
type Storage struct {
	cfg        Config
	client     API
	uploader   *manager.Uploader
	downloader *manager.Downloader
	newClient  ClientFactory
	log        *logger.Logger
}

var _ storage.Storage = (*Storage)(nil)

// New creates an unconnected S3 backend for cfg.Bucket.
func New(cfg Config, opts ...Option) *Storage {
	s := &Storage{cfg: cfg, newClient: NewClient}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get("storage")
	}
	s.log = s.log.WithFields(logger.Fields(logger.FieldBackend, backendName, logger.FieldBucket, cfg.Bucket))
	return s
}

// NewClient builds an SDK client from cfg with static credentials when keys
// are configured, or the default AWS credential chain otherwise.
func NewClient(ctx context.Context, cfg Config) (API, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}
	if tlsCfg != nil {
		opts = append(opts, awsconfig.WithHTTPClient(
			awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
				tr.TLSClientConfig = tlsCfg
			}),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.ForcePathStyle {
			o.UsePathStyle = true
		}
	}), nil
}

// Connect builds the S3 client. Calling it again while connected is a no-op.
func (s *Storage) Connect(ctx context.Context) error {
	if s.client != nil {
		return nil
	}
	client, err := s.newClient(ctx, s.cfg)
	if err != nil {
		return storage.Other(backendName, "connect", err)
	}
	s.client = client
	s.uploader = manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = s.cfg.PartSize
		u.Concurrency = s.cfg.Concurrency
	})
	s.downloader = manager.NewDownloader(client, func(d *manager.Downloader) {
		d.PartSize = s.cfg.PartSize
		d.Concurrency = s.cfg.Concurrency
	})
	s.log.Info("connected", logger.Fields(logger.FieldEndpoint, s.cfg.Endpoint))
	return nil
}

// Close drops the client. The SDK client holds no resources that need
// releasing beyond its idle HTTP connections.
func (s *Storage) Close() error {
	if s.client == nil {
		return nil
	}
	s.client = nil
	s.uploader = nil
	s.downloader = nil
	s.log.Info("closed")
	return nil
}

// Count returns the number of objects in the bucket. S3 has no count call, so
// this pages through the whole bucket.
func (s *Storage) Count(ctx context.Context) (int64, error) {
	if s.client == nil {
		return 0, storage.NotConnected(backendName)
	}
	var n int64
	err := s.walk(ctx, "", func(page *awss3.ListObjectsV2Output) {
		n += int64(len(page.Contents))
	})
	if err != nil {
		return 0, s.translate("count", err)
	}
	return n, nil
}

// ListFiles returns the keys starting with prefix.
func (s *Storage) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	objects, err := s.list(ctx, "list_files", prefix)
	if err != nil {
		return nil, err
	}
	return storage.Names(objects), nil
}

// ListFilesWithSizes returns the keys starting with prefix and their sizes.
func (s *Storage) ListFilesWithSizes(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return s.list(ctx, "list_files_with_sizes", prefix)
}

// FetchFile downloads key path into the local file destination. Objects
// larger than the part size are fetched as concurrent ranged GETs.
func (s *Storage) FetchFile(ctx context.Context, path, destination string) error {
	if s.client == nil {
		return storage.NotConnected(backendName)
	}
	err := storage.WriteFileAt(destination, func(w io.WriterAt) error {
		_, err := s.downloader.Download(ctx, w, s.getInput(path))
		return err
	})
	if err != nil {
		if storage.IsLocalIO(err) {
			return err
		}
		return s.translateRead("fetch_file", path, err)
	}
	s.log.Debug("fetched object", logger.Fields(logger.FieldKey, path, logger.FieldPath, destination))
	return nil
}

// PutFile uploads the local file source as key destination. Files larger
// than the part size go up as a multipart upload.
func (s *Storage) PutFile(ctx context.Context, source, destination string) error {
	if s.client == nil {
		return storage.NotConnected(backendName)
	}
	f, err := storage.OpenSource(source)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read side

	_, err = s.uploader.Upload(ctx, &awss3.PutObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(destination),
		Body:   f,
	})
	if err != nil {
		return s.translate("put_file", err)
	}
	s.log.Debug("uploaded object", logger.Fields(logger.FieldKey, destination, logger.FieldPath, source))
	return nil
}

// GetObjectBody returns the content of key path.
func (s *Storage) GetObjectBody(ctx context.Context, path string) ([]byte, error) {
	if s.client == nil {
		return nil, storage.NotConnected(backendName)
	}
	buf := manager.NewWriteAtBuffer([]byte{})
	if _, err := s.downloader.Download(ctx, buf, s.getInput(path)); err != nil {
		return nil, s.translateRead("get_object_body", path, err)
	}
	return buf.Bytes(), nil
}

func (s *Storage) getInput(key string) *awss3.GetObjectInput {
	return &awss3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(key),
	}
}

func (s *Storage) list(ctx context.Context, op, prefix string) ([]storage.ObjectInfo, error) {
	if s.client == nil {
		return nil, storage.NotConnected(backendName)
	}
	objects := []storage.ObjectInfo{}
	err := s.walk(ctx, prefix, func(page *awss3.ListObjectsV2Output) {
		for _, obj := range page.Contents {
			objects = append(objects, storage.ObjectInfo{
				Name: aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			})
		}
	})
	if err != nil {
		return nil, s.translate(op, err)
	}
	return objects, nil
}

func (s *Storage) walk(ctx context.Context, prefix string, fn func(*awss3.ListObjectsV2Output)) error {
	input := &awss3.ListObjectsV2Input{Bucket: aws.String(s.cfg.Bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	p := awss3.NewListObjectsV2Paginator(s.client, input)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		fn(page)
	}
	return nil
}

// translateRead maps an error from reading key onto the storage error
// taxonomy. Only reads can report a missing object.
func (s *Storage) translateRead(op, key string, err error) error {
	if isNotFound(err) {
		return storage.ObjectNotFound(backendName, key, err)
	}
	return s.translate(op, err)
}

// translate wraps any other SDK error as Other. A 404 here means a missing
// bucket, not a missing object.
func (s *Storage) translate(op string, err error) error {
	s.log.Debug("s3 call failed", logger.ErrorFields(op, err))
	return storage.Other(backendName, op, err)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if stderrors.As(err, &noSuchKey) || stderrors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	if stderrors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound {
		return true
	}
	return false
}
