package azblob

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	sdk "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/libcatapult/catapult/storage"
)

// API is the part of the blob service the backend uses. It is narrower than
// the SDK client so it can be faked without an account.
type API interface {
	ListBlobs(ctx context.Context, container, prefix string) ([]storage.ObjectInfo, error)
	Download(ctx context.Context, container, blob string) (io.ReadCloser, error)
	Upload(ctx context.Context, container, blob string, f *os.File) error
}

// ClientFactory builds the API on Connect.
type ClientFactory func(cfg Config) (API, error)

// NewClient builds an SDK-backed API from the connection string.
func NewClient(cfg Config) (API, error) {
	opts, err := clientOptions(cfg)
	if err != nil {
		return nil, err
	}
	c, err := sdk.NewClientFromConnectionString(cfg.ConnectionString, opts)
	if err != nil {
		return nil, err
	}
	return &sdkClient{client: c}, nil
}

// clientOptions returns nil unless TLS settings require a custom transport.
func clientOptions(cfg Config) (*sdk.ClientOptions, error) {
	tlsCfg, err := cfg.TLS.Build()
	if err != nil || tlsCfg == nil {
		return nil, err
	}
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = tlsCfg
	return &sdk.ClientOptions{
		ClientOptions: azcore.ClientOptions{Transport: &http.Client{Transport: tr}},
	}, nil
}

type sdkClient struct {
	client *sdk.Client
}

func (c *sdkClient) ListBlobs(ctx context.Context, container, prefix string) ([]storage.ObjectInfo, error) {
	opts := &sdk.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}
	pager := c.client.NewListBlobsFlatPager(container, opts)

	objects := []storage.ObjectInfo{}
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			o := storage.ObjectInfo{Name: *item.Name}
			if item.Properties != nil && item.Properties.ContentLength != nil {
				o.Size = *item.Properties.ContentLength
			}
			objects = append(objects, o)
		}
	}
	return objects, nil
}

func (c *sdkClient) Download(ctx context.Context, container, blob string) (io.ReadCloser, error) {
	resp, err := c.client.DownloadStream(ctx, container, blob, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *sdkClient) Upload(ctx context.Context, container, blob string, f *os.File) error {
	_, err := c.client.UploadFile(ctx, container, blob, f, nil)
	return err
}
