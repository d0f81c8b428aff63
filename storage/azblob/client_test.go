package azblob

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	sdk "github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"

	"github.com/libcatapult/catapult/logger"
	"github.com/libcatapult/catapult/storage"
)

const devConnectionString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
	"AccountKey=c2VjcmV0LWtleQ==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

const listingXML = `<?xml version="1.0" encoding="utf-8"?>
<EnumerationResults ServiceEndpoint="http://127.0.0.1:10000/devstoreaccount1" ContainerName="uploads">
  <Prefix>fooo</Prefix>
  <Blobs>
    <Blob><Name>foo.bar</Name><Properties><Content-Length>123</Content-Length><BlobType>BlockBlob</BlobType></Properties></Blob>
    <Blob><Name>hello.world</Name><Properties><Content-Length>12456</Content-Length><BlobType>BlockBlob</BlobType></Properties></Blob>
  </Blobs>
  <NextMarker />
</EnumerationResults>`

// cannedTransport answers blob service requests from a fixed routing
// function and records every request it saw.
type cannedTransport struct {
	mu       sync.Mutex
	requests []*http.Request
	respond  func(req *http.Request) (int, http.Header, string)
}

func (c *cannedTransport) Do(req *http.Request) (*http.Response, error) {
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	status, header, body := c.respond(req)
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        header,
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

func (c *cannedTransport) last() *http.Request {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}

func serviceError(code string) (http.Header, string) {
	h := http.Header{}
	h.Set("x-ms-error-code", code)
	h.Set("Content-Type", "application/xml")
	return h, `<?xml version="1.0" encoding="utf-8"?><Error><Code>` + code + `</Code><Message>` + code + `</Message></Error>`
}

// sdkStorage returns a connected backend talking to the real SDK client over
// tr.
func sdkStorage(t *testing.T, tr *cannedTransport) *Storage {
	t.Helper()
	s := New(Config{ConnectionString: devConnectionString, Container: "uploads"},
		WithLogger(logger.Nop()),
		WithClientFactory(func(cfg Config) (API, error) {
			c, err := sdk.NewClientFromConnectionString(cfg.ConnectionString, &sdk.ClientOptions{
				ClientOptions: azcore.ClientOptions{
					Transport: tr,
					Retry:     policy.RetryOptions{MaxRetries: -1},
				},
			})
			if err != nil {
				return nil, err
			}
			return &sdkClient{client: c}, nil
		}),
	)
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return s
}

func TestSDKClientListProjection(t *testing.T) {
	tr := &cannedTransport{respond: func(*http.Request) (int, http.Header, string) {
		h := http.Header{}
		h.Set("Content-Type", "application/xml")
		return http.StatusOK, h, listingXML
	}}
	s := sdkStorage(t, tr)

	got, err := s.ListFilesWithSizes(context.Background(), "fooo")
	if err != nil {
		t.Fatalf("ListFilesWithSizes: %v", err)
	}
	want := []storage.ObjectInfo{{Name: "foo.bar", Size: 123}, {Name: "hello.world", Size: 12456}}
	if len(got) != len(want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("object %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	req := tr.last()
	q := req.URL.Query()
	if !strings.HasSuffix(req.URL.Path, "/uploads") || q.Get("comp") != "list" || q.Get("restype") != "container" {
		t.Errorf("unexpected list request %s", req.URL)
	}
	if q.Get("prefix") != "fooo" {
		t.Errorf("prefix = %q, want fooo", q.Get("prefix"))
	}

	if _, err := s.ListFiles(context.Background(), ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.last().URL.Query()["prefix"]; ok {
		t.Error("empty prefix must not be sent")
	}
}

func TestSDKClientDownload(t *testing.T) {
	tr := &cannedTransport{respond: func(req *http.Request) (int, http.Header, string) {
		if strings.HasSuffix(req.URL.Path, "/uploads/hello.txt") {
			h := http.Header{}
			h.Set("Content-Type", "application/octet-stream")
			return http.StatusOK, h, "hello, blob"
		}
		h, body := serviceError("BlobNotFound")
		return http.StatusNotFound, h, body
	}}
	s := sdkStorage(t, tr)
	ctx := context.Background()

	body, err := s.GetObjectBody(ctx, "hello.txt")
	if err != nil || string(body) != "hello, blob" {
		t.Fatalf("GetObjectBody = %q, %v", body, err)
	}

	_, err = s.GetObjectBody(ctx, "missing.txt")
	if !stderrors.Is(err, storage.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	var respErr *azcore.ResponseError
	if !stderrors.As(err, &respErr) || respErr.ErrorCode != "BlobNotFound" {
		t.Errorf("expected *azcore.ResponseError with BlobNotFound in chain, got %v", err)
	}

	dst := filepath.Join(t.TempDir(), "missing.txt")
	if err := s.FetchFile(ctx, "missing.txt", dst); !stderrors.Is(err, storage.ErrObjectNotFound) {
		t.Errorf("FetchFile: expected ErrObjectNotFound, got %v", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("destination must not exist after a missing download")
	}
}

func TestSDKClientMissingContainer(t *testing.T) {
	tr := &cannedTransport{respond: func(*http.Request) (int, http.Header, string) {
		h, body := serviceError("ContainerNotFound")
		return http.StatusNotFound, h, body
	}}
	s := sdkStorage(t, tr)
	ctx := context.Background()

	if _, err := s.ListFiles(ctx, ""); storage.KindOf(err) != storage.KindOther {
		t.Errorf("ListFiles: expected KindOther, got %v", err)
	}

	src := filepath.Join(t.TempDir(), "src.txt")
	if err := os.WriteFile(src, []byte("body"), 0o600); err != nil {
		t.Fatal(err)
	}
	err := s.PutFile(ctx, src, "a.txt")
	if storage.KindOf(err) != storage.KindOther {
		t.Errorf("PutFile: expected KindOther, got %v", err)
	}
	var respErr *azcore.ResponseError
	if !stderrors.As(err, &respErr) || respErr.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 response error in chain, got %v", err)
	}
}
