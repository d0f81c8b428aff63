package local

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/libcatapult/catapult/errors"
	"github.com/libcatapult/catapult/logger"
	"github.com/libcatapult/catapult/storage"
	"github.com/libcatapult/catapult/storage/testutil"
)

func newConnected(t *testing.T) (*Storage, string) {
	t.Helper()
	base := filepath.Join(t.TempDir(), "bucket")
	s := New(base, logger.Nop())
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return s, base
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "src")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestConnectCreatesBase(t *testing.T) {
	s, base := newConnected(t)
	if info, err := os.Stat(base); err != nil || !info.IsDir() {
		t.Fatalf("expected base directory, got %v", err)
	}
	if err := s.Connect(context.Background()); err != nil {
		t.Errorf("second Connect: %v", err)
	}
}

func TestNotConnected(t *testing.T) {
	s := New(t.TempDir(), logger.Nop())
	ctx := context.Background()
	if _, err := s.Count(ctx); !stderrors.Is(err, storage.ErrNotConnected) {
		t.Errorf("Count: %v", err)
	}
	if _, err := s.ListFiles(ctx, ""); !stderrors.Is(err, storage.ErrNotConnected) {
		t.Errorf("ListFiles: %v", err)
	}
	if _, err := s.GetObjectBody(ctx, "a"); !stderrors.Is(err, storage.ErrNotConnected) {
		t.Errorf("GetObjectBody: %v", err)
	}

	_ = s.Connect(ctx)
	_ = s.Close()
	_ = s.Close()
	if err := s.PutFile(ctx, "x", "y"); !stderrors.Is(err, storage.ErrNotConnected) {
		t.Errorf("PutFile after Close: %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	s, _ := newConnected(t)
	ctx := context.Background()

	for name, body := range map[string]string{
		"reports/2024/a.csv": "aaa",
		"reports/b.csv":      "b",
		"images/logo.png":    "png!",
	} {
		if err := s.PutFile(ctx, writeSource(t, body), name); err != nil {
			t.Fatalf("PutFile(%s): %v", name, err)
		}
	}

	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v", n, err)
	}

	names, err := s.ListFiles(ctx, "reports/")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "reports/2024/a.csv,reports/b.csv" {
		t.Errorf("ListFiles = %v", names)
	}

	sized, err := s.ListFilesWithSizes(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(sized) != 3 || sized[0] != (storage.ObjectInfo{Name: "images/logo.png", Size: 4}) {
		t.Errorf("ListFilesWithSizes = %+v", sized)
	}

	body, err := s.GetObjectBody(ctx, "reports/2024/a.csv")
	if err != nil || string(body) != "aaa" {
		t.Errorf("GetObjectBody = %q, %v", body, err)
	}

	dst := filepath.Join(t.TempDir(), "out.csv")
	if err := s.FetchFile(ctx, "reports/b.csv", dst); err != nil {
		t.Fatal(err)
	}
	if got, _ := os.ReadFile(dst); string(got) != "b" {
		t.Errorf("fetched %q", got)
	}
}

func TestPutOverwrites(t *testing.T) {
	s, _ := newConnected(t)
	ctx := context.Background()
	_ = s.PutFile(ctx, writeSource(t, "first version"), "doc")
	_ = s.PutFile(ctx, writeSource(t, "v2"), "doc")

	body, _ := s.GetObjectBody(ctx, "doc")
	if string(body) != "v2" {
		t.Errorf("expected overwrite, got %q", body)
	}
	if n, _ := s.Count(ctx); n != 1 {
		t.Errorf("expected 1 object, got %d", n)
	}
}

func TestNotFound(t *testing.T) {
	s, _ := newConnected(t)
	ctx := context.Background()

	if _, err := s.GetObjectBody(ctx, "ghost"); !stderrors.Is(err, storage.ErrObjectNotFound) {
		t.Errorf("GetObjectBody: %v", err)
	}

	dst := filepath.Join(t.TempDir(), "ghost")
	if err := s.FetchFile(ctx, "ghost", dst); !stderrors.Is(err, storage.ErrObjectNotFound) {
		t.Errorf("FetchFile: %v", err)
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("destination must not be created")
	}
}

func TestNonCanonicalNamesRejected(t *testing.T) {
	s, base := newConnected(t)
	ctx := context.Background()
	src := writeSource(t, "x")

	for _, name := range []string{
		"", "/abs.txt", "../../escape.txt", "x//y", "x/./y", "x/../y", "dir/", ".",
		stagingDir, stagingDir + "/inside",
	} {
		err := s.PutFile(ctx, src, name)
		if apperrors.CodeOf(err) != apperrors.ErrCodeInvalidInput {
			t.Errorf("PutFile(%q): expected INVALID_INPUT, got %v", name, err)
		}
		if _, err := s.GetObjectBody(ctx, name); !stderrors.Is(err, storage.ErrObjectNotFound) {
			t.Errorf("GetObjectBody(%q): expected ErrObjectNotFound, got %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(base), "escape.txt")); !os.IsNotExist(err) {
		t.Error("nothing may be written outside the base directory")
	}
	if n, _ := s.Count(ctx); n != 0 {
		t.Errorf("expected no objects stored, got %d", n)
	}
}

func TestDotNamesListed(t *testing.T) {
	s, _ := newConnected(t)
	ctx := context.Background()

	for _, name := range []string{"a.txt", ".hidden.part", "x/.y.part", ".catapult"} {
		if err := s.PutFile(ctx, writeSource(t, name), name); err != nil {
			t.Fatalf("PutFile(%q): %v", name, err)
		}
	}
	names, err := s.ListFiles(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	want := ".catapult,.hidden.part,a.txt,x/.y.part"
	if strings.Join(names, ",") != want {
		t.Errorf("ListFiles = %v, want %s", names, want)
	}
	if n, _ := s.Count(ctx); n != 4 {
		t.Errorf("Count = %d, want 4", n)
	}
	if names, _ := s.ListFiles(ctx, "x/"); len(names) != 1 || names[0] != "x/.y.part" {
		t.Errorf("ListFiles(x/) = %v", names)
	}
}

func TestPathThroughObjectIsNotFound(t *testing.T) {
	s, _ := newConnected(t)
	ctx := context.Background()
	if err := s.PutFile(ctx, writeSource(t, "a"), "a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := s.PutFile(ctx, writeSource(t, "b"), "dir/b.txt"); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"a.txt/b", "dir"} {
		if _, err := s.GetObjectBody(ctx, name); !stderrors.Is(err, storage.ErrObjectNotFound) {
			t.Errorf("GetObjectBody(%q): expected ErrObjectNotFound, got %v", name, err)
		}
		dst := filepath.Join(t.TempDir(), "out")
		if err := s.FetchFile(ctx, name, dst); !stderrors.Is(err, storage.ErrObjectNotFound) {
			t.Errorf("FetchFile(%q): expected ErrObjectNotFound, got %v", name, err)
		}
		if _, err := os.Stat(dst); !os.IsNotExist(err) {
			t.Errorf("FetchFile(%q) created the destination", name)
		}
	}
}

func TestPutFileMissingSource(t *testing.T) {
	s, _ := newConnected(t)
	err := s.PutFile(context.Background(), filepath.Join(t.TempDir(), "absent"), "a")
	var pathErr *os.PathError
	if !stderrors.As(err, &pathErr) {
		t.Errorf("expected *os.PathError, got %v", err)
	}
	if storage.KindOf(err) != storage.KindOther {
		t.Errorf("expected KindOther, got %v", storage.KindOf(err))
	}
}

func TestFactory(t *testing.T) {
	base := t.TempDir()
	s, err := storage.New(storage.Config{}, &Config{BasePath: base}, logger.Nop())
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if _, ok := s.(*Storage); !ok {
		t.Errorf("default provider should be local, got %T", s)
	}

	instrumented, err := storage.New(storage.Config{Instrument: true}, &Config{BasePath: base}, logger.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := instrumented.(*Storage); ok {
		t.Error("expected instrumented wrapper")
	}
	if err := instrumented.Connect(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n, err := instrumented.Count(context.Background()); err != nil || n != 0 {
		t.Errorf("Count through wrapper = %d, %v", n, err)
	}
}

func TestContract(t *testing.T) {
	testutil.RunContract(t, func(t *testing.T) storage.Storage {
		return New(filepath.Join(t.TempDir(), "bucket"), logger.Nop())
	})
}
