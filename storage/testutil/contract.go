package testutil

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/libcatapult/catapult/storage"
)

// RunContract checks the behaviour every storage.Storage must share. newStorage
// returns a fresh, unconnected backend over an empty bucket each time it is
// called. Count may be unsupported; every other operation must work.
func RunContract(t *testing.T, newStorage func(t *testing.T) storage.Storage) {
	t.Helper()
	ctx := context.Background()

	put := func(t *testing.T, s storage.Storage, name, body string) {
		t.Helper()
		src := filepath.Join(t.TempDir(), "src")
		if err := os.WriteFile(src, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		if err := s.PutFile(ctx, src, name); err != nil {
			t.Fatalf("PutFile(%q): %v", name, err)
		}
	}

	t.Run("not connected", func(t *testing.T) {
		s := newStorage(t)
		if _, err := s.ListFiles(ctx, "reports/"); !errors.Is(err, storage.ErrNotConnected) {
			t.Errorf("ListFiles: expected ErrNotConnected, got %v", err)
		}
		if _, err := s.Count(ctx); !errors.Is(err, storage.ErrNotConnected) {
			t.Errorf("Count: expected ErrNotConnected, got %v", err)
		}
		if _, err := s.GetObjectBody(ctx, "a"); !errors.Is(err, storage.ErrNotConnected) {
			t.Errorf("GetObjectBody: expected ErrNotConnected, got %v", err)
		}
		if err := s.Close(); err != nil {
			t.Errorf("Close without Connect: %v", err)
		}
	})

	t.Run("connect and close are idempotent", func(t *testing.T) {
		s := newStorage(t)
		for i := 0; i < 2; i++ {
			if err := s.Connect(ctx); err != nil {
				t.Fatalf("Connect #%d: %v", i+1, err)
			}
		}
		put(t, s, "kept", "x")
		for i := 0; i < 2; i++ {
			if err := s.Close(); err != nil {
				t.Fatalf("Close #%d: %v", i+1, err)
			}
		}
		if _, err := s.ListFiles(ctx, ""); !errors.Is(err, storage.ErrNotConnected) {
			t.Errorf("expected ErrNotConnected after Close, got %v", err)
		}
		if err := s.Connect(ctx); err != nil {
			t.Fatal(err)
		}
		if names, err := s.ListFiles(ctx, ""); err != nil || len(names) != 1 {
			t.Errorf("after reconnect ListFiles = %v, %v", names, err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		s := newStorage(t)
		if err := s.Connect(ctx); err != nil {
			t.Fatal(err)
		}
		defer s.Close() //nolint:errcheck // test teardown

		put(t, s, "reports/a.csv", "alpha")
		put(t, s, "reports/b.csv", "bravo!")
		put(t, s, "reportsX", "x")
		put(t, s, "other/c.csv", "")

		names, err := s.ListFiles(ctx, "reports/")
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(names, ",") != "reports/a.csv,reports/b.csv" {
			t.Errorf("ListFiles(reports/) = %v", names)
		}

		all, err := s.ListFilesWithSizes(ctx, "")
		if err != nil {
			t.Fatal(err)
		}
		sizes := map[string]int64{}
		for _, o := range all {
			sizes[o.Name] = o.Size
		}
		if len(sizes) != 4 || sizes["reports/b.csv"] != 6 || sizes["other/c.csv"] != 0 {
			t.Errorf("ListFilesWithSizes = %+v", all)
		}

		switch n, err := s.Count(ctx); {
		case storage.KindOf(err) == storage.KindUnsupported:
		case err != nil:
			t.Errorf("Count: %v", err)
		case n != 4:
			t.Errorf("Count = %d, want 4", n)
		}

		body, err := s.GetObjectBody(ctx, "reports/a.csv")
		if err != nil || string(body) != "alpha" {
			t.Errorf("GetObjectBody = %q, %v", body, err)
		}

		dst := filepath.Join(t.TempDir(), "b.csv")
		if err := s.FetchFile(ctx, "reports/b.csv", dst); err != nil {
			t.Fatal(err)
		}
		if got, _ := os.ReadFile(dst); string(got) != "bravo!" {
			t.Errorf("fetched %q", got)
		}

		put(t, s, "reports/a.csv", "replaced")
		if body, _ := s.GetObjectBody(ctx, "reports/a.csv"); string(body) != "replaced" {
			t.Errorf("expected overwrite, got %q", body)
		}
	})

	t.Run("missing object", func(t *testing.T) {
		s := newStorage(t)
		if err := s.Connect(ctx); err != nil {
			t.Fatal(err)
		}
		defer s.Close() //nolint:errcheck // test teardown

		if _, err := s.GetObjectBody(ctx, "ghost"); !errors.Is(err, storage.ErrObjectNotFound) {
			t.Errorf("GetObjectBody: expected ErrObjectNotFound, got %v", err)
		}
		dst := filepath.Join(t.TempDir(), "ghost")
		if err := s.FetchFile(ctx, "ghost", dst); !errors.Is(err, storage.ErrObjectNotFound) {
			t.Errorf("FetchFile: expected ErrObjectNotFound, got %v", err)
		}
		if _, err := os.Stat(dst); !os.IsNotExist(err) {
			t.Error("FetchFile must not create the destination for a missing object")
		}
	})

	t.Run("unreadable source", func(t *testing.T) {
		s := newStorage(t)
		if err := s.Connect(ctx); err != nil {
			t.Fatal(err)
		}
		defer s.Close() //nolint:errcheck // test teardown

		err := s.PutFile(ctx, filepath.Join(t.TempDir(), "absent"), "x")
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			t.Errorf("expected *os.PathError in chain, got %v", err)
		}
	})
}
