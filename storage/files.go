package storage

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileMode is the permission given to fetched files that did not exist
// before. An existing destination keeps its mode.
const FileMode fs.FileMode = 0o644

// OpenSource opens a local file for upload. Failures come back as LocalIO
// errors with the *fs.PathError kept in the chain.
func OpenSource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, LocalIO(path, err)
	}
	return f, nil
}

// WriteFile streams r into destination. The data goes to a temporary file in
// the same directory which is renamed over destination only once the copy
// succeeded, so a failed download never leaves a partial file behind.
//
// Errors reading r are returned as-is for the backend to translate; local
// failures are LocalIO errors.
func WriteFile(destination string, r io.Reader) error {
	return WriteFileIn(filepath.Dir(destination), destination, r)
}

// WriteFileIn is WriteFile with the temporary file created in tempDir, which
// must be on the same filesystem as destination.
func WriteFileIn(tempDir, destination string, r io.Reader) error {
	return writeTemp(tempDir, destination, func(tmp *os.File) error {
		src := &trackingReader{r: r}
		if _, err := io.Copy(tmp, src); err != nil {
			if src.err != nil {
				return src.err
			}
			return LocalIO(destination, err)
		}
		return nil
	})
}

// WriteFileAt is WriteFile for writers that fill the file at arbitrary
// offsets, such as concurrent ranged downloads. Errors returned by fill are
// passed through unless they came from writing the file.
func WriteFileAt(destination string, fill func(w io.WriterAt) error) error {
	return writeTemp(filepath.Dir(destination), destination, func(tmp *os.File) error {
		w := &trackingWriterAt{w: tmp}
		if err := fill(w); err != nil {
			if local := w.failure(); local != nil {
				return LocalIO(destination, local)
			}
			return err
		}
		return nil
	})
}

// writeTemp runs fill against a temporary file in dir and renames it over
// destination when fill succeeds.
func writeTemp(dir, destination string, fill func(tmp *os.File) error) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(destination)+".*.part")
	if err != nil {
		return LocalIO(destination, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) error {
		tmp.Close()        //nolint:errcheck // already failing
		os.Remove(tmpName) //nolint:errcheck // best effort
		return err
	}

	if err := fill(tmp); err != nil {
		return fail(err)
	}

	mode := FileMode
	if info, err := os.Stat(destination); err == nil {
		mode = info.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		return fail(LocalIO(destination, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort
		return LocalIO(destination, err)
	}
	if err := os.Rename(tmpName, destination); err != nil {
		os.Remove(tmpName) //nolint:errcheck // best effort
		return LocalIO(destination, err)
	}
	return nil
}

// trackingReader remembers the last read error so WriteFile can tell a
// broken download from a full disk.
type trackingReader struct {
	r   io.Reader
	err error
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

// trackingWriterAt remembers the first write error. Ranged downloads write
// from several goroutines.
type trackingWriterAt struct {
	w   io.WriterAt
	mu  sync.Mutex
	err error
}

func (t *trackingWriterAt) WriteAt(p []byte, off int64) (int, error) {
	n, err := t.w.WriteAt(p, off)
	if err != nil {
		t.mu.Lock()
		if t.err == nil {
			t.err = err
		}
		t.mu.Unlock()
	}
	return n, err
}

func (t *trackingWriterAt) failure() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}
