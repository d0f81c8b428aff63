// Package local implements storage.Storage on a directory tree. Object names
// are slash-separated paths relative to the base directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	apperrors "github.com/libcatapult/catapult/errors"
	"github.com/libcatapult/catapult/logger"
	"github.com/libcatapult/catapult/storage"
)

const backendName = "local"

// stagingDir holds uploads in progress. It lives under the base directory so
// the final rename stays on one filesystem, and is never listed.
const stagingDir = ".catapult-staging"

func init() {
	storage.RegisterFactory(storage.ProviderLocal, func(_ storage.Config, providerCfg any, log *logger.Logger) (storage.Storage, error) {
		c := &Config{}
		if providerCfg != nil {
			pc, ok := providerCfg.(*Config)
			if !ok {
				return nil, fmt.Errorf("local: expected *local.Config, got %T", providerCfg)
			}
			c = pc
		}
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return New(c.BasePath, log), nil
	})
}

// Storage implements storage.Storage on the local filesystem.
type Storage struct {
	basePath string
	root     string // resolved absolute base, empty until Connect
	log      *logger.Logger
}

var _ storage.Storage = (*Storage)(nil)

// New creates an unconnected local backend rooted at basePath.
func New(basePath string, log *logger.Logger) *Storage {
	if log == nil {
		log = logger.Get("storage")
	}
	return &Storage{
		basePath: basePath,
		log:      log.WithFields(logger.Fields(logger.FieldBackend, backendName, logger.FieldPath, basePath)),
	}
}

// Connect resolves and creates the base directory.
func (s *Storage) Connect(_ context.Context) error {
	if s.root != "" {
		return nil
	}
	abs, err := filepath.Abs(s.basePath)
	if err != nil {
		return storage.LocalIO(s.basePath, err)
	}
	if err := os.MkdirAll(filepath.Join(abs, stagingDir), 0o750); err != nil {
		return storage.LocalIO(abs, err)
	}
	s.root = abs
	s.log.Info("connected")
	return nil
}

// Close forgets the base directory.
func (s *Storage) Close() error {
	s.root = ""
	return nil
}

// Count walks the tree and counts regular files.
func (s *Storage) Count(_ context.Context) (int64, error) {
	if s.root == "" {
		return 0, storage.NotConnected(backendName)
	}
	objects, err := s.walk("")
	if err != nil {
		return 0, err
	}
	return int64(len(objects)), nil
}

// ListFiles returns object names starting with prefix, sorted.
func (s *Storage) ListFiles(_ context.Context, prefix string) ([]string, error) {
	if s.root == "" {
		return nil, storage.NotConnected(backendName)
	}
	objects, err := s.walk(prefix)
	if err != nil {
		return nil, err
	}
	return storage.Names(objects), nil
}

// ListFilesWithSizes returns objects starting with prefix and their sizes.
func (s *Storage) ListFilesWithSizes(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if s.root == "" {
		return nil, storage.NotConnected(backendName)
	}
	return s.walk(prefix)
}

// FetchFile copies object path to destination.
func (s *Storage) FetchFile(_ context.Context, name, destination string) error {
	if s.root == "" {
		return storage.NotConnected(backendName)
	}
	full, ok := s.resolve(name)
	if !ok {
		return storage.ObjectNotFound(backendName, name, fs.ErrNotExist)
	}
	f, err := os.Open(full)
	if err != nil {
		return s.translate(name, err)
	}
	defer f.Close() //nolint:errcheck // read side

	if info, err := f.Stat(); err == nil && info.IsDir() {
		return storage.ObjectNotFound(backendName, name, fs.ErrNotExist)
	}
	return storage.WriteFile(destination, f)
}

// PutFile copies source to object destination, creating parent directories.
func (s *Storage) PutFile(_ context.Context, source, destination string) error {
	if s.root == "" {
		return storage.NotConnected(backendName)
	}
	full, ok := s.resolve(destination)
	if !ok {
		return apperrors.InvalidInput("destination",
			fmt.Sprintf("%q is not a canonical object name", destination)).
			WithDetail("backend", backendName)
	}
	f, err := storage.OpenSource(source)
	if err != nil {
		return err
	}
	defer f.Close() //nolint:errcheck // read side

	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return storage.LocalIO(full, err)
	}
	return storage.WriteFileIn(filepath.Join(s.root, stagingDir), full, f)
}

// GetObjectBody reads object path.
func (s *Storage) GetObjectBody(_ context.Context, name string) ([]byte, error) {
	if s.root == "" {
		return nil, storage.NotConnected(backendName)
	}
	full, ok := s.resolve(name)
	if !ok {
		return nil, storage.ObjectNotFound(backendName, name, fs.ErrNotExist)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, s.translate(name, err)
	}
	return data, nil
}

// resolve maps an object name to a path under root. Only canonical relative
// names outside the staging directory resolve, so a stored name always lists
// back unchanged.
func (s *Storage) resolve(name string) (string, bool) {
	if name == "" || name == "." || path.Clean(name) != name || path.IsAbs(name) ||
		name == ".." || strings.HasPrefix(name, "../") {
		return "", false
	}
	if name == stagingDir || strings.HasPrefix(name, stagingDir+"/") {
		return "", false
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), true
}

func (s *Storage) walk(prefix string) ([]storage.ObjectInfo, error) {
	objects := []storage.ObjectInfo{}
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p == filepath.Join(s.root, stagingDir) {
				return fs.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, storage.ObjectInfo{Name: name, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, storage.LocalIO(s.root, err)
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Name < objects[j].Name })
	return objects, nil
}

// translate maps a failed read of name. A path through a regular file
// (ENOTDIR) or onto a directory (EISDIR) names no object either.
func (s *Storage) translate(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) || errors.Is(err, syscall.EISDIR) {
		return storage.ObjectNotFound(backendName, name, err)
	}
	return storage.LocalIO(name, err)
}
