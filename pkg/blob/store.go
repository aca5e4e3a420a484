package blob

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

var ErrInvalidPath = errors.New("blob path outside store")

const tempPrefix = ".upload-"

// Store saves and removes binary objects addressed by relative path.
type Store interface {
	// Save writes data under a generated name "<prefix>_<uuid>.<ext>" and
	// returns its public relative path.
	Save(ctx context.Context, prefix, ext string, data []byte) (string, error)
	// Delete removes path. Missing objects are not an error.
	Delete(ctx context.Context, path string) error
	// List returns every stored object.
	List(ctx context.Context) ([]ObjectInfo, error)
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// FSStore keeps objects as files in a single directory of an afero filesystem.
// Returned paths are "<publicPrefix>/<name>".
type FSStore struct {
	fs           afero.Fs
	root         string
	publicPrefix string
	metrics      *metrics.Metrics
}

// NewFSStore creates root if needed.
func NewFSStore(fs afero.Fs, root, publicPrefix string, m *metrics.Metrics) (*FSStore, error) {
	if err := fs.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create blob root %s: %w", root, err)
	}
	return &FSStore{
		fs:           fs,
		root:         root,
		publicPrefix: strings.Trim(publicPrefix, "/"),
		metrics:      m,
	}, nil
}

func (s *FSStore) Save(ctx context.Context, prefix, ext string, data []byte) (p string, err error) {
	defer func() { s.metrics.ObserveBlob("save", err) }()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s.%s", prefix, uuid.NewString(), strings.TrimPrefix(strings.ToLower(ext), "."))

	tmp, err := afero.TempFile(s.fs, s.root, tempPrefix+"*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("failed to close blob: %w", err)
	}

	if err := s.fs.Rename(tmpName, filepath.Join(s.root, name)); err != nil {
		s.fs.Remove(tmpName)
		return "", fmt.Errorf("failed to commit blob: %w", err)
	}

	return s.publicPath(name), nil
}

func (s *FSStore) Delete(ctx context.Context, p string) (err error) {
	defer func() { s.metrics.ObserveBlob("delete", err) }()

	if err := ctx.Err(); err != nil {
		return err
	}

	name, err := s.nameOf(p)
	if err != nil {
		return err
	}

	err = s.fs.Remove(filepath.Join(s.root, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob %s: %w", p, err)
	}
	return nil
}

func (s *FSStore) List(ctx context.Context) ([]ObjectInfo, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list blobs: %w", err)
	}

	objects := make([]ObjectInfo, 0, len(infos))
	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if info.IsDir() {
			continue
		}
		objects = append(objects, ObjectInfo{
			Path:    s.publicPath(info.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	return objects, nil
}

func (s *FSStore) publicPath(name string) string {
	if s.publicPrefix == "" {
		return name
	}
	return path.Join(s.publicPrefix, name)
}

// nameOf maps a public path back to a file name inside root.
func (s *FSStore) nameOf(p string) (string, error) {
	rel := strings.TrimPrefix(p, "/")
	if s.publicPrefix != "" {
		rel = strings.TrimPrefix(rel, s.publicPrefix+"/")
	}
	if rel == "" || rel != path.Base(rel) || rel == "." || rel == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return rel, nil
}

// FileSystem serves stored objects over HTTP. Directories are hidden so
// the set of stored names cannot be listed.
func (s *FSStore) FileSystem() http.FileSystem {
	return filesOnly{afero.NewHttpFs(s.fs).Dir(s.root)}
}

type filesOnly struct {
	http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	if info.IsDir() || strings.HasPrefix(info.Name(), tempPrefix) {
		file.Close()
		return nil, os.ErrNotExist
	}
	return file, nil
}
