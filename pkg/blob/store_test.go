package blob

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*FSStore, afero.Fs) {
	fs := afero.NewMemMapFs()
	s, err := NewFSStore(fs, "/public/hms_files", "hms_files", nil)
	require.NoError(t, err)
	return s, fs
}

func TestSaveWritesUniqueNames(t *testing.T) {
	s, fs := newTestStore(t)
	ctx := context.Background()

	first, err := s.Save(ctx, "patient", "PNG", []byte("one"))
	require.NoError(t, err)
	second, err := s.Save(ctx, "patient", "png", []byte("two"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(first, "hms_files/patient_"))
	assert.True(t, strings.HasSuffix(first, ".png"))

	data, err := afero.ReadFile(fs, filepath.Join("/public/hms_files", filepath.Base(first)))
	require.NoError(t, err)
	assert.Equal(t, "one", string(data))

	objects, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, objects, 2, "temp files are renamed away")
}

func TestDeleteIsIdempotent(t *testing.T) {
	s, fs := newTestStore(t)
	ctx := context.Background()

	p, err := s.Save(ctx, "patient", "jpg", []byte("img"))
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, p))
	exists, err := afero.Exists(fs, filepath.Join("/public/hms_files", filepath.Base(p)))
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, s.Delete(ctx, p))
	assert.NoError(t, s.Delete(ctx, "hms_files/never_written.png"))
}

func TestDeleteRejectsTraversal(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Delete(context.Background(), "hms_files/../../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)

	err = s.Delete(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestSaveHonoursCancelledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Save(ctx, "patient", "png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSystemServesFilesOnly(t *testing.T) {
	s, _ := newTestStore(t)

	p, err := s.Save(context.Background(), "patient", "png", []byte("img"))
	require.NoError(t, err)

	fsys := s.FileSystem()

	f, err := fsys.Open("/" + filepath.Base(p))
	require.NoError(t, err)
	f.Close()

	_, err = fsys.Open("/")
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = fsys.Open("/missing.png")
	assert.Error(t, err)
}
