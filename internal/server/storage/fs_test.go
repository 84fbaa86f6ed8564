package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "blobs")
	s, err := NewFSStore(dir)
	require.NoError(t, err)

	name, err := s.Save(ctx, "abc_report.pdf", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "abc_report.pdf", name)

	rc, err := s.Get(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "hello", string(data))

	ok, err := s.Delete(ctx, name)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Delete(ctx, name)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, name)
	assert.ErrorIs(t, err, ErrBlobNotFound)
}

func TestFSStore_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFSStore(dir)
	require.NoError(t, err)

	_, err = s.Save(context.Background(), "a", strings.NewReader("x"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Name())
}

func TestFSStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	_, err = s.Save(ctx, "a", strings.NewReader("one"))
	require.NoError(t, err)
	_, err = s.Save(ctx, "a", strings.NewReader("two"))
	require.NoError(t, err)

	rc, err := s.Get(ctx, "a")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(data))
}

func TestFSStore_RejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../escape", "a/b", `a\b`} {
		_, err := s.Save(ctx, name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrInvalidName, name)
		_, err = s.Get(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
		_, err = s.Delete(ctx, name)
		assert.ErrorIs(t, err, ErrInvalidName, name)
	}
}

func TestFSStore_SaveCanceled(t *testing.T) {
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Save(ctx, "a", strings.NewReader("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFSStore_EmptyPath(t *testing.T) {
	_, err := NewFSStore("")
	assert.Error(t, err)
}
