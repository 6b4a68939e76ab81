package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalObjectStorage_PutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalObjectStorage(dir, "/files/", nil)
	require.NoError(t, err)
	ctx := context.Background()

	url, err := s.PutObject(ctx, "menu-images/r1/1700000000000.png", "image/png", strings.NewReader("png-bytes"), 9)
	require.NoError(t, err)
	assert.Equal(t, "/files/menu-images/r1/1700000000000.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "menu-images", "r1", "1700000000000.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, s.DeleteObject(ctx, "menu-images/r1/1700000000000.png"))
	_, err = os.Stat(filepath.Join(dir, "menu-images", "r1", "1700000000000.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is fine
	require.NoError(t, s.DeleteObject(ctx, "menu-images/r1/1700000000000.png"))
}

func TestLocalObjectStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalObjectStorage(t.TempDir(), "", nil)
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "a/../../b", "/abs/path"} {
		_, err := s.PutObject(ctx, key, "text/plain", strings.NewReader("x"), 1)
		assert.Error(t, err, key)
	}
}

func TestLocalObjectStorage_CancelledContext(t *testing.T) {
	s, err := NewLocalObjectStorage(t.TempDir(), "", nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.PutObject(ctx, "a.txt", "text/plain", strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, context.Canceled)
}
