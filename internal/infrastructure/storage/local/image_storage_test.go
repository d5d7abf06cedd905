package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newStorage(t *testing.T) *ImageStorage {
	t.Helper()

	s, err := NewImageStorage(filepath.Join(t.TempDir(), "static", "upload"), "/static/upload/", zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestImageStorage_SaveOverwrites(t *testing.T) {
	ctx := context.Background()
	s := newStorage(t)

	require.NoError(t, s.Save(ctx, "pasta.jpg", strings.NewReader("first")))
	require.NoError(t, s.Save(ctx, "pasta.jpg", strings.NewReader("second")))

	data, err := os.ReadFile(filepath.Join(s.Dir(), "pasta.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	names, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"pasta.jpg"}, names)
}

func TestImageStorage_SaveRejectsPaths(t *testing.T) {
	s := newStorage(t)

	for _, name := range []string{"", "..", "a/b.jpg", "../escape.jpg"} {
		assert.Error(t, s.Save(context.Background(), name, strings.NewReader("x")), name)
	}
}

func TestImageStorage_ListFiltersAndSorts(t *testing.T) {
	s := newStorage(t)

	for _, name := range []string{"b.png", "a.JPG", "c.jpeg", "notes.txt", "anim.gif", "noext"} {
		require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(s.Dir(), "dir.png"), 0o755))

	names, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a.JPG", "b.png", "c.jpeg"}, names)
}

func TestImageStorage_ListEmpty(t *testing.T) {
	names, err := newStorage(t).List(context.Background())

	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestImageStorage_URLAndPing(t *testing.T) {
	s := newStorage(t)

	assert.Equal(t, "/static/upload/pasta.jpg", s.URL("pasta.jpg"))
	assert.NoError(t, s.Ping(context.Background()))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}
