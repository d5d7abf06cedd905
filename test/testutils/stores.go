// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/infrastructure/persistence/jsonl"
	"github.com/pastaboard/pastaboard/internal/infrastructure/persistence/memory"
	"github.com/pastaboard/pastaboard/internal/infrastructure/storage/local"
)

// TestStores bundles file-backed adapters rooted in a temporary directory
type TestStores struct {
	Root    string
	Entries *jsonl.EntryRepository
	Images  *local.ImageStorage
	Cache   *memory.CacheRepository
}

// SetupTestStores creates a data file, upload directory and cache that
// are cleaned up with the test
func SetupTestStores(t *testing.T) *TestStores {
	t.Helper()

	root := t.TempDir()

	entries, err := jsonl.NewEntryRepository(filepath.Join(root, "data.jsonl"), zap.NewNop())
	require.NoError(t, err, "Failed to create entry repository")

	images, err := local.NewImageStorage(filepath.Join(root, "static", "upload"), "/static/upload", zap.NewNop())
	require.NoError(t, err, "Failed to create image storage")

	cache := memory.NewCacheRepository()

	t.Cleanup(func() {
		_ = entries.Close()
		_ = cache.Close()
	})

	return &TestStores{
		Root:    root,
		Entries: entries,
		Images:  images,
		Cache:   cache,
	}
}
