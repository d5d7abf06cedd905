package gorm_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
	gormrepo "github.com/pastaboard/pastaboard/internal/infrastructure/persistence/gorm"
	"github.com/pastaboard/pastaboard/internal/infrastructure/persistence/sqlite"
)

func newRepository(t *testing.T) *gormrepo.EntryRepository {
	t.Helper()

	db, err := sqlite.SetupDatabase(filepath.Join(t.TempDir(), "entries.db"), logger.Silent)
	require.NoError(t, err)

	repo := gormrepo.NewEntryRepository(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func entry(t *testing.T, filename, title string, counts recipe.Counts) *recipe.Entry {
	t.Helper()

	e, err := recipe.NewEntry(filename, title, "lee", "mix", counts, time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local))
	require.NoError(t, err)
	return e
}

func TestEntryRepository_AppendAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	_, err := repo.FindByFilename(ctx, "x.jpg")
	assert.ErrorIs(t, err, recipe.ErrEntryNotFound)

	require.NoError(t, repo.Append(ctx, entry(t, "x.jpg", "Aglio", recipe.Counts{"garlic": 3, "olive_oil": 10})))

	found, err := repo.FindByFilename(ctx, "x.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Aglio", found.Title)
	assert.Equal(t, "2024-01-02 03:04:05", found.Timestamp)
	assert.Equal(t, recipe.Counts{"garlic": 3, "olive_oil": 10}, found.Counts)
}

func TestEntryRepository_EarliestWins(t *testing.T) {
	ctx := context.Background()
	repo := newRepository(t)

	require.NoError(t, repo.Append(ctx, entry(t, "dup.png", "first", nil)))
	require.NoError(t, repo.Append(ctx, entry(t, "dup.png", "second", nil)))

	found, err := repo.FindByFilename(ctx, "dup.png")
	require.NoError(t, err)
	assert.Equal(t, "first", found.Title)
	assert.Empty(t, found.Counts)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCountsJSON_Scan(t *testing.T) {
	var c gormrepo.CountsJSON

	require.NoError(t, c.Scan(`{"salt":"2"}`))
	assert.Equal(t, gormrepo.CountsJSON{"salt": 2}, c)

	require.NoError(t, c.Scan(nil))
	assert.Empty(t, c)

	assert.ErrorIs(t, c.Scan([]byte("[1]")), recipe.ErrCorruptRecord)
	assert.Error(t, c.Scan(42))
}

func TestSQLite_ParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, sqlite.ParseLogLevel("silent"))
	assert.Equal(t, logger.Info, sqlite.ParseLogLevel("DEBUG"))
	assert.Equal(t, logger.Warn, sqlite.ParseLogLevel(""))
}
