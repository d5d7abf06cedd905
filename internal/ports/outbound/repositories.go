// Package outbound defines the interfaces for outbound ports (secondary/driven adapters)
// These are the interfaces that the application uses to interact with external systems
package outbound

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
)

// EntryRepository is the append-only recipe record store.
// Entries are never updated or deleted.
type EntryRepository interface {
	// Append persists one entry at the end of the store
	Append(ctx context.Context, entry *recipe.Entry) error

	// FindByFilename returns the earliest entry stored under filename,
	// or recipe.ErrEntryNotFound
	FindByFilename(ctx context.Context, filename string) (*recipe.Entry, error)

	// Count returns the number of stored entries
	Count(ctx context.Context) (int, error)

	Close() error
}

// ImageStorage holds uploaded photos and lists them for the gallery
type ImageStorage interface {
	// Save writes the photo under name, replacing any existing one
	Save(ctx context.Context, name string, r io.Reader) error

	// List returns the image names sorted lexicographically
	List(ctx context.Context) ([]string, error)

	// URL returns the address a browser can load the image from
	URL(name string) string

	// Ping verifies the storage is reachable and writable
	Ping(ctx context.Context) error
}

// ErrCacheMiss is returned by CacheRepository.Get for absent or expired keys
var ErrCacheMiss = errors.New("cache: key not found")

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}
