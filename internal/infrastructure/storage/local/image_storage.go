// Package local stores uploaded photos in a directory on disk
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/ports/outbound"
	"github.com/pastaboard/pastaboard/pkg/filename"
)

// ImageStorage implements outbound.ImageStorage on a local directory
type ImageStorage struct {
	dir       string
	urlPrefix string
	logger    *zap.Logger
}

// NewImageStorage creates the upload directory if needed. Images are
// addressed as urlPrefix + "/" + name.
func NewImageStorage(dir, urlPrefix string, logger *zap.Logger) (*ImageStorage, error) {
	if dir == "" {
		return nil, errors.New("local storage: upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create upload dir: %w", err)
	}

	return &ImageStorage{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
		logger:    logger.Named("local-storage"),
	}, nil
}

var _ outbound.ImageStorage = (*ImageStorage)(nil)

// Dir returns the upload directory
func (s *ImageStorage) Dir() string {
	return s.dir
}

// Save writes r to dir/name, replacing an existing file of the same name
func (s *ImageStorage) Save(ctx context.Context, name string, r io.Reader) error {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("local storage: invalid image name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("local storage: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("local storage: write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("local storage: close image: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("local storage: chmod image: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("local storage: move image into place: %w", err)
	}

	s.logger.Debug("image saved", zap.String("name", name))
	return nil
}

// List returns regular files with an image extension, sorted by name
func (s *ImageStorage) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("local storage: read upload dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if filename.IsImage(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// URL returns the path the static handler serves name from
func (s *ImageStorage) URL(name string) string {
	return s.urlPrefix + "/" + url.PathEscape(name)
}

// Ping verifies the upload directory exists and is writable
func (s *ImageStorage) Ping(ctx context.Context) error {
	probe, err := os.CreateTemp(s.dir, ".ping-*")
	if err != nil {
		return fmt.Errorf("local storage: upload dir not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
