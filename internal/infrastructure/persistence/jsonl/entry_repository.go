// Package jsonl stores recipe entries as one JSON object per line in a
// single append-only file.
package jsonl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
	"github.com/pastaboard/pastaboard/internal/ports/outbound"
)

const lockRetryDelay = 10 * time.Millisecond

// EntryRepository implements outbound.EntryRepository on a JSON-lines file
type EntryRepository struct {
	path   string
	mu     sync.Mutex
	lock   *flock.Flock
	logger *zap.Logger
}

// NewEntryRepository creates a repository backed by the file at path.
// The file is created on first append.
func NewEntryRepository(path string, logger *zap.Logger) (*EntryRepository, error) {
	if path == "" {
		return nil, errors.New("jsonl: data file path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("jsonl: create data dir: %w", err)
		}
	}

	return &EntryRepository{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logger.Named("jsonl-store"),
	}, nil
}

var _ outbound.EntryRepository = (*EntryRepository)(nil)

// Path returns the data file location
func (r *EntryRepository) Path() string {
	return r.path
}

// Append writes entry as a single line at the end of the file
func (r *EntryRepository) Append(ctx context.Context, entry *recipe.Entry) error {
	line, err := encodeLine(entry)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	locked, err := r.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("jsonl: acquire append lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("jsonl: append lock not acquired: %w", ctx.Err())
	}
	defer func() {
		if err := r.lock.Unlock(); err != nil {
			r.logger.Warn("failed to release append lock", zap.Error(err))
		}
	}()

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("jsonl: open data file: %w", err)
	}

	if _, err := file.Write(line); err != nil {
		_ = file.Close()
		return fmt.Errorf("jsonl: write entry: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("jsonl: close data file: %w", err)
	}

	r.logger.Debug("entry appended", zap.String("filename", entry.Filename))
	return nil
}

// FindByFilename scans from the start of the file and returns the first
// entry with a matching filename. A malformed line ends the scan with an
// error wrapping recipe.ErrCorruptRecord.
func (r *EntryRepository) FindByFilename(ctx context.Context, filename string) (*recipe.Entry, error) {
	var found *recipe.Entry

	err := r.scan(ctx, func(lineNo int, line []byte) (bool, error) {
		entry, err := recipe.ParseEntry(line)
		if err != nil {
			return false, fmt.Errorf("jsonl: line %d: %w", lineNo, err)
		}
		if entry.Filename == filename {
			found = entry
			return false, nil
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, recipe.ErrEntryNotFound
	}
	return found, nil
}

// Count returns the number of stored lines
func (r *EntryRepository) Count(ctx context.Context) (int, error) {
	n := 0
	err := r.scan(ctx, func(int, []byte) (bool, error) {
		n++
		return true, nil
	})
	return n, err
}

// Close releases the lock file handle
func (r *EntryRepository) Close() error {
	return r.lock.Close()
}

// scan calls fn for every line until fn returns false or an error.
// A missing file has no lines.
func (r *EntryRepository) scan(ctx context.Context, fn func(lineNo int, line []byte) (bool, error)) error {
	file, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("jsonl: open data file: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	for lineNo := 1; ; lineNo++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("jsonl: read line %d: %w", lineNo, readErr)
		}
		if len(line) > 0 {
			more, err := fn(lineNo, bytes.TrimSuffix(line, []byte("\n")))
			if err != nil {
				return err
			}
			if !more {
				return nil
			}
		}
		if readErr != nil {
			return nil
		}
	}
}

// encodeLine renders the entry as compact JSON without HTML escaping so
// non-ASCII and markup characters are stored as typed.
func encodeLine(entry *recipe.Entry) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(entry); err != nil {
		return nil, fmt.Errorf("jsonl: encode entry: %w", err)
	}
	return buf.Bytes(), nil
}
