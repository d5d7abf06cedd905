// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
	"github.com/pastaboard/pastaboard/internal/ports/outbound"
)

// MockEntryRepository provides a mock implementation of EntryRepository.
// Context arguments are not passed to Called.
type MockEntryRepository struct {
	mock.Mock
	entries []*recipe.Entry
	mu      sync.RWMutex
}

// NewMockEntryRepository creates a new mock entry repository
func NewMockEntryRepository() *MockEntryRepository {
	return &MockEntryRepository{}
}

var _ outbound.EntryRepository = (*MockEntryRepository)(nil)

// Append records the entry when the expectation returns no error
func (m *MockEntryRepository) Append(ctx context.Context, e *recipe.Entry) error {
	args := m.Called(e)

	if args.Error(0) == nil {
		m.mu.Lock()
		m.entries = append(m.entries, e)
		m.mu.Unlock()
	}

	return args.Error(0)
}

// FindByFilename finds an entry by filename
func (m *MockEntryRepository) FindByFilename(ctx context.Context, filename string) (*recipe.Entry, error) {
	args := m.Called(filename)

	if e, ok := args.Get(0).(*recipe.Entry); ok {
		return e, args.Error(1)
	}
	return nil, args.Error(1)
}

// Count counts stored entries
func (m *MockEntryRepository) Count(ctx context.Context) (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

// Close closes the repository
func (m *MockEntryRepository) Close() error {
	return nil
}

// Appended returns the entries accepted by Append (for testing)
func (m *MockEntryRepository) Appended() []*recipe.Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]*recipe.Entry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// MockImageStorage provides a mock implementation of ImageStorage
type MockImageStorage struct {
	mock.Mock
	saved map[string][]byte
	mu    sync.RWMutex
}

// NewMockImageStorage creates a new mock image storage
func NewMockImageStorage() *MockImageStorage {
	return &MockImageStorage{
		saved: make(map[string][]byte),
	}
}

var _ outbound.ImageStorage = (*MockImageStorage)(nil)

// Save reads r fully and records it under name
func (m *MockImageStorage) Save(ctx context.Context, name string, r io.Reader) error {
	args := m.Called(name)
	if args.Error(0) != nil {
		return args.Error(0)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.saved[name] = data
	m.mu.Unlock()

	return nil
}

// List lists image names
func (m *MockImageStorage) List(ctx context.Context) ([]string, error) {
	args := m.Called()

	if names, ok := args.Get(0).([]string); ok {
		return names, args.Error(1)
	}
	return nil, args.Error(1)
}

// URL returns a fixed test URL
func (m *MockImageStorage) URL(name string) string {
	return "/img/" + name
}

// Ping pings the storage
func (m *MockImageStorage) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

// Saved returns the bytes saved under name (for testing)
func (m *MockImageStorage) Saved(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.saved[name]
	return data, ok
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

// NewMockCacheRepository creates a new mock cache repository
func NewMockCacheRepository() *MockCacheRepository {
	return &MockCacheRepository{}
}

var _ outbound.CacheRepository = (*MockCacheRepository)(nil)

// Get retrieves a value
func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(key)

	if data, ok := args.Get(0).([]byte); ok {
		return data, args.Error(1)
	}
	return nil, args.Error(1)
}

// Set stores a value
func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(key, value, ttl)
	return args.Error(0)
}

// Delete removes a key
func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(key)
	return args.Error(0)
}

// Exists checks a key
func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

// Ping pings the cache
func (m *MockCacheRepository) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}

// StubDraftService is a map-backed draft service for handler and service tests
type StubDraftService struct {
	mu     sync.Mutex
	counts map[string]string
	Err    error
}

// NewStubDraftService creates an empty draft stub
func NewStubDraftService() *StubDraftService {
	return &StubDraftService{counts: make(map[string]string)}
}

// SetCounts stores countsJSON for sessionID
func (s *StubDraftService) SetCounts(ctx context.Context, sessionID, countsJSON string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	s.counts[sessionID] = countsJSON
	return nil
}

// GetCounts returns the stored text or "{}"
func (s *StubDraftService) GetCounts(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return "", s.Err
	}
	if text, ok := s.counts[sessionID]; ok {
		return text, nil
	}
	return recipe.EmptyCounts, nil
}
