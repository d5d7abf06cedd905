// Package draft keeps each session's pending ingredient selection
package draft

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pastaboard/pastaboard/internal/domain/recipe"
	"github.com/pastaboard/pastaboard/internal/ports/inbound"
	"github.com/pastaboard/pastaboard/internal/ports/outbound"
)

const keyPrefix = "draft:"

// ErrNoSession is returned when a call carries no session id
var ErrNoSession = errors.New("draft: session id is required")

// Manager stores draft counts text in a cache keyed by session id.
// The text is kept verbatim; validation happens when a recipe is posted.
type Manager struct {
	cache  outbound.CacheRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager creates a draft manager whose entries live for ttl
func NewManager(cache outbound.CacheRepository, ttl time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		cache:  cache,
		ttl:    ttl,
		logger: logger.Named("draft-manager"),
	}
}

var _ inbound.DraftService = (*Manager)(nil)

// SetCounts replaces the session's selection with countsJSON
func (m *Manager) SetCounts(ctx context.Context, sessionID, countsJSON string) error {
	if sessionID == "" {
		return ErrNoSession
	}

	if err := m.cache.Set(ctx, keyPrefix+sessionID, []byte(countsJSON), m.ttl); err != nil {
		return fmt.Errorf("store draft counts: %w", err)
	}

	m.logger.Debug("Draft counts saved",
		zap.String("session_id", sessionID),
		zap.Int("bytes", len(countsJSON)),
	)
	return nil
}

// GetCounts returns the session's selection, or "{}" when there is none
func (m *Manager) GetCounts(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrNoSession
	}

	data, err := m.cache.Get(ctx, keyPrefix+sessionID)
	if errors.Is(err, outbound.ErrCacheMiss) {
		return recipe.EmptyCounts, nil
	}
	if err != nil {
		return "", fmt.Errorf("load draft counts: %w", err)
	}
	return string(data), nil
}
