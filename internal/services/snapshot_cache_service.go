package services

import (
	"context"
	"time"

	"github.com/clubpulse/clubpulse/internal/models"
	"github.com/clubpulse/clubpulse/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// DefaultSnapshotTTL is how long a snapshot stays fresh
const DefaultSnapshotTTL = time.Hour

// Aggregator produces a fresh statistics snapshot for a user
type Aggregator interface {
	Aggregate(ctx context.Context, userKey, username string) (*models.StatisticsSnapshot, error)
}

// SnapshotStore persists snapshots keyed by user key
type SnapshotStore interface {
	GetByUserKey(userKey string) (*models.StatisticsSnapshot, error)
	Upsert(snapshot *models.StatisticsSnapshot) error
}

// SnapshotCacheService serves snapshots from the store while they are fresh
// and refreshes them through the aggregator otherwise. When a refresh fails
// but a prior snapshot exists, the stale snapshot is returned instead of the
// error: availability wins over freshness.
type SnapshotCacheService struct {
	stats Aggregator
	store SnapshotStore
	ttl   time.Duration
	group singleflight.Group
}

func NewSnapshotCacheService(stats Aggregator, store SnapshotStore, ttl time.Duration) *SnapshotCacheService {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &SnapshotCacheService{
		stats: stats,
		store: store,
		ttl:   ttl,
	}
}

// GetOrRefresh returns the cached snapshot for a user key if it is younger
// than the TTL, otherwise aggregates a fresh one and persists it. A store
// read failure counts as a cache miss. Concurrent refreshes for the same
// user key are coalesced into a single upstream call.
func (s *SnapshotCacheService) GetOrRefresh(ctx context.Context, userKey, username string, forceRefresh bool) (*models.StatisticsSnapshot, error) {
	existing, err := s.store.GetByUserKey(userKey)
	if err != nil {
		logger.WithError(err).WithField("user_key", userKey).Warnf("snapshot store read failed, treating as cache miss")
		existing = nil
	}

	if existing != nil && !forceRefresh && existing.IsFresh(s.ttl, time.Now()) {
		return existing, nil
	}

	result, err, _ := s.group.Do(userKey, func() (interface{}, error) {
		return s.refresh(ctx, userKey, username)
	})
	if err != nil {
		if existing != nil {
			logger.WithError(err).WithField("user_key", userKey).Warnf("aggregation failed, serving stale snapshot")
			return existing, nil
		}
		return nil, err
	}

	return result.(*models.StatisticsSnapshot), nil
}

// refresh aggregates a fresh snapshot and persists it. The cache write
// happens-after the aggregation it reflects; a cancelled call never writes.
func (s *SnapshotCacheService) refresh(ctx context.Context, userKey, username string) (*models.StatisticsSnapshot, error) {
	snapshot, err := s.stats.Aggregate(ctx, userKey, username)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.store.Upsert(snapshot); err != nil {
		// A failed cache write must not fail a successful aggregation.
		logger.WithError(err).WithField("user_key", userKey).Warnf("snapshot store write failed")
	}

	return snapshot, nil
}
