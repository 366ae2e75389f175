package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clubpulse/clubpulse/internal/models"
)

// CacheUnavailableError indicates the snapshot store could not be reached.
// Callers treat a read failure as a cache miss and a write failure as
// non-fatal; neither may fail an otherwise-successful aggregation.
type CacheUnavailableError struct {
	Op  string
	Err error
}

func (e *CacheUnavailableError) Error() string {
	return fmt.Sprintf("snapshot store unavailable during %s: %v", e.Op, e.Err)
}

func (e *CacheUnavailableError) Unwrap() error {
	return e.Err
}

type SnapshotRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// GetByUserKey retrieves the persisted snapshot for a user key.
// Returns (nil, nil) when no snapshot exists.
func (r *SnapshotRepository) GetByUserKey(userKey string) (*models.StatisticsSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	query := `
		SELECT id, user_key, username, public_repo_count, follower_count, following_count,
		       total_stars, total_forks, recent_commit_count, top_languages,
		       contribution_streak, last_contribution_at, fetched_at, created_at, updated_at
		FROM statistics_snapshots WHERE user_key = ?
	`

	var snapshot models.StatisticsSnapshot
	var topLanguages string
	var lastContribution sql.NullTime

	err := r.db.QueryRow(query, userKey).Scan(
		&snapshot.ID, &snapshot.UserKey, &snapshot.Username,
		&snapshot.PublicRepoCount, &snapshot.FollowerCount, &snapshot.FollowingCount,
		&snapshot.TotalStars, &snapshot.TotalForks, &snapshot.RecentCommitCount,
		&topLanguages, &snapshot.ContributionStreak, &lastContribution,
		&snapshot.FetchedAt, &snapshot.CreatedAt, &snapshot.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &CacheUnavailableError{Op: "read", Err: err}
	}

	if err := json.Unmarshal([]byte(topLanguages), &snapshot.TopLanguages); err != nil {
		return nil, &CacheUnavailableError{Op: "read", Err: err}
	}
	if lastContribution.Valid {
		snapshot.LastContributionAt = &lastContribution.Time
	}

	return &snapshot, nil
}

// Upsert stores a snapshot, replacing any prior snapshot for the same user key
func (r *SnapshotRepository) Upsert(snapshot *models.StatisticsSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	topLanguages, err := json.Marshal(snapshot.TopLanguages)
	if err != nil {
		return &CacheUnavailableError{Op: "write", Err: err}
	}

	var lastContribution interface{}
	if snapshot.LastContributionAt != nil {
		lastContribution = *snapshot.LastContributionAt
	}

	query := `
		INSERT INTO statistics_snapshots (
			id, user_key, username, public_repo_count, follower_count, following_count,
			total_stars, total_forks, recent_commit_count, top_languages,
			contribution_streak, last_contribution_at, fetched_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_key) DO UPDATE SET
			username = excluded.username,
			public_repo_count = excluded.public_repo_count,
			follower_count = excluded.follower_count,
			following_count = excluded.following_count,
			total_stars = excluded.total_stars,
			total_forks = excluded.total_forks,
			recent_commit_count = excluded.recent_commit_count,
			top_languages = excluded.top_languages,
			contribution_streak = excluded.contribution_streak,
			last_contribution_at = excluded.last_contribution_at,
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at
	`

	_, err = r.db.Exec(query,
		snapshot.ID, snapshot.UserKey, snapshot.Username,
		snapshot.PublicRepoCount, snapshot.FollowerCount, snapshot.FollowingCount,
		snapshot.TotalStars, snapshot.TotalForks, snapshot.RecentCommitCount,
		string(topLanguages), snapshot.ContributionStreak, lastContribution,
		snapshot.FetchedAt, snapshot.CreatedAt, time.Now(),
	)
	if err != nil {
		return &CacheUnavailableError{Op: "write", Err: err}
	}

	return nil
}

// DeleteByUserKey removes the snapshot for a user key, if any
func (r *SnapshotRepository) DeleteByUserKey(userKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`DELETE FROM statistics_snapshots WHERE user_key = ?`, userKey)
	if err != nil {
		return &CacheUnavailableError{Op: "delete", Err: err}
	}
	return nil
}
