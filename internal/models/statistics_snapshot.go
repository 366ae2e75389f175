package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxTopLanguages caps the ranked language breakdown
const MaxTopLanguages = 5

// LanguageShare is one entry in the ranked language breakdown
type LanguageShare struct {
	Language   string `json:"language"`
	Percentage int    `json:"percentage"` // 0-100, rounded
}

// StatisticsSnapshot is the immutable result of one aggregation run for a
// portal member. A newer snapshot for the same user key replaces the old
// one wholesale; snapshots are never mutated in place.
type StatisticsSnapshot struct {
	ID                 string          `json:"id" db:"id"`
	UserKey            string          `json:"user_key" db:"user_key"`
	Username           string          `json:"username" db:"username"`
	PublicRepoCount    int             `json:"public_repo_count" db:"public_repo_count"`
	FollowerCount      int             `json:"follower_count" db:"follower_count"`
	FollowingCount     int             `json:"following_count" db:"following_count"`
	TotalStars         int             `json:"total_stars" db:"total_stars"`
	TotalForks         int             `json:"total_forks" db:"total_forks"`
	RecentCommitCount  int             `json:"recent_commit_count" db:"recent_commit_count"`
	TopLanguages       []LanguageShare `json:"top_languages" db:"top_languages"`
	ContributionStreak int             `json:"contribution_streak" db:"contribution_streak"`
	LastContributionAt *time.Time      `json:"last_contribution_at" db:"last_contribution_at"`
	FetchedAt          time.Time       `json:"fetched_at" db:"fetched_at"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// NewStatisticsSnapshot creates a new StatisticsSnapshot with a generated UUID
func NewStatisticsSnapshot(userKey, username string) *StatisticsSnapshot {
	now := time.Now()
	return &StatisticsSnapshot{
		ID:        uuid.New().String(),
		UserKey:   userKey,
		Username:  username,
		FetchedAt: now,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the StatisticsSnapshot fields
func (s *StatisticsSnapshot) Validate() error {
	if s.UserKey == "" {
		return errors.New("user key is required")
	}
	if s.Username == "" {
		return errors.New("username is required")
	}
	if s.FetchedAt.IsZero() {
		return errors.New("fetched at is required")
	}
	if s.ContributionStreak < 0 || s.ContributionStreak > 30 {
		return errors.New("contribution streak must be between 0 and 30")
	}
	if len(s.TopLanguages) > MaxTopLanguages {
		return errors.New("too many language entries")
	}
	for _, lang := range s.TopLanguages {
		if lang.Percentage < 0 || lang.Percentage > 100 {
			return errors.New("language percentage must be between 0 and 100")
		}
	}
	return nil
}

// IsFresh reports whether the snapshot is younger than ttl at the given time
func (s *StatisticsSnapshot) IsFresh(ttl time.Duration, now time.Time) bool {
	return now.Sub(s.FetchedAt) < ttl
}
