package models

import "time"

// RepositorySummary represents one repository owned by a GitHub user,
// reduced to the fields the statistics aggregation needs. Fetched fresh
// on every aggregation run.
type RepositorySummary struct {
	Name            string `json:"name"`
	PrimaryLanguage string `json:"primary_language"` // empty when the repository reports no language
	SizeBytes       int64  `json:"size_bytes"`
	StarCount       int    `json:"star_count"`
	ForkCount       int    `json:"fork_count"`
}

// Profile represents a GitHub user profile
type Profile struct {
	Username        string    `json:"username"`
	PublicRepoCount int       `json:"public_repo_count"`
	FollowerCount   int       `json:"follower_count"`
	FollowingCount  int       `json:"following_count"`
	CreatedAt       time.Time `json:"created_at"`
}
