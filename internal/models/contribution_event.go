package models

import "time"

// EventKind classifies a public activity event
type EventKind string

const (
	EventKindPush        EventKind = "push"
	EventKindPullRequest EventKind = "pull_request"
	EventKindIssue       EventKind = "issue"
	EventKindReview      EventKind = "review"
	EventKindOther       EventKind = "other"
)

// ContributionEvent represents one unit of observed activity on GitHub.
// Events are ephemeral; they are fetched fresh on every aggregation run
// and never persisted individually.
type ContributionEvent struct {
	Timestamp   time.Time `json:"timestamp"`
	Kind        EventKind `json:"kind"`
	CommitCount int       `json:"commit_count"` // 0 for non-push kinds
}

// DateKey returns the calendar date of the event as a date-only string,
// local to the event's own timestamp.
func (e *ContributionEvent) DateKey() string {
	return e.Timestamp.Format("2006-01-02")
}
