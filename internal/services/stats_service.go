package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/clubpulse/clubpulse/internal/models"
	"golang.org/x/sync/errgroup"
)

// streakLookbackDays caps the contribution streak scan
const streakLookbackDays = 30

// GitHubAPI is the upstream source-control client the aggregator depends on
type GitHubAPI interface {
	FetchProfile(ctx context.Context, username string) (*models.Profile, error)
	FetchRepositories(ctx context.Context, username string) ([]models.RepositorySummary, error)
	FetchRecentEvents(ctx context.Context, username string) ([]models.ContributionEvent, error)
}

type StatsService struct {
	github GitHubAPI
}

func NewStatsService(github GitHubAPI) *StatsService {
	return &StatsService{github: github}
}

// Aggregate fetches profile, repositories and recent events for a username
// and folds them into one statistics snapshot. The three fetches have no
// data dependency on each other and run concurrently; the first failure
// cancels the others and fails the whole operation. No partial snapshot is
// ever produced.
func (s *StatsService) Aggregate(ctx context.Context, userKey, username string) (*models.StatisticsSnapshot, error) {
	var (
		profile *models.Profile
		repos   []models.RepositorySummary
		events  []models.ContributionEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.github.FetchProfile(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		repos, err = s.github.FetchRepositories(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		events, err = s.github.FetchRecentEvents(gctx, username)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshot := models.NewStatisticsSnapshot(userKey, username)
	snapshot.PublicRepoCount = profile.PublicRepoCount
	snapshot.FollowerCount = profile.FollowerCount
	snapshot.FollowingCount = profile.FollowingCount
	snapshot.TopLanguages = ComputeLanguageShares(repos)

	for _, repo := range repos {
		snapshot.TotalStars += repo.StarCount
		snapshot.TotalForks += repo.ForkCount
	}

	commits, streak, lastContribution := ComputeContributionStats(events, time.Now())
	snapshot.RecentCommitCount = commits
	snapshot.ContributionStreak = streak
	snapshot.LastContributionAt = lastContribution

	return snapshot, nil
}

// ComputeLanguageShares ranks languages by aggregate repository size.
// Repositories without a primary language are excluded from both the
// numerator and the denominator. Ties keep first-encountered order; at
// most five entries are returned.
func ComputeLanguageShares(repos []models.RepositorySummary) []models.LanguageShare {
	totals := make(map[string]int64)
	var order []string
	var totalBytes int64

	for _, repo := range repos {
		if repo.PrimaryLanguage == "" {
			continue
		}
		if _, seen := totals[repo.PrimaryLanguage]; !seen {
			order = append(order, repo.PrimaryLanguage)
		}
		totals[repo.PrimaryLanguage] += repo.SizeBytes
		totalBytes += repo.SizeBytes
	}

	if totalBytes == 0 {
		return nil
	}

	shares := make([]models.LanguageShare, 0, len(order))
	for _, language := range order {
		percentage := int(math.Round(100 * float64(totals[language]) / float64(totalBytes)))
		shares = append(shares, models.LanguageShare{
			Language:   language,
			Percentage: percentage,
		})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Percentage > shares[j].Percentage
	})

	if len(shares) > models.MaxTopLanguages {
		shares = shares[:models.MaxTopLanguages]
	}

	return shares
}

// ComputeContributionStats derives the recent commit count, the contribution
// streak and the last contribution time from an event window.
//
// The commit count sums push events only, over whatever window the API
// returned (roughly the last 100 events). The streak walks calendar days
// backward from today, up to 30 days: a day with no events ends the streak
// unless that day is today itself, so a run that ended yesterday still reads
// as live. Events are sorted newest-first here rather than trusting the
// caller's ordering.
func ComputeContributionStats(events []models.ContributionEvent, now time.Time) (int, int, *time.Time) {
	sorted := make([]models.ContributionEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	commits := 0
	activeDays := make(map[string]bool)
	for i := range sorted {
		if sorted[i].Kind == models.EventKindPush {
			commits += sorted[i].CommitCount
		}
		activeDays[sorted[i].DateKey()] = true
	}

	streak := 0
	for i := 0; i < streakLookbackDays; i++ {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		if activeDays[day] {
			streak++
			continue
		}
		if i == 0 {
			// Today having no events yet does not end a streak that
			// continues into yesterday.
			continue
		}
		break
	}

	var lastContribution *time.Time
	if len(sorted) > 0 {
		ts := sorted[0].Timestamp
		lastContribution = &ts
	}

	return commits, streak, lastContribution
}
