package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/clubpulse/clubpulse/internal/models"
	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

const (
	reposPerPage  = 100
	eventsPerPage = 100
)

// Client is a typed wrapper around the GitHub REST API. It normalizes the
// loosely-shaped API responses into model records at the boundary so the
// aggregation logic never sees raw API payloads.
type Client struct {
	api *github.Client
}

// NewClient creates a GitHub client. The token is optional; when set it is
// attached to every request through an oauth2 static token source.
func NewClient(token, baseURL string) (*Client, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	api := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub base URL: %w", err)
		}
		api.BaseURL = parsed
	}

	return &Client{api: api}, nil
}

// FetchProfile retrieves the public profile for a username
func (c *Client) FetchProfile(ctx context.Context, username string) (*models.Profile, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}

	user, _, err := c.api.Users.Get(ctx, username)
	if err != nil {
		return nil, c.wrapError(username, err)
	}

	return &models.Profile{
		Username:        user.GetLogin(),
		PublicRepoCount: user.GetPublicRepos(),
		FollowerCount:   user.GetFollowers(),
		FollowingCount:  user.GetFollowing(),
		CreatedAt:       user.GetCreatedAt().Time,
	}, nil
}

// FetchRepositories retrieves all repositories for a username, most recently
// updated first. Pagination stops when a page comes back short. The fetch
// fails as a unit: pages already retrieved are discarded on error.
func (c *Client) FetchRepositories(ctx context.Context, username string) ([]models.RepositorySummary, error) {
	opt := &github.RepositoryListByUserOptions{
		Sort:        "updated",
		Direction:   "desc",
		ListOptions: github.ListOptions{PerPage: reposPerPage, Page: 1},
	}

	var summaries []models.RepositorySummary
	for {
		repos, _, err := c.api.Repositories.ListByUser(ctx, username, opt)
		if err != nil {
			return nil, c.wrapError(username, err)
		}

		for _, repo := range repos {
			summaries = append(summaries, models.RepositorySummary{
				Name:            repo.GetName(),
				PrimaryLanguage: repo.GetLanguage(),
				// The API reports size in KB; it is only used as a relative weight.
				SizeBytes: int64(repo.GetSize()),
				StarCount: repo.GetStargazersCount(),
				ForkCount: repo.GetForksCount(),
			})
		}

		if len(repos) < reposPerPage {
			break
		}
		opt.Page++
	}

	return summaries, nil
}

// FetchRecentEvents retrieves the most recent public events for a username,
// newest first. GitHub exposes only a short event log (roughly the last 100
// events), so this is a window of recent activity, not a full history.
func (c *Client) FetchRecentEvents(ctx context.Context, username string) ([]models.ContributionEvent, error) {
	opt := &github.ListOptions{PerPage: eventsPerPage}

	rawEvents, _, err := c.api.Activity.ListEventsPerformedByUser(ctx, username, true, opt)
	if err != nil {
		return nil, c.wrapError(username, err)
	}

	events := make([]models.ContributionEvent, 0, len(rawEvents))
	for _, raw := range rawEvents {
		events = append(events, normalizeEvent(raw))
	}

	return events, nil
}

// normalizeEvent converts a raw API event into a ContributionEvent
func normalizeEvent(raw *github.Event) models.ContributionEvent {
	event := models.ContributionEvent{
		Timestamp: raw.GetCreatedAt().Time,
		Kind:      models.EventKindOther,
	}

	switch raw.GetType() {
	case "PushEvent":
		event.Kind = models.EventKindPush
		if payload, err := raw.ParsePayload(); err == nil {
			if push, ok := payload.(*github.PushEvent); ok {
				event.CommitCount = push.GetSize()
				if event.CommitCount == 0 {
					event.CommitCount = len(push.Commits)
				}
			}
		}
	case "PullRequestEvent":
		event.Kind = models.EventKindPullRequest
	case "IssuesEvent", "IssueCommentEvent":
		event.Kind = models.EventKindIssue
	case "PullRequestReviewEvent", "PullRequestReviewCommentEvent":
		event.Kind = models.EventKindReview
	}

	return event
}

// wrapError maps API failures onto the error taxonomy
func (c *Client) wrapError(username string, err error) error {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		if errResp.Response.StatusCode == http.StatusNotFound {
			return &NotFoundError{Username: username}
		}
		return &UpstreamError{
			StatusCode: errResp.Response.StatusCode,
			Body:       errResp.Message,
		}
	}

	var rateLimit *github.RateLimitError
	if errors.As(err, &rateLimit) && rateLimit.Response != nil {
		return &UpstreamError{
			StatusCode: rateLimit.Response.StatusCode,
			Body:       rateLimit.Message,
		}
	}

	return err
}
