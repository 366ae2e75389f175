package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/clubpulse/clubpulse/internal/github"
	"github.com/clubpulse/clubpulse/internal/models"
	"github.com/clubpulse/clubpulse/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubAggregator struct {
	snapshot *models.StatisticsSnapshot
	err      error
}

func (s *stubAggregator) Aggregate(ctx context.Context, userKey, username string) (*models.StatisticsSnapshot, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

type stubStore struct {
	snapshots map[string]*models.StatisticsSnapshot
}

func (s *stubStore) GetByUserKey(userKey string) (*models.StatisticsSnapshot, error) {
	if s.snapshots == nil {
		return nil, nil
	}
	return s.snapshots[userKey], nil
}

func (s *stubStore) Upsert(snapshot *models.StatisticsSnapshot) error {
	if s.snapshots == nil {
		s.snapshots = make(map[string]*models.StatisticsSnapshot)
	}
	s.snapshots[snapshot.UserKey] = snapshot
	return nil
}

func newTestRouter(aggregator services.Aggregator) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cacheService := services.NewSnapshotCacheService(aggregator, &stubStore{}, time.Hour)
	handler := NewStatsHandler(cacheService, services.NewExportService())

	router := gin.New()
	router.GET("/users/:username/stats", handler.GetStats)
	router.GET("/users/:username/stats/export", handler.ExportStats)
	return router
}

func TestGetStats(t *testing.T) {
	t.Run("Successful snapshot returns 200", func(t *testing.T) {
		snapshot := models.NewStatisticsSnapshot("octocat", "octocat")
		snapshot.TotalStars = 17
		router := newTestRouter(&stubAggregator{snapshot: snapshot})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/octocat/stats", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"total_stars":17`)
	})

	t.Run("Unknown user returns 404", func(t *testing.T) {
		router := newTestRouter(&stubAggregator{err: &github.NotFoundError{Username: "ghost"}})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/ghost/stats", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Upstream failure returns 503", func(t *testing.T) {
		router := newTestRouter(&stubAggregator{err: &github.UpstreamError{StatusCode: 500, Body: "boom"}})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/users/octocat/stats", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestExportStats(t *testing.T) {
	snapshot := models.NewStatisticsSnapshot("octocat", "octocat")
	snapshot.TopLanguages = []models.LanguageShare{{Language: "Go", Percentage: 100}}
	router := newTestRouter(&stubAggregator{snapshot: snapshot})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/users/octocat/stats/export", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "octocat-github-stats.xlsx")
	assert.NotZero(t, w.Body.Len())
}
