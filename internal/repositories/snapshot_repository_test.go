package repositories

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/clubpulse/clubpulse/internal/models"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_create_snapshots.sql"))
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

func TestSnapshotRepository(t *testing.T) {
	t.Run("Absent snapshot returns nil without error", func(t *testing.T) {
		repo := NewSnapshotRepository(newTestDB(t))

		snapshot, err := repo.GetByUserKey("member-1")

		require.NoError(t, err)
		assert.Nil(t, snapshot)
	})

	t.Run("Upsert and read back", func(t *testing.T) {
		repo := NewSnapshotRepository(newTestDB(t))

		last := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)
		snapshot := models.NewStatisticsSnapshot("member-1", "octocat")
		snapshot.PublicRepoCount = 8
		snapshot.TotalStars = 17
		snapshot.RecentCommitCount = 4
		snapshot.ContributionStreak = 3
		snapshot.TopLanguages = []models.LanguageShare{
			{Language: "Go", Percentage: 75},
			{Language: "Python", Percentage: 25},
		}
		snapshot.LastContributionAt = &last

		require.NoError(t, repo.Upsert(snapshot))

		loaded, err := repo.GetByUserKey("member-1")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, snapshot.ID, loaded.ID)
		assert.Equal(t, "octocat", loaded.Username)
		assert.Equal(t, 8, loaded.PublicRepoCount)
		assert.Equal(t, 17, loaded.TotalStars)
		assert.Equal(t, 4, loaded.RecentCommitCount)
		assert.Equal(t, 3, loaded.ContributionStreak)
		assert.Equal(t, snapshot.TopLanguages, loaded.TopLanguages)
		require.NotNil(t, loaded.LastContributionAt)
		assert.True(t, loaded.LastContributionAt.Equal(last))
	})

	t.Run("Upsert replaces the prior snapshot for the same user key", func(t *testing.T) {
		repo := NewSnapshotRepository(newTestDB(t))

		first := models.NewStatisticsSnapshot("member-1", "octocat")
		first.TotalStars = 1
		require.NoError(t, repo.Upsert(first))

		second := models.NewStatisticsSnapshot("member-1", "octocat")
		second.TotalStars = 99
		require.NoError(t, repo.Upsert(second))

		loaded, err := repo.GetByUserKey("member-1")
		require.NoError(t, err)
		require.NotNil(t, loaded)
		assert.Equal(t, 99, loaded.TotalStars)
	})

	t.Run("Delete removes the snapshot", func(t *testing.T) {
		repo := NewSnapshotRepository(newTestDB(t))

		require.NoError(t, repo.Upsert(models.NewStatisticsSnapshot("member-1", "octocat")))
		require.NoError(t, repo.DeleteByUserKey("member-1"))

		loaded, err := repo.GetByUserKey("member-1")
		require.NoError(t, err)
		assert.Nil(t, loaded)
	})
}
