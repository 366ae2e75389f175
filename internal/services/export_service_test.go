package services

import (
	"testing"

	"github.com/clubpulse/clubpulse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildWorkbook(t *testing.T) {
	snapshot := models.NewStatisticsSnapshot("member-1", "octocat")
	snapshot.PublicRepoCount = 8
	snapshot.TotalStars = 17
	snapshot.TopLanguages = []models.LanguageShare{
		{Language: "Go", Percentage: 75},
		{Language: "Python", Percentage: 25},
	}

	workbook, err := NewExportService().BuildWorkbook(snapshot)
	require.NoError(t, err)
	defer workbook.Close()

	username, err := workbook.GetCellValue("Overview", "B1")
	require.NoError(t, err)
	assert.Equal(t, "octocat", username)

	stars, err := workbook.GetCellValue("Overview", "B5")
	require.NoError(t, err)
	assert.Equal(t, "17", stars)

	language, err := workbook.GetCellValue("Languages", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Go", language)

	percentage, err := workbook.GetCellValue("Languages", "B3")
	require.NoError(t, err)
	assert.Equal(t, "25", percentage)
}
