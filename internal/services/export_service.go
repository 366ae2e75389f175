package services

import (
	"fmt"

	"github.com/clubpulse/clubpulse/internal/models"
	"github.com/xuri/excelize/v2"
)

// ExportService renders statistics snapshots into Excel workbooks for
// download from the portal.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// BuildWorkbook renders a snapshot into a two-sheet workbook: an overview
// of the profile counters and a ranked language table.
func (s *ExportService) BuildWorkbook(snapshot *models.StatisticsSnapshot) (*excelize.File, error) {
	f := excelize.NewFile()

	overview := "Overview"
	if err := f.SetSheetName("Sheet1", overview); err != nil {
		return nil, fmt.Errorf("failed to create overview sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Username", snapshot.Username},
		{"Public repositories", snapshot.PublicRepoCount},
		{"Followers", snapshot.FollowerCount},
		{"Following", snapshot.FollowingCount},
		{"Total stars", snapshot.TotalStars},
		{"Total forks", snapshot.TotalForks},
		{"Recent commits", snapshot.RecentCommitCount},
		{"Contribution streak (days)", snapshot.ContributionStreak},
		{"Fetched at", snapshot.FetchedAt.Format("2006-01-02 15:04:05")},
	}
	if snapshot.LastContributionAt != nil {
		rows = append(rows, []interface{}{"Last contribution", snapshot.LastContributionAt.Format("2006-01-02 15:04:05")})
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(overview, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write overview row: %w", err)
		}
	}

	languages := "Languages"
	if _, err := f.NewSheet(languages); err != nil {
		return nil, fmt.Errorf("failed to create languages sheet: %w", err)
	}

	header := []interface{}{"Language", "Percentage"}
	if err := f.SetSheetRow(languages, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write language header: %w", err)
	}
	for i, share := range snapshot.TopLanguages {
		row := []interface{}{share.Language, share.Percentage}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(languages, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write language row: %w", err)
		}
	}

	return f, nil
}
