package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

const (
	sortByName       = "name"
	sortByAssessment = "assessment"
)

type leaderboardService struct {
	repo   repositories.Repository
	clock  Clock
	logger *slog.Logger
}

func NewLeaderboardService(repo repositories.Repository, clock Clock, logger *slog.Logger) LeaderboardService {
	return &leaderboardService{
		repo:   repo,
		clock:  clock,
		logger: logger,
	}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, page, size int, sortBy, order string) ([]*models.LeaderboardEntry, *models.Paging, error) {
	entries, err := s.sorted(ctx, sortBy, order)
	if err != nil {
		return nil, nil, err
	}

	paged, paging := paginate(entries, page, size)
	return paged, paging, nil
}

func (s *leaderboardService) ExportLeaderboard(ctx context.Context) ([]byte, string, error) {
	entries, err := s.sorted(ctx, sortByAssessment, "desc")
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	const sheet = "Leaderboard"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create worksheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("failed to drop default worksheet: %w", err)
	}

	headers := []string{"Rank", "Name", "Assessments Done", "Assessments Remaining"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		_ = f.SetCellStyle(sheet, "A1", "D1", headerStyle)
	}

	for i, entry := range entries {
		row := i + 2
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), i+1)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), entry.Name)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), entry.TotalAssessmentsDone)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), entry.TotalAssessmentsRemaining)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("leaderboard_%s.xlsx", s.clock.Now().Format("2006-01-02"))
	s.logger.Info("Exported leaderboard", "rows", len(entries), "filename", filename)
	return buf.Bytes(), filename, nil
}

// sorted loads the full leaderboard and applies the requested ordering.
// The default ranking is most assessments done first, ties broken by name.
func (s *leaderboardService) sorted(ctx context.Context, sortBy, order string) ([]*models.LeaderboardEntry, error) {
	defaultRanking := sortBy == ""
	if defaultRanking {
		sortBy = sortByAssessment
	}
	if sortBy != sortByName && sortBy != sortByAssessment {
		return nil, ErrInvalidSortField
	}

	// An explicit sort field orders ascending unless the caller says
	// otherwise; only the unspecified default ranking is descending.
	descending := order == "desc" || (order == "" && defaultRanking)

	entries, err := s.repo.Student().GetLeaderboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		var less bool
		switch sortBy {
		case sortByName:
			cmp := strings.Compare(strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name))
			if cmp == 0 {
				return false
			}
			less = cmp < 0
		default:
			if entries[i].TotalAssessmentsDone == entries[j].TotalAssessmentsDone {
				return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
			}
			less = entries[i].TotalAssessmentsDone < entries[j].TotalAssessmentsDone
		}
		if descending {
			return !less
		}
		return less
	})

	return entries, nil
}
