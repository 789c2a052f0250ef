package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/submisoon/assessment-service/internal/models"
)

func newLeaderboardEnv(t *testing.T) (*fakeData, LeaderboardService) {
	t.Helper()

	data := newFakeData()
	data.leaderboard = []*models.LeaderboardEntry{
		{Name: "Citra", TotalAssessmentsDone: 5, TotalAssessmentsRemaining: 1},
		{Name: "Andi", TotalAssessmentsDone: 2, TotalAssessmentsRemaining: 4},
		{Name: "Budi", TotalAssessmentsDone: 5, TotalAssessmentsRemaining: 0},
	}

	service := NewLeaderboardService(newFakeRepository(data), fixedClock{now: testNow}, testLogger())
	return data, service
}

func TestGetLeaderboard(t *testing.T) {
	_, service := newLeaderboardEnv(t)
	ctx := context.Background()

	t.Run("default ranks by assessments done, name breaks ties", func(t *testing.T) {
		entries, paging, err := service.GetLeaderboard(ctx, 1, 10, "", "")
		if err != nil {
			t.Fatalf("GetLeaderboard failed: %v", err)
		}
		got := []string{entries[0].Name, entries[1].Name, entries[2].Name}
		want := []string{"Budi", "Citra", "Andi"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("order = %v, want %v", got, want)
			}
		}
		if paging.TotalItem != 3 {
			t.Errorf("paging = %+v", paging)
		}
	})

	t.Run("sort by name ascending", func(t *testing.T) {
		entries, _, err := service.GetLeaderboard(ctx, 1, 10, "name", "asc")
		if err != nil {
			t.Fatalf("GetLeaderboard failed: %v", err)
		}
		if entries[0].Name != "Andi" || entries[2].Name != "Citra" {
			t.Errorf("order = %v, %v, %v", entries[0].Name, entries[1].Name, entries[2].Name)
		}
	})

	t.Run("sort by assessment ascending", func(t *testing.T) {
		entries, _, err := service.GetLeaderboard(ctx, 1, 10, "assessment", "asc")
		if err != nil {
			t.Fatalf("GetLeaderboard failed: %v", err)
		}
		if entries[0].Name != "Andi" {
			t.Errorf("first = %v", entries[0])
		}
	})

	t.Run("explicit sort field without order is ascending", func(t *testing.T) {
		entries, _, err := service.GetLeaderboard(ctx, 1, 10, "assessment", "")
		if err != nil {
			t.Fatalf("GetLeaderboard failed: %v", err)
		}
		if entries[0].Name != "Andi" || entries[2].Name != "Citra" {
			t.Errorf("order = %v, %v, %v", entries[0].Name, entries[1].Name, entries[2].Name)
		}
	})

	t.Run("invalid sort field", func(t *testing.T) {
		_, _, err := service.GetLeaderboard(ctx, 1, 10, "score", "")
		if !errors.Is(err, ErrInvalidSortField) {
			t.Errorf("err = %v, want ErrInvalidSortField", err)
		}
	})

	t.Run("pagination", func(t *testing.T) {
		entries, paging, err := service.GetLeaderboard(ctx, 2, 2, "", "")
		if err != nil {
			t.Fatalf("GetLeaderboard failed: %v", err)
		}
		if len(entries) != 1 || entries[0].Name != "Andi" {
			t.Errorf("page 2 = %+v", entries)
		}
		if paging.TotalPage != 2 {
			t.Errorf("paging = %+v", paging)
		}
	})
}

func TestExportLeaderboard(t *testing.T) {
	_, service := newLeaderboardEnv(t)

	content, filename, err := service.ExportLeaderboard(context.Background())
	if err != nil {
		t.Fatalf("ExportLeaderboard failed: %v", err)
	}

	if !strings.HasPrefix(filename, "leaderboard_") || !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("filename = %q", filename)
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("exported content is not a workbook: %v", err)
	}
	defer workbook.Close()

	rows, err := workbook.GetRows("Leaderboard")
	if err != nil {
		t.Fatalf("failed to read sheet: %v", err)
	}
	// Header plus one row per student.
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0][1] != "Name" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Budi" || rows[1][0] != "1" {
		t.Errorf("first ranked row = %v", rows[1])
	}
}
