package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/submisoon/assessment-service/internal/cache"
	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

type EnrollmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewEnrollmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.EnrollmentRepository {
	return &EnrollmentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (e *EnrollmentPostgreSQL) GetActiveClassIDs(ctx context.Context, studentID uint) ([]uint, error) {
	var classIDs []uint
	if err := e.db.WithContext(ctx).
		Model(&models.StudentEnrollment{}).
		Where("student_id = ? AND status = ?", studentID, models.EnrollmentActive).
		Pluck("class_id", &classIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to get enrolled class ids: %w", err)
	}
	return classIDs, nil
}

func (e *EnrollmentPostgreSQL) IsEnrolledInClass(ctx context.Context, studentID, classID uint) (bool, error) {
	cacheKey := fmt.Sprintf("enrollment:%d:%d", studentID, classID)
	var enrolled bool

	err := e.cacheManager.Exists.CacheOrExecute(ctx, cacheKey, &enrolled, cache.ExistsCacheConfig.TTL, func() (interface{}, error) {
		var count int64
		if err := e.db.WithContext(ctx).
			Model(&models.StudentEnrollment{}).
			Where("student_id = ? AND class_id = ? AND status = ?", studentID, classID, models.EnrollmentActive).
			Count(&count).Error; err != nil {
			return nil, err
		}
		return count > 0, nil
	})

	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return enrolled, nil
}

type StudentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewStudentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.StudentRepository {
	return &StudentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// GetLeaderboard computes per-student submission totals with correlated
// subqueries, one row per student regardless of activity.
func (s *StudentPostgreSQL) GetLeaderboard(ctx context.Context) ([]*models.LeaderboardEntry, error) {
	var entries []*models.LeaderboardEntry

	err := s.cacheManager.Leaderboard.CacheOrExecute(ctx, "all", &entries, cache.LeaderboardCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.LeaderboardEntry
		query := `
			SELECT
				u.name AS name,
				(SELECT COUNT(*) FROM user_assessments ua
					WHERE ua.user_id = s.user_id AND ua.status = 'completed') AS total_assessments_done,
				(SELECT COUNT(DISTINCT a.id) FROM student_enrollments se
					JOIN assessments a ON a.class_id = se.class_id
					WHERE se.student_id = s.user_id AND se.status = 'active') AS total_assessments_remaining
			FROM students s
			JOIN users u ON u.id = s.user_id`

		if err := s.db.WithContext(ctx).Raw(query).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to build leaderboard: %w", err)
		}
		return rows, nil
	})

	if err != nil {
		return nil, err
	}
	return entries, nil
}
