package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/submisoon/assessment-service/internal/cache"
	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

type UserAssessmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserAssessmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserAssessmentRepository {
	return &UserAssessmentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (u *UserAssessmentPostgreSQL) Create(ctx context.Context, ua *models.UserAssessment) error {
	return u.db.WithContext(ctx).Create(ua).Error
}

func (u *UserAssessmentPostgreSQL) Update(ctx context.Context, ua *models.UserAssessment) error {
	if err := u.db.WithContext(ctx).Save(ua).Error; err != nil {
		return err
	}

	// A status flip to a terminal state changes leaderboard totals
	if ua.Submitted() {
		_ = u.cacheManager.InvalidateLeaderboard(ctx)
	}
	return nil
}

func (u *UserAssessmentPostgreSQL) GetByUserAndAssessment(ctx context.Context, userID, assessmentID uint) (*models.UserAssessment, error) {
	var ua models.UserAssessment
	if err := u.db.WithContext(ctx).
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		First(&ua).Error; err != nil {
		return nil, err
	}
	return &ua, nil
}

func (u *UserAssessmentPostgreSQL) GetWithAnswers(ctx context.Context, userID, assessmentID uint) (*models.UserAssessment, error) {
	var ua models.UserAssessment
	if err := u.db.WithContext(ctx).
		Preload("Answers").
		Preload("Answers.McqOption").
		Preload("Answers.File").
		Where("user_id = ? AND assessment_id = ?", userID, assessmentID).
		First(&ua).Error; err != nil {
		return nil, err
	}
	return &ua, nil
}

func (u *UserAssessmentPostgreSQL) GetCompletedOrReviewAssessmentIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := u.db.WithContext(ctx).
		Model(&models.UserAssessment{}).
		Where("user_id = ? AND status IN ?", userID,
			[]models.UserAssessmentStatus{models.UserAssessmentCompleted, models.UserAssessmentOnReview}).
		Pluck("assessment_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to get submitted assessment ids: %w", err)
	}
	return ids, nil
}

func (u *UserAssessmentPostgreSQL) GetCompletedByUser(ctx context.Context, userID uint) ([]*models.UserAssessment, error) {
	var uas []*models.UserAssessment
	if err := u.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID,
			[]models.UserAssessmentStatus{models.UserAssessmentCompleted, models.UserAssessmentOnReview}).
		Find(&uas).Error; err != nil {
		return nil, fmt.Errorf("failed to get completed attempts: %w", err)
	}
	return uas, nil
}

func (u *UserAssessmentPostgreSQL) GetCompletedWithAnswers(ctx context.Context, userID, assessmentID uint) (*models.UserAssessment, error) {
	var ua models.UserAssessment
	if err := u.db.WithContext(ctx).
		Preload("Answers").
		Preload("Answers.McqOption").
		Preload("Answers.File").
		Where("user_id = ? AND assessment_id = ? AND status IN ?", userID, assessmentID,
			[]models.UserAssessmentStatus{models.UserAssessmentCompleted, models.UserAssessmentOnReview}).
		First(&ua).Error; err != nil {
		return nil, err
	}
	return &ua, nil
}

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (a *AnswerPostgreSQL) Create(ctx context.Context, answer *models.Answer) error {
	return a.db.WithContext(ctx).Create(answer).Error
}

func (a *AnswerPostgreSQL) Update(ctx context.Context, answer *models.Answer) error {
	return a.db.WithContext(ctx).Save(answer).Error
}
