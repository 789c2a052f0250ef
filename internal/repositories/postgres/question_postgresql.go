package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/submisoon/assessment-service/internal/cache"
	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.db.WithContext(ctx).
		Preload("Options").
		First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) GetByAssessmentWithOptions(ctx context.Context, assessmentID uint) ([]*models.Question, error) {
	// Question sets are immutable once students can see them, safe to cache
	cacheKey := fmt.Sprintf("assessment:%d", assessmentID)
	var questions []*models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestions []*models.Question
		if err := q.db.WithContext(ctx).
			Preload("Options").
			Where("assessment_id = ?", assessmentID).
			Order("id ASC").
			Find(&dbQuestions).Error; err != nil {
			return nil, fmt.Errorf("failed to get questions for assessment: %w", err)
		}
		return dbQuestions, nil
	})

	if err != nil {
		return nil, err
	}
	return questions, nil
}
