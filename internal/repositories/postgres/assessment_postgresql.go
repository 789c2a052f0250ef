package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/submisoon/assessment-service/internal/cache"
	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

type AssessmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewAssessmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.AssessmentRepository {
	return &AssessmentPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (a *AssessmentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Assessment, error) {
	cacheKey := fmt.Sprintf("id:%d", id)
	var assessment models.Assessment

	err := a.cacheManager.Assessment.CacheOrExecute(ctx, cacheKey, &assessment, cache.AssessmentCacheConfig.TTL, func() (interface{}, error) {
		var dbAssessment models.Assessment
		if err := a.db.WithContext(ctx).First(&dbAssessment, id).Error; err != nil {
			return nil, err
		}
		return &dbAssessment, nil
	})

	if err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) GetByIDWithClass(ctx context.Context, id uint) (*models.Assessment, error) {
	var assessment models.Assessment
	if err := a.db.WithContext(ctx).
		Preload("Class").
		Preload("Class.Course").
		Preload("Class.Lecturer.User").
		Preload("Class.AcademicTerm").
		First(&assessment, id).Error; err != nil {
		return nil, err
	}
	return &assessment, nil
}

func (a *AssessmentPostgreSQL) GetIncompleteByClassIDs(ctx context.Context, classIDs []uint, excludeIDs []uint, endAfter time.Time, termID *uint) ([]*models.Assessment, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}

	query := a.db.WithContext(ctx).
		Preload("Class").
		Preload("Class.Course").
		Preload("Class.Lecturer.User").
		Preload("Class.AcademicTerm").
		Where("class_id IN ?", classIDs).
		Where("end_date >= ?", endAfter)

	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if termID != nil {
		query = query.Joins("JOIN classes ON classes.id = assessments.class_id").
			Where("classes.academic_term_id = ?", *termID)
	}

	var assessments []*models.Assessment
	if err := query.Order("end_date ASC").Find(&assessments).Error; err != nil {
		return nil, fmt.Errorf("failed to list incomplete assessments: %w", err)
	}
	return assessments, nil
}

func (a *AssessmentPostgreSQL) GetCompletedWithDetails(ctx context.Context, classIDs []uint, includeIDs []uint, termID *uint) ([]*models.Assessment, error) {
	if len(classIDs) == 0 || len(includeIDs) == 0 {
		return nil, nil
	}

	query := a.db.WithContext(ctx).
		Preload("Class").
		Preload("Class.Course").
		Preload("Class.Lecturer.User").
		Preload("Class.AcademicTerm").
		Where("class_id IN ?", classIDs).
		Where("id IN ?", includeIDs)

	if termID != nil {
		query = query.Joins("JOIN classes ON classes.id = assessments.class_id").
			Where("classes.academic_term_id = ?", *termID)
	}

	var assessments []*models.Assessment
	if err := query.Order("end_date DESC").Find(&assessments).Error; err != nil {
		return nil, fmt.Errorf("failed to list completed assessments: %w", err)
	}
	return assessments, nil
}
