package repositories

import (
	"context"
	"time"

	"github.com/submisoon/assessment-service/internal/models"
)

// AssessmentRepository covers read access to assessments and the listing
// queries behind the student-facing assessment pages.
type AssessmentRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Assessment, error)
	GetByIDWithClass(ctx context.Context, id uint) (*models.Assessment, error)

	// GetIncompleteByClassIDs returns assessments in the given classes that
	// the student has not submitted yet and whose deadline has not passed.
	// Preloads Class, Class.Lecturer.User and Class.AcademicTerm.
	GetIncompleteByClassIDs(ctx context.Context, classIDs []uint, excludeIDs []uint, endAfter time.Time, termID *uint) ([]*models.Assessment, error)

	// GetCompletedWithDetails returns assessments from includeIDs that sit
	// in the given classes, with the same preloads as above.
	GetCompletedWithDetails(ctx context.Context, classIDs []uint, includeIDs []uint, termID *uint) ([]*models.Assessment, error)
}

type QuestionRepository interface {
	GetByID(ctx context.Context, id uint) (*models.Question, error)

	// GetByAssessmentWithOptions returns all questions of an assessment
	// with their MCQ options preloaded, ordered by id.
	GetByAssessmentWithOptions(ctx context.Context, assessmentID uint) ([]*models.Question, error)
}

type UserAssessmentRepository interface {
	Create(ctx context.Context, ua *models.UserAssessment) error
	Update(ctx context.Context, ua *models.UserAssessment) error

	GetByUserAndAssessment(ctx context.Context, userID, assessmentID uint) (*models.UserAssessment, error)
	GetWithAnswers(ctx context.Context, userID, assessmentID uint) (*models.UserAssessment, error)

	// GetCompletedOrReviewAssessmentIDs lists the assessment ids the user
	// already submitted, in either terminal status.
	GetCompletedOrReviewAssessmentIDs(ctx context.Context, userID uint) ([]uint, error)
	GetCompletedByUser(ctx context.Context, userID uint) ([]*models.UserAssessment, error)
	GetCompletedWithAnswers(ctx context.Context, userID, assessmentID uint) (*models.UserAssessment, error)
}

type AnswerRepository interface {
	Create(ctx context.Context, answer *models.Answer) error
	Update(ctx context.Context, answer *models.Answer) error
}

type EnrollmentRepository interface {
	// GetActiveClassIDs returns the ids of classes the student is actively
	// enrolled in.
	GetActiveClassIDs(ctx context.Context, studentID uint) ([]uint, error)
	IsEnrolledInClass(ctx context.Context, studentID, classID uint) (bool, error)
}

type StudentRepository interface {
	// GetLeaderboard aggregates, per student, how many assessments they
	// completed and how many are still open in their active classes.
	GetLeaderboard(ctx context.Context) ([]*models.LeaderboardEntry, error)
}

type FileRepository interface {
	Create(ctx context.Context, file *models.StoredFile) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.StoredFile, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.StoredFile, error)
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
}
