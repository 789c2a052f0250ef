package services

import (
	"context"
	"io"

	"github.com/submisoon/assessment-service/internal/models"
)

// AssessmentService covers the student-facing attempt lifecycle: saving
// drafts, submitting, and listing or inspecting assessments.
type AssessmentService interface {
	// SaveDraft merges the supplied answers into the student's attempt for
	// the assessment, creating the attempt on first contact. Answers not
	// mentioned in the request keep their previous content.
	SaveDraft(ctx context.Context, assessmentID, userID uint, answers []models.AnswerInput) (*models.SaveDraftResponse, error)

	// Submit runs the same merge as SaveDraft, then requires every question
	// to carry a substantive answer before marking the attempt completed and
	// scoring it. A failed completeness check leaves the attempt untouched.
	Submit(ctx context.Context, assessmentID, userID uint, answers []models.AnswerInput) (*models.SubmitAssessmentResponse, error)

	// GetIncompleteAssessments lists assessments in the student's active
	// classes that have not been submitted and have not passed their end
	// date, ordered by nearest deadline first.
	GetIncompleteAssessments(ctx context.Context, userID uint, page, size int, academicTermID *uint) ([]*models.IncompleteAssessmentItem, *models.Paging, error)

	// GetIncompleteAssessmentDetail returns the questions of an open
	// assessment together with the student's draft answers, if any.
	GetIncompleteAssessmentDetail(ctx context.Context, assessmentID, userID uint) (*models.AssessmentDetail, error)

	// GetCompletedAssessments lists submitted assessments in the student's
	// enrolled classes, most recent deadline first.
	GetCompletedAssessments(ctx context.Context, userID uint, page, size int, academicTermID *uint) ([]*models.CompletedAssessmentItem, *models.Paging, error)

	// GetCompletedAssessmentDetail returns the questions and the student's
	// submitted answers for a completed assessment.
	GetCompletedAssessmentDetail(ctx context.Context, assessmentID, userID uint) (*models.AssessmentDetail, error)
}

// LeaderboardService ranks students by completed assessments.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, page, size int, sortBy, order string) ([]*models.LeaderboardEntry, *models.Paging, error)
	// ExportLeaderboard renders the full leaderboard as an xlsx workbook.
	ExportLeaderboard(ctx context.Context) ([]byte, string, error)
}

// AuthService authenticates users and issues access tokens.
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	// VerifyToken parses and validates an access token, returning the
	// authenticated user's ID and role.
	VerifyToken(tokenString string) (uint, string, error)
}

// FileAccessService resolves stored files for serving, enforcing the
// signed-URL scheme embedded in download and preview links.
type FileAccessService interface {
	// ResolveSigned returns the file when the token is valid for the given
	// file, user and expiry. Expired or forged tokens yield ErrSignatureInvalid.
	ResolveSigned(ctx context.Context, fileID, userID uint, expires int64, token string) (*models.StoredFile, error)
	// Open returns a reader over the file's bytes on disk.
	Open(file *models.StoredFile) (io.ReadSeekCloser, error)
}
