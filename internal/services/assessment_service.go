package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/submisoon/assessment-service/internal/events"
	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
	"github.com/submisoon/assessment-service/internal/validator"
)

type assessmentService struct {
	repo      repositories.Repository
	files     FileService
	signer    URLSigner
	scorer    Scorer
	publisher events.EventPublisher
	clock     Clock
	validator *validator.Validator
	logger    *slog.Logger
}

func NewAssessmentService(
	repo repositories.Repository,
	files FileService,
	signer URLSigner,
	scorer Scorer,
	publisher events.EventPublisher,
	clock Clock,
	v *validator.Validator,
	logger *slog.Logger,
) AssessmentService {
	return &assessmentService{
		repo:      repo,
		files:     files,
		signer:    signer,
		scorer:    scorer,
		publisher: publisher,
		clock:     clock,
		validator: v,
		logger:    logger,
	}
}

// sessionState is the bookkeeping blob stored on the attempt row.
type sessionState struct {
	LastSavedAt *time.Time `json:"last_saved_at,omitempty"`
	SaveCount   int        `json:"save_count"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

func (s *assessmentService) SaveDraft(ctx context.Context, assessmentID, userID uint, answers []models.AnswerInput) (*models.SaveDraftResponse, error) {
	s.logger.Info("Saving assessment draft",
		"assessment_id", assessmentID,
		"user_id", userID,
		"answer_count", len(answers))

	if err := s.validateInputs(answers); err != nil {
		return nil, err
	}

	assessment, attempt, err := s.prepareAttempt(ctx, assessmentID, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByAssessmentWithOptions(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for assessment %d: %w", assessmentID, err)
	}

	now := s.clock.Now()
	var uploads []models.UploadedFileInfo

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, mergeErr := s.mergeAnswers(ctx, txRepo, attempt, assessment, questions, answers, userID, now, &uploads); mergeErr != nil {
			return mergeErr
		}

		return s.stampAttempt(ctx, txRepo, attempt, now, false)
	})
	if err != nil {
		return nil, err
	}

	return &models.SaveDraftResponse{
		AssessmentID:  assessmentID,
		Status:        string(attempt.Status),
		UpdatedAt:     now,
		SavedAnswers:  len(answers),
		UploadedFiles: uploads,
	}, nil
}

func (s *assessmentService) Submit(ctx context.Context, assessmentID, userID uint, answers []models.AnswerInput) (*models.SubmitAssessmentResponse, error) {
	s.logger.Info("Submitting assessment",
		"assessment_id", assessmentID,
		"user_id", userID,
		"answer_count", len(answers))

	if err := s.validateInputs(answers); err != nil {
		return nil, err
	}

	assessment, attempt, err := s.prepareAttempt(ctx, assessmentID, userID)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByAssessmentWithOptions(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for assessment %d: %w", assessmentID, err)
	}

	now := s.clock.Now()
	var uploads []models.UploadedFileInfo
	var answered int

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		answersByQuestion, mergeErr := s.mergeAnswers(ctx, txRepo, attempt, assessment, questions, answers, userID, now, &uploads)
		if mergeErr != nil {
			return mergeErr
		}

		if err := checkCompleteness(questions, answersByQuestion); err != nil {
			return err
		}
		answered = len(questions)

		attempt.Status = models.UserAssessmentCompleted
		attempt.Score = s.scorer.Score(questions, answersByQuestion)

		return s.stampAttempt(ctx, txRepo, attempt, now, true)
	})
	if err != nil {
		return nil, err
	}

	// Notification delivery is best effort; the submission already committed.
	event := &events.AssessmentSubmittedEvent{
		UserAssessmentID: attempt.ID,
		AssessmentID:     assessmentID,
		UserID:           userID,
		Score:            attempt.Score,
		SubmittedAt:      now,
	}
	if pubErr := s.publisher.PublishAssessmentSubmitted(ctx, event); pubErr != nil {
		s.logger.Warn("Failed to publish submission event",
			"assessment_id", assessmentID,
			"user_id", userID,
			"error", pubErr)
	}

	return &models.SubmitAssessmentResponse{
		AssessmentID:      assessmentID,
		Status:            string(attempt.Status),
		SubmittedAt:       now,
		TotalQuestions:    len(questions),
		AnsweredQuestions: answered,
		UploadedFiles:     uploads,
	}, nil
}

func (s *assessmentService) validateInputs(answers []models.AnswerInput) error {
	for i := range answers {
		if err := s.validator.ValidateStruct(&answers[i]); err != nil {
			return err
		}
	}
	return nil
}

// prepareAttempt runs the access checks shared by SaveDraft and Submit and
// returns the student's attempt, creating it on first contact. The fresh
// attempt is committed right away so that it survives a later rollback of
// the answer merge.
func (s *assessmentService) prepareAttempt(ctx context.Context, assessmentID, userID uint) (*models.Assessment, *models.UserAssessment, error) {
	assessment, err := s.repo.Assessment().GetByIDWithClass(ctx, assessmentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, nil, ErrAssessmentNotFound
		}
		return nil, nil, fmt.Errorf("failed to load assessment %d: %w", assessmentID, err)
	}

	if assessment.EndDate.Before(s.clock.Now()) {
		return nil, nil, &AssessmentExpiredError{AssessmentID: assessmentID, EndDate: assessment.EndDate}
	}

	enrolled, err := s.repo.Enrollment().IsEnrolledInClass(ctx, userID, assessment.ClassID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check enrollment for user %d: %w", userID, err)
	}
	if !enrolled {
		return nil, nil, NewPermissionError(userID, assessmentID, "access", "user is not enrolled in the assessment's class")
	}

	attempt, err := s.repo.UserAssessment().GetByUserAndAssessment(ctx, userID, assessmentID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			return nil, nil, fmt.Errorf("failed to load attempt for user %d: %w", userID, err)
		}
		attempt = &models.UserAssessment{
			UserID:       userID,
			AssessmentID: assessmentID,
			Status:       models.UserAssessmentDraft,
		}
		if err := s.repo.UserAssessment().Create(ctx, attempt); err != nil {
			return nil, nil, fmt.Errorf("failed to create attempt for user %d: %w", userID, err)
		}
		s.logger.Info("Created assessment attempt",
			"assessment_id", assessmentID,
			"user_id", userID,
			"user_assessment_id", attempt.ID)
	}

	if attempt.Submitted() {
		return nil, nil, &AlreadySubmittedError{
			AssessmentID: assessmentID,
			SubmittedAt:  attempt.LastTouchedAt(),
			Status:       string(attempt.Status),
		}
	}

	return assessment, attempt, nil
}

// mergeAnswers reconciles every incoming answer against the stored state
// and returns the resulting answer set keyed by question id.
func (s *assessmentService) mergeAnswers(
	ctx context.Context,
	txRepo repositories.Repository,
	attempt *models.UserAssessment,
	assessment *models.Assessment,
	questions []*models.Question,
	answers []models.AnswerInput,
	userID uint,
	now time.Time,
	uploads *[]models.UploadedFileInfo,
) (map[uint]*models.Answer, error) {
	questionsByID := make(map[uint]*models.Question, len(questions))
	for _, q := range questions {
		questionsByID[q.ID] = q
	}

	stored, err := txRepo.UserAssessment().GetWithAnswers(ctx, userID, assessment.ID)
	answersByQuestion := make(map[uint]*models.Answer)
	if err == nil {
		for i := range stored.Answers {
			a := stored.Answers[i]
			answersByQuestion[a.QuestionID] = &a
		}
	} else if !repositories.IsNotFound(err) {
		return nil, fmt.Errorf("failed to load stored answers: %w", err)
	}

	for i := range answers {
		in := &answers[i]
		question, ok := questionsByID[in.QuestionID]
		if !ok {
			return nil, ErrQuestionNotFound
		}

		merged, err := s.reconcileAnswer(ctx, txRepo, attempt, assessment, question, answersByQuestion[question.ID], in, userID, now, uploads)
		if err != nil {
			return nil, err
		}
		answersByQuestion[question.ID] = merged
	}

	return answersByQuestion, nil
}

// reconcileAnswer applies one incoming answer slot. A slot with content
// replaces the stored answer; a slot without content keeps the stored
// answer when one exists and fails otherwise.
func (s *assessmentService) reconcileAnswer(
	ctx context.Context,
	txRepo repositories.Repository,
	attempt *models.UserAssessment,
	assessment *models.Assessment,
	question *models.Question,
	existing *models.Answer,
	in *models.AnswerInput,
	userID uint,
	now time.Time,
	uploads *[]models.UploadedFileInfo,
) (*models.Answer, error) {
	if in.AnswerType != question.Type {
		return nil, &AnswerTypeMismatchError{
			QuestionID:   question.ID,
			ExpectedType: string(question.Type),
			ReceivedType: string(in.AnswerType),
		}
	}

	answer := existing
	if answer == nil {
		answer = &models.Answer{
			UserAssessmentID: attempt.ID,
			QuestionID:       question.ID,
		}
	}

	switch question.Type {
	case models.QuestionEssay:
		text := ""
		if in.Text != nil {
			text = strings.TrimSpace(*in.Text)
		}
		switch {
		case text != "":
			answer.AnswerText = &text
		case existing != nil && existing.AnswerText != nil && strings.TrimSpace(*existing.AnswerText) != "":
			return existing, nil
		default:
			return nil, &EmptyAnswerError{QuestionID: question.ID, AnswerType: string(question.Type)}
		}

	case models.QuestionMcq:
		switch {
		case in.OptionID != nil:
			if !question.HasOption(*in.OptionID) {
				valid := make([]uint, 0, len(question.Options))
				for _, opt := range question.Options {
					valid = append(valid, opt.ID)
				}
				return nil, &InvalidOptionError{
					QuestionID:     question.ID,
					SelectedOption: *in.OptionID,
					ValidOptionIDs: valid,
				}
			}
			answer.SelectedOptionID = in.OptionID
			answer.McqOption = nil
		case existing != nil && existing.SelectedOptionID != nil:
			return existing, nil
		default:
			return nil, &MissingAnswerDataError{
				QuestionID:   question.ID,
				AnswerType:   string(question.Type),
				MissingField: "option_id",
			}
		}

	case models.QuestionFile:
		switch {
		case in.File != nil:
			if err := s.files.Validate(in.File, question.ID); err != nil {
				return nil, err
			}
			if existing != nil && existing.FileID != nil {
				if err := s.files.Delete(ctx, txRepo, *existing.FileID); err != nil {
					return nil, fmt.Errorf("failed to replace file for question %d: %w", question.ID, err)
				}
			}
			stored, err := s.files.Save(ctx, txRepo, in.File, userID, assessment.ID)
			if err != nil {
				return nil, err
			}
			answer.FileID = &stored.ID
			answer.File = nil

			downloadURL, previewURL := s.fileURLs(stored.ID, userID)
			*uploads = append(*uploads, models.UploadedFileInfo{
				QuestionID:  question.ID,
				FileID:      stored.ID,
				Filename:    stored.OriginalName,
				Size:        stored.Size,
				DownloadURL: downloadURL,
				PreviewURL:  previewURL,
			})
		case existing != nil && existing.FileID != nil:
			return existing, nil
		default:
			return nil, &MissingAnswerDataError{
				QuestionID:   question.ID,
				AnswerType:   string(question.Type),
				MissingField: "file",
			}
		}
	}

	answer.UpdatedAt = &now
	if existing == nil {
		if err := txRepo.Answer().Create(ctx, answer); err != nil {
			return nil, fmt.Errorf("failed to save answer for question %d: %w", question.ID, err)
		}
	} else {
		if err := txRepo.Answer().Update(ctx, answer); err != nil {
			return nil, fmt.Errorf("failed to update answer for question %d: %w", question.ID, err)
		}
	}

	return answer, nil
}

// checkCompleteness requires every question to carry a substantive answer.
func checkCompleteness(questions []*models.Question, answersByQuestion map[uint]*models.Answer) error {
	var unanswered []uint
	for _, q := range questions {
		answer := answersByQuestion[q.ID]
		if answer == nil || !answer.HasContent(q.Type) {
			unanswered = append(unanswered, q.ID)
		}
	}
	if len(unanswered) > 0 {
		return &IncompleteAssessmentError{
			TotalQuestions:      len(questions),
			AnsweredQuestions:   len(questions) - len(unanswered),
			UnansweredQuestions: unanswered,
		}
	}
	return nil
}

// stampAttempt updates the attempt's touch timestamp and session blob.
func (s *assessmentService) stampAttempt(ctx context.Context, txRepo repositories.Repository, attempt *models.UserAssessment, now time.Time, submitted bool) error {
	var session sessionState
	if len(attempt.SessionData) > 0 {
		// Ignore a corrupt blob and start over rather than blocking the save.
		_ = json.Unmarshal(attempt.SessionData, &session)
	}
	session.LastSavedAt = &now
	session.SaveCount++
	if submitted {
		session.SubmittedAt = &now
	}

	blob, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session data: %w", err)
	}
	attempt.SessionData = blob
	attempt.UpdatedAt = &now

	if err := txRepo.UserAssessment().Update(ctx, attempt); err != nil {
		return fmt.Errorf("failed to update attempt %d: %w", attempt.ID, err)
	}
	return nil
}
