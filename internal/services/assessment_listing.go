package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/submisoon/assessment-service/internal/models"
	"github.com/submisoon/assessment-service/internal/repositories"
)

const (
	defaultPage = 1
	defaultSize = 10
)

func (s *assessmentService) GetIncompleteAssessments(ctx context.Context, userID uint, page, size int, academicTermID *uint) ([]*models.IncompleteAssessmentItem, *models.Paging, error) {
	classIDs, err := s.repo.Enrollment().GetActiveClassIDs(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load enrollments for user %d: %w", userID, err)
	}
	if len(classIDs) == 0 {
		items := []*models.IncompleteAssessmentItem{}
		return items, pagingFor(0, page, size), nil
	}

	submittedIDs, err := s.repo.UserAssessment().GetCompletedOrReviewAssessmentIDs(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load submitted assessments for user %d: %w", userID, err)
	}

	assessments, err := s.repo.Assessment().GetIncompleteByClassIDs(ctx, classIDs, submittedIDs, s.clock.Now(), academicTermID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load incomplete assessments: %w", err)
	}

	items := make([]*models.IncompleteAssessmentItem, 0, len(assessments))
	for _, a := range assessments {
		items = append(items, &models.IncompleteAssessmentItem{
			ID:           a.ID,
			Name:         a.Title,
			Class:        a.Class.ClassCode,
			LecturerName: a.Class.Lecturer.User.Name,
			StartDate:    a.StartDate,
			EndDate:      a.EndDate,
		})
	}

	paged, paging := paginate(items, page, size)
	return paged, paging, nil
}

func (s *assessmentService) GetCompletedAssessments(ctx context.Context, userID uint, page, size int, academicTermID *uint) ([]*models.CompletedAssessmentItem, *models.Paging, error) {
	classIDs, err := s.repo.Enrollment().GetActiveClassIDs(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load enrollments for user %d: %w", userID, err)
	}

	attempts, err := s.repo.UserAssessment().GetCompletedByUser(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load attempts for user %d: %w", userID, err)
	}
	if len(classIDs) == 0 || len(attempts) == 0 {
		items := []*models.CompletedAssessmentItem{}
		return items, pagingFor(0, page, size), nil
	}

	attemptsByAssessment := make(map[uint]*models.UserAssessment, len(attempts))
	submittedIDs := make([]uint, 0, len(attempts))
	for _, ua := range attempts {
		attemptsByAssessment[ua.AssessmentID] = ua
		submittedIDs = append(submittedIDs, ua.AssessmentID)
	}

	assessments, err := s.repo.Assessment().GetCompletedWithDetails(ctx, classIDs, submittedIDs, academicTermID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load completed assessments: %w", err)
	}

	items := make([]*models.CompletedAssessmentItem, 0, len(assessments))
	for _, a := range assessments {
		attempt := attemptsByAssessment[a.ID]
		if attempt == nil {
			continue
		}
		submittedAt := attempt.LastTouchedAt()
		items = append(items, &models.CompletedAssessmentItem{
			ID:           a.ID,
			Name:         a.Title,
			Class:        a.Class.ClassCode,
			LecturerName: a.Class.Lecturer.User.Name,
			StartDate:    a.StartDate,
			EndDate:      a.EndDate,
			Status:       string(attempt.Status),
			Score:        attempt.Score,
			SubmittedAt:  &submittedAt,
		})
	}

	paged, paging := paginate(items, page, size)
	return paged, paging, nil
}

func (s *assessmentService) GetIncompleteAssessmentDetail(ctx context.Context, assessmentID, userID uint) (*models.AssessmentDetail, error) {
	assessment, err := s.repo.Assessment().GetByIDWithClass(ctx, assessmentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load assessment %d: %w", assessmentID, err)
	}

	if assessment.EndDate.Before(s.clock.Now()) {
		return nil, &AssessmentExpiredError{AssessmentID: assessmentID, EndDate: assessment.EndDate}
	}

	enrolled, err := s.repo.Enrollment().IsEnrolledInClass(ctx, userID, assessment.ClassID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment for user %d: %w", userID, err)
	}
	if !enrolled {
		return nil, NewPermissionError(userID, assessmentID, "view", "user is not enrolled in the assessment's class")
	}

	questions, err := s.repo.Question().GetByAssessmentWithOptions(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for assessment %d: %w", assessmentID, err)
	}

	// The student may never have touched the assessment; draft answers are
	// included when they exist.
	attempt, err := s.repo.UserAssessment().GetWithAnswers(ctx, userID, assessmentID)
	if err != nil {
		if !repositories.IsNotFound(err) {
			return nil, fmt.Errorf("failed to load attempt for user %d: %w", userID, err)
		}
		attempt = nil
	}

	return s.buildDetail(assessment, questions, attempt, userID), nil
}

func (s *assessmentService) GetCompletedAssessmentDetail(ctx context.Context, assessmentID, userID uint) (*models.AssessmentDetail, error) {
	assessment, err := s.repo.Assessment().GetByIDWithClass(ctx, assessmentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load assessment %d: %w", assessmentID, err)
	}

	enrolled, err := s.repo.Enrollment().IsEnrolledInClass(ctx, userID, assessment.ClassID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment for user %d: %w", userID, err)
	}
	if !enrolled {
		return nil, NewPermissionError(userID, assessmentID, "view", "user is not enrolled in the assessment's class")
	}

	attempt, err := s.repo.UserAssessment().GetCompletedWithAnswers(ctx, userID, assessmentID)
	if err != nil {
		if repositories.IsNotFound(err) {
			// No submission means there is nothing to show on this page.
			return nil, ErrAssessmentNotFound
		}
		return nil, fmt.Errorf("failed to load attempt for user %d: %w", userID, err)
	}

	questions, err := s.repo.Question().GetByAssessmentWithOptions(ctx, assessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for assessment %d: %w", assessmentID, err)
	}

	return s.buildDetail(assessment, questions, attempt, userID), nil
}

func (s *assessmentService) buildDetail(assessment *models.Assessment, questions []*models.Question, attempt *models.UserAssessment, userID uint) *models.AssessmentDetail {
	info := models.AssessmentInfo{
		ID:    assessment.ID,
		Title: assessment.Title,
	}

	answersByQuestion := make(map[uint]*models.Answer)
	if attempt != nil {
		status := string(attempt.Status)
		info.Status = &status
		info.Score = attempt.Score
		info.UpdatedAt = attempt.UpdatedAt
		for i := range attempt.Answers {
			a := &attempt.Answers[i]
			answersByQuestion[a.QuestionID] = a
		}
	}

	views := make([]models.QuestionView, 0, len(questions))
	for _, q := range questions {
		view := models.QuestionView{
			ID:         q.ID,
			Question:   q.Content,
			AnswerType: string(q.Type),
		}

		if q.Type == models.QuestionMcq {
			for _, opt := range q.Options {
				view.Options = append(view.Options, models.McqOptionView{
					OptionID: opt.ID,
					Label:    opt.Label,
					Text:     opt.Text,
				})
			}
		}

		if answer := answersByQuestion[q.ID]; answer != nil {
			view.Answer = s.buildAnswerView(q, answer, userID)
		}

		views = append(views, view)
	}

	return &models.AssessmentDetail{Assessment: info, Questions: views}
}

func (s *assessmentService) buildAnswerView(question *models.Question, answer *models.Answer, userID uint) *models.AnswerView {
	view := &models.AnswerView{}

	switch question.Type {
	case models.QuestionEssay:
		view.Text = answer.AnswerText

	case models.QuestionMcq:
		if answer.SelectedOptionID == nil {
			return nil
		}
		selection := &models.McqSelection{OptionID: *answer.SelectedOptionID}
		if answer.McqOption != nil {
			selection.Label = answer.McqOption.Label
		} else {
			for _, opt := range question.Options {
				if opt.ID == *answer.SelectedOptionID {
					selection.Label = opt.Label
					break
				}
			}
		}
		view.Mcq = selection

	case models.QuestionFile:
		if answer.FileID == nil || answer.File == nil {
			return nil
		}
		downloadURL, previewURL := s.fileURLs(*answer.FileID, userID)
		view.File = &models.FileView{
			FileID:      answer.File.ID,
			Filename:    answer.File.OriginalName,
			Extension:   answer.File.Extension,
			Size:        answer.File.Size,
			DownloadURL: downloadURL,
			PreviewURL:  previewURL,
		}
	}

	return view
}

// fileURLs builds the short-lived signed links for a stored file.
func (s *assessmentService) fileURLs(fileID, userID uint) (string, string) {
	token, expires := s.signer.Sign(fileID, userID)

	query := url.Values{}
	query.Set("token", token)
	query.Set("userId", fmt.Sprintf("%d", userID))
	query.Set("expires", fmt.Sprintf("%d", expires))
	preview := fmt.Sprintf("/api/files/%d?%s", fileID, query.Encode())

	query.Set("download", "true")
	download := fmt.Sprintf("/api/files/%d?%s", fileID, query.Encode())

	return download, preview
}

// paginate slices a fully loaded result set down to one page.
func paginate[T any](items []T, page, size int) ([]T, *models.Paging) {
	if page < 1 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultSize
	}

	total := len(items)
	start := (page - 1) * size
	if start >= total {
		return []T{}, pagingFor(total, page, size)
	}
	end := start + size
	if end > total {
		end = total
	}
	return items[start:end], pagingFor(total, page, size)
}

func pagingFor(total, page, size int) *models.Paging {
	if page < 1 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultSize
	}
	totalPage := 0
	if total > 0 {
		totalPage = (total + size - 1) / size
	}
	return &models.Paging{
		Page:      page,
		Size:      size,
		TotalItem: total,
		TotalPage: totalPage,
	}
}
