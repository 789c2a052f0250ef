package services

import (
	"errors"
	"fmt"
	"time"
)

// Machine-readable error codes, serialized verbatim in API error bodies.
const (
	CodeAssessmentNotFound   = "ASSESSMENT_NOT_FOUND"
	CodeQuestionNotFound     = "QUESTION_NOT_FOUND"
	CodeAccessDenied         = "ACCESS_DENIED"
	CodeAssessmentExpired    = "ASSESSMENT_EXPIRED"
	CodeAlreadySubmitted     = "ALREADY_SUBMITTED"
	CodeAnswerTypeMismatch   = "ANSWER_TYPE_MISMATCH"
	CodeEmptyAnswer          = "EMPTY_ANSWER"
	CodeMissingAnswerData    = "MISSING_ANSWER_DATA"
	CodeInvalidOption        = "INVALID_OPTION"
	CodeInvalidFileType      = "INVALID_FILE_TYPE"
	CodeFileTooLarge         = "FILE_TOO_LARGE"
	CodeIncompleteAssessment = "INCOMPLETE_ASSESSMENT"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeFileNotFound         = "FILE_NOT_FOUND"
	CodeInvalidSignature     = "INVALID_SIGNATURE"
	CodeValidationFailed     = "VALIDATION_ERROR"
)

// Sentinel errors for simple conditions.
var (
	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrFileNotFound       = errors.New("file not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSignatureInvalid   = errors.New("file link signature is invalid or expired")
	ErrInvalidSortField   = errors.New("sortBy must be one of: name, assessment")
)

// PermissionError is raised when a student acts on an assessment outside
// their active enrollments.
type PermissionError struct {
	UserID       uint
	AssessmentID uint
	Action       string
	Reason       string
}

func NewPermissionError(userID, assessmentID uint, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:       userID,
		AssessmentID: assessmentID,
		Action:       action,
		Reason:       reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %d cannot %s assessment %d: %s", e.UserID, e.Action, e.AssessmentID, e.Reason)
}

// AssessmentExpiredError is raised when the current time is past the
// assessment's end date.
type AssessmentExpiredError struct {
	AssessmentID uint
	EndDate      time.Time
}

func (e *AssessmentExpiredError) Error() string {
	return fmt.Sprintf("assessment %d deadline passed at %s", e.AssessmentID, e.EndDate.Format(time.RFC3339))
}

// AlreadySubmittedError is raised when an attempt is in a terminal state.
type AlreadySubmittedError struct {
	AssessmentID uint
	SubmittedAt  time.Time
	Status       string
}

func (e *AlreadySubmittedError) Error() string {
	return fmt.Sprintf("assessment %d already submitted at %s (status %s)", e.AssessmentID, e.SubmittedAt.Format(time.RFC3339), e.Status)
}

// AnswerTypeMismatchError is raised when the declared answer type differs
// from the question's type.
type AnswerTypeMismatchError struct {
	QuestionID   uint
	ExpectedType string
	ReceivedType string
}

func (e *AnswerTypeMismatchError) Error() string {
	return fmt.Sprintf("answer type for question %d does not match: expected %s, received %s", e.QuestionID, e.ExpectedType, e.ReceivedType)
}

// EmptyAnswerError is raised for a blank essay with no prior text.
type EmptyAnswerError struct {
	QuestionID uint
	AnswerType string
}

func (e *EmptyAnswerError) Error() string {
	return fmt.Sprintf("essay answer for question %d cannot be empty", e.QuestionID)
}

// MissingAnswerDataError is raised when a required payload field is absent
// and there is no prior value to fall back on.
type MissingAnswerDataError struct {
	QuestionID   uint
	AnswerType   string
	MissingField string
}

func (e *MissingAnswerDataError) Error() string {
	return fmt.Sprintf("%s is required for %s question %d", e.MissingField, e.AnswerType, e.QuestionID)
}

// InvalidOptionError is raised when a selected option does not belong to
// the question.
type InvalidOptionError struct {
	QuestionID     uint
	SelectedOption uint
	ValidOptionIDs []uint
}

func (e *InvalidOptionError) Error() string {
	return fmt.Sprintf("option %d does not belong to question %d", e.SelectedOption, e.QuestionID)
}

// InvalidFileTypeError is raised for an upload with a disallowed extension.
type InvalidFileTypeError struct {
	QuestionID        uint
	ReceivedExtension string
	AllowedExtensions []string
}

func (e *InvalidFileTypeError) Error() string {
	return fmt.Sprintf("file type %q is not allowed for question %d", e.ReceivedExtension, e.QuestionID)
}

// FileTooLargeError is raised for an upload over the size limit.
type FileTooLargeError struct {
	QuestionID uint
	FileSize   int64
	MaxSize    int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file for question %d is %d bytes, limit is %d", e.QuestionID, e.FileSize, e.MaxSize)
}

// IncompleteAssessmentError is raised on submit when any question lacks a
// valid answer.
type IncompleteAssessmentError struct {
	TotalQuestions      int
	AnsweredQuestions   int
	UnansweredQuestions []uint
}

func (e *IncompleteAssessmentError) Error() string {
	return fmt.Sprintf("all questions must be answered before submission: %d of %d answered", e.AnsweredQuestions, e.TotalQuestions)
}

// ErrorCode maps any service error to its machine-readable code, or ""
// for infrastructure faults that should surface as a generic failure.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrAssessmentNotFound):
		return CodeAssessmentNotFound
	case errors.Is(err, ErrQuestionNotFound):
		return CodeQuestionNotFound
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrFileNotFound):
		return CodeFileNotFound
	case errors.Is(err, ErrSignatureInvalid):
		return CodeInvalidSignature
	case errors.Is(err, ErrInvalidSortField):
		return CodeValidationFailed
	}

	var (
		permErr       *PermissionError
		expiredErr    *AssessmentExpiredError
		submittedErr  *AlreadySubmittedError
		typeErr       *AnswerTypeMismatchError
		emptyErr      *EmptyAnswerError
		missingErr    *MissingAnswerDataError
		optionErr     *InvalidOptionError
		fileTypeErr   *InvalidFileTypeError
		fileSizeErr   *FileTooLargeError
		incompleteErr *IncompleteAssessmentError
	)

	switch {
	case errors.As(err, &permErr):
		return CodeAccessDenied
	case errors.As(err, &expiredErr):
		return CodeAssessmentExpired
	case errors.As(err, &submittedErr):
		return CodeAlreadySubmitted
	case errors.As(err, &typeErr):
		return CodeAnswerTypeMismatch
	case errors.As(err, &emptyErr):
		return CodeEmptyAnswer
	case errors.As(err, &missingErr):
		return CodeMissingAnswerData
	case errors.As(err, &optionErr):
		return CodeInvalidOption
	case errors.As(err, &fileTypeErr):
		return CodeInvalidFileType
	case errors.As(err, &fileSizeErr):
		return CodeFileTooLarge
	case errors.As(err, &incompleteErr):
		return CodeIncompleteAssessment
	}

	return ""
}
