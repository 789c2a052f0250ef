package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserAssessmentStatus string

const (
	UserAssessmentDraft     UserAssessmentStatus = "draft"
	UserAssessmentOnReview  UserAssessmentStatus = "on_review"
	UserAssessmentCompleted UserAssessmentStatus = "completed"
)

// UserAssessment is one student's attempt at an assessment. A student gets
// exactly one row per assessment, created lazily on first draft save.
type UserAssessment struct {
	ID           uint                 `json:"id" gorm:"primaryKey"`
	UserID       uint                 `json:"user_id" gorm:"not null;index;uniqueIndex:idx_user_assessment"`
	AssessmentID uint                 `json:"assessment_id" gorm:"not null;index;uniqueIndex:idx_user_assessment"`
	Status       UserAssessmentStatus `json:"status" gorm:"not null;default:draft;index"`
	Score        *int                 `json:"score"`

	// Metadata
	SessionData datatypes.JSON `json:"session_data" gorm:"type:jsonb"` // save bookkeeping, see sessionState

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	// Relations
	User       User       `json:"user" gorm:"foreignKey:UserID"`
	Assessment Assessment `json:"assessment" gorm:"foreignKey:AssessmentID"`
	Answers    []Answer   `json:"answers" gorm:"foreignKey:UserAssessmentID"`
}

// Submitted reports whether the attempt has passed the point of no return.
func (ua *UserAssessment) Submitted() bool {
	return ua.Status == UserAssessmentCompleted || ua.Status == UserAssessmentOnReview
}

// LastTouchedAt is the submission timestamp reported to clients, falling
// back to CreatedAt when the row was never updated.
func (ua *UserAssessment) LastTouchedAt() time.Time {
	if ua.UpdatedAt != nil {
		return *ua.UpdatedAt
	}
	return ua.CreatedAt
}

type Answer struct {
	ID               uint `json:"id" gorm:"primaryKey"`
	UserAssessmentID uint `json:"user_assessment_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`
	QuestionID       uint `json:"question_id" gorm:"not null;index;uniqueIndex:idx_attempt_question"`

	// Exactly one of these carries the payload, depending on question type.
	AnswerText       *string `json:"answer_text" gorm:"type:text"`
	SelectedOptionID *uint   `json:"selected_option_id"`
	FileID           *uint   `json:"file_id"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	// Relations
	UserAssessment UserAssessment `json:"-" gorm:"foreignKey:UserAssessmentID"`
	Question       Question       `json:"-" gorm:"foreignKey:QuestionID"`
	McqOption      *McqOption     `json:"mcq_option" gorm:"foreignKey:SelectedOptionID"`
	File           *StoredFile    `json:"file" gorm:"foreignKey:FileID"`
}

// HasContent reports whether the answer carries a usable payload for its
// question type. Drafts may hold rows that fail this check; submission
// never passes with one.
func (a *Answer) HasContent(questionType QuestionType) bool {
	switch questionType {
	case QuestionEssay:
		return a.AnswerText != nil && *a.AnswerText != ""
	case QuestionMcq:
		return a.SelectedOptionID != nil
	case QuestionFile:
		return a.FileID != nil
	}
	return false
}

func (UserAssessment) TableName() string {
	return "user_assessments"
}

func (Answer) TableName() string {
	return "answers"
}
