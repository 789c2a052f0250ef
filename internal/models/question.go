package models

import (
	"time"
)

type QuestionType string

const (
	QuestionEssay QuestionType = "essay"
	QuestionMcq   QuestionType = "mcq"
	QuestionFile  QuestionType = "file"
)

type Question struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	AssessmentID uint         `json:"assessment_id" gorm:"not null;index"`
	Type         QuestionType `json:"type" gorm:"not null;index" validate:"required,oneof=essay mcq file"`
	Content      string       `json:"content" gorm:"type:text;not null" validate:"required"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	// Relations
	Assessment Assessment  `json:"assessment" gorm:"foreignKey:AssessmentID"`
	Options    []McqOption `json:"options" gorm:"foreignKey:QuestionID"`
}

type McqOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	QuestionID uint   `json:"question_id" gorm:"not null;index"`
	Label      string `json:"label" gorm:"not null;size:1"`
	Text       string `json:"text" gorm:"type:text;not null"`
	IsCorrect  bool   `json:"-" gorm:"not null;default:false"`

	// Relations
	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}

// HasOption reports whether the given option id belongs to this question.
func (q *Question) HasOption(optionID uint) bool {
	for _, opt := range q.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

func (Question) TableName() string {
	return "questions"
}

func (McqOption) TableName() string {
	return "mcq_options"
}
