package models

import (
	"mime/multipart"
	"time"
)

// ===== AUTH =====

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

type LoginResponse struct {
	User        UserInfo `json:"user"`
	ExpiresAt   string   `json:"expires_at"`
	AccessToken string   `json:"access_token"`
}

type UserInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// ===== ASSESSMENT SUBMISSION =====

// AnswerInput is one answer slot from the multipart form. Text, OptionID
// and File are mutually exclusive; which one must be set follows from
// AnswerType.
type AnswerInput struct {
	QuestionID uint                  `json:"question_id" validate:"required,min=1"`
	AnswerType QuestionType          `json:"answer_type" validate:"required,oneof=essay mcq file"`
	Text       *string               `json:"text"`
	OptionID   *uint                 `json:"option_id"`
	File       *multipart.FileHeader `json:"-"`
}

type SaveDraftResponse struct {
	AssessmentID  uint               `json:"assessment_id"`
	Status        string             `json:"status"`
	UpdatedAt     time.Time          `json:"updated_at"`
	SavedAnswers  int                `json:"saved_answers"`
	UploadedFiles []UploadedFileInfo `json:"uploaded_files"`
}

type SubmitAssessmentResponse struct {
	AssessmentID      uint               `json:"assessment_id"`
	Status            string             `json:"status"`
	SubmittedAt       time.Time          `json:"submitted_at"`
	TotalQuestions    int                `json:"total_questions"`
	AnsweredQuestions int                `json:"answered_questions"`
	UploadedFiles     []UploadedFileInfo `json:"uploaded_files"`
}

type UploadedFileInfo struct {
	QuestionID  uint   `json:"question_id"`
	FileID      uint   `json:"file_id"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
	PreviewURL  string `json:"preview_url"`
}

// ===== ASSESSMENT LISTING =====

type IncompleteAssessmentItem struct {
	ID           uint      `json:"id"`
	Name         string    `json:"name"`
	Class        string    `json:"class"`
	LecturerName string    `json:"lecturer_name"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}

type CompletedAssessmentItem struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	Class        string     `json:"class"`
	LecturerName string     `json:"lecturer_name"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      time.Time  `json:"end_date"`
	Status       string     `json:"status"`
	Score        *int       `json:"score"`
	SubmittedAt  *time.Time `json:"submitted_at"`
}

type AssessmentDetail struct {
	Assessment AssessmentInfo `json:"assessment"`
	Questions  []QuestionView `json:"questions"`
}

type AssessmentInfo struct {
	ID        uint       `json:"id"`
	Title     string     `json:"title"`
	Status    *string    `json:"status"`
	Score     *int       `json:"score"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type QuestionView struct {
	ID         uint            `json:"id"`
	Question   string          `json:"question"`
	AnswerType string          `json:"answer_type"`
	Answer     *AnswerView     `json:"answer,omitempty"`
	Options    []McqOptionView `json:"options,omitempty"`
}

type AnswerView struct {
	Text *string       `json:"text,omitempty"`
	Mcq  *McqSelection `json:"mcq,omitempty"`
	File *FileView     `json:"file,omitempty"`
}

type McqSelection struct {
	OptionID uint   `json:"option_id"`
	Label    string `json:"label"`
}

type McqOptionView struct {
	OptionID uint   `json:"option_id"`
	Label    string `json:"label"`
	Text     string `json:"text"`
}

type FileView struct {
	FileID      uint   `json:"file_id"`
	Filename    string `json:"filename"`
	Extension   string `json:"extension"`
	Size        int64  `json:"size"`
	DownloadURL string `json:"download_url"`
	PreviewURL  string `json:"preview_url"`
}

// ===== LEADERBOARD =====

type LeaderboardEntry struct {
	Name                      string `json:"name"`
	TotalAssessmentsDone      int    `json:"total_assessments_done"`
	TotalAssessmentsRemaining int    `json:"total_assessments_remaining"`
}

type Paging struct {
	Page      int `json:"page"`
	Size      int `json:"size"`
	TotalItem int `json:"total_item"`
	TotalPage int `json:"total_page"`
}
