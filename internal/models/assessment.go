package models

import (
	"time"
)

type SemesterType string

const (
	SemesterOdd  SemesterType = "odd"
	SemesterEven SemesterType = "even"
)

type Assessment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ClassID   uint      `json:"class_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	StartDate time.Time `json:"start_date" gorm:"not null"`
	EndDate   time.Time `json:"end_date" gorm:"not null;index"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	// Relations
	Class     Class      `json:"class" gorm:"foreignKey:ClassID"`
	Questions []Question `json:"questions" gorm:"foreignKey:AssessmentID"`
}

type Class struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	ClassCode      string `json:"class_code" gorm:"not null;size:50;index"`
	CourseID       uint   `json:"course_id" gorm:"not null;index"`
	LecturerID     uint   `json:"lecturer_id" gorm:"not null;index"`
	AcademicTermID uint   `json:"academic_term_id" gorm:"not null;index"`

	// Relations
	Course       Course       `json:"course" gorm:"foreignKey:CourseID"`
	Lecturer     Lecturer     `json:"lecturer" gorm:"foreignKey:LecturerID;references:UserID"`
	AcademicTerm AcademicTerm `json:"academic_term" gorm:"foreignKey:AcademicTermID"`
}

type Course struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	CourseCode string `json:"course_code" gorm:"not null;size:50"`
	Name       string `json:"name" gorm:"not null;size:200"`
	Credits    int    `json:"credits" gorm:"default:0"`
}

type AcademicTerm struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	Year      int          `json:"year" gorm:"not null"`
	Semester  SemesterType `json:"semester" gorm:"not null" validate:"omitempty,oneof=odd even"`
	StartDate *time.Time   `json:"start_date"`
	EndDate   *time.Time   `json:"end_date"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (Class) TableName() string {
	return "classes"
}

func (Course) TableName() string {
	return "courses"
}

func (AcademicTerm) TableName() string {
	return "academic_terms"
}
