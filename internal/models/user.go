package models

import (
	"time"
)

type UserRole string

const (
	RoleStudent  UserRole = "student"
	RoleLecturer UserRole = "lecturer"
)

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentDropped   EnrollmentStatus = "dropped"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

type User struct {
	ID           uint     `json:"id" gorm:"primaryKey"`
	Name         string   `json:"name" gorm:"not null;size:100" validate:"required,max=100"`
	Email        string   `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	PasswordHash string   `json:"-" gorm:"not null;size:255"`
	Role         UserRole `json:"role" gorm:"not null" validate:"required,oneof=student lecturer"`
}

// Student extends a User with academic identity. UserID doubles as the
// primary key, one student row per user.
type Student struct {
	UserID         uint   `json:"user_id" gorm:"primaryKey"`
	StudentNumber  string `json:"student_number" gorm:"uniqueIndex;not null;size:20"`
	EnrollmentYear int    `json:"enrollment_year" gorm:"not null"`
	ProgramStudyID uint   `json:"program_study_id" gorm:"not null;index"`

	// Relations
	User        User         `json:"user" gorm:"foreignKey:UserID"`
	Enrollments []StudentEnrollment `json:"-" gorm:"foreignKey:StudentID;references:UserID"`
}

// Lecturer extends a User the same way Student does.
type Lecturer struct {
	UserID         uint   `json:"user_id" gorm:"primaryKey"`
	LecturerNumber string `json:"lecturer_number" gorm:"uniqueIndex;not null;size:20"`
	ProgramStudyID uint   `json:"program_study_id" gorm:"not null;index"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
}

type StudentEnrollment struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	StudentID  uint              `json:"student_id" gorm:"not null;index"`
	ClassID    uint              `json:"class_id" gorm:"not null;index"`
	EnrolledAt time.Time         `json:"enrolled_at"`
	Status     *EnrollmentStatus `json:"status" gorm:"index"`

	// Relations
	Student Student `json:"-" gorm:"foreignKey:StudentID;references:UserID"`
	Class   Class   `json:"-" gorm:"foreignKey:ClassID"`
}

func (User) TableName() string {
	return "users"
}

func (Student) TableName() string {
	return "students"
}

func (Lecturer) TableName() string {
	return "lecturers"
}

func (StudentEnrollment) TableName() string {
	return "student_enrollments"
}
