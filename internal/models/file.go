package models

import (
	"time"
)

// StoredFile is the metadata row for an uploaded answer file. The bytes
// live on disk under StoragePath; the row is what answers reference.
type StoredFile struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	UserID       uint   `json:"user_id" gorm:"not null;index"`
	AssessmentID uint   `json:"assessment_id" gorm:"not null;index"`
	OriginalName string `json:"original_name" gorm:"not null;size:255"`
	StoredName   string `json:"stored_name" gorm:"not null;size:255"`
	StoragePath  string `json:"-" gorm:"not null;size:500"`
	Extension    string `json:"extension" gorm:"not null;size:10"`
	Size         int64  `json:"size" gorm:"not null"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`

	// Relations
	User       User       `json:"-" gorm:"foreignKey:UserID"`
	Assessment Assessment `json:"-" gorm:"foreignKey:AssessmentID"`
}

func (StoredFile) TableName() string {
	return "stored_files"
}
