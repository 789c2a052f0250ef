package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by Get* methods when no row matches. It wraps
// gorm's sentinel so both checks work.
var ErrNotFound = gorm.ErrRecordNotFound

// IsNotFound reports whether err means "no such row".
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
