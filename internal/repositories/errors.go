package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDuplicateRestriction is returned by RestrictionRepository.Create when an
// identical (teacher, student, course) restriction already exists.
var ErrDuplicateRestriction = errors.New("restriction already exists for this teacher, student and course")

// IsNotFoundError reports whether err means the requested row does not exist.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
