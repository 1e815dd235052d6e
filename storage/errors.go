package storage

import (
	"errors"

	"gorm.io/gorm"
)

// IsDuplicate reports a unique-constraint violation. It relies on
// gorm.Config.TranslateError, which Open enables.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// IsNotFound reports a missing row from First/Take/Last.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
