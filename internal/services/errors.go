package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/opencourse/opencourse-backend/internal/platform/apierr"
)

// notFoundOr maps a missing-record store error onto the API taxonomy and
// passes everything else through untouched.
func notFoundOr(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierr.NotFound(format, args...)
	}
	return err
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
