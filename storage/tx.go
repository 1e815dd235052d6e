package storage

import (
	"context"

	"github.com/example/task-tracker/domain/apperror"
	"gorm.io/gorm"
)

// Transaction runs fn inside a database transaction bound to ctx. fn's error
// rolls back and is returned unchanged; a failed begin or commit is reported
// as transient.
func Transaction(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var fnErr error
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fnErr = fn(tx)
		return fnErr
	})
	if err != nil && fnErr == nil {
		return apperror.Transient("commit transaction", err)
	}
	return err
}
