package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/example/task-tracker/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(config.Database{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "tx.db") + "?_busy_timeout=5000&_txlock=immediate",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	require.NoError(t, Migrate(db, &widget{}))
	return db
}

func TestTransaction_Commit(t *testing.T) {
	db := openTestDB(t)

	err := Transaction(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Create(&widget{Name: "kept"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestTransaction_RollbackReturnsCallbackError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")

	err := Transaction(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&widget{Name: "discarded"}).Error; err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&widget{}).Count(&count).Error)
	assert.Zero(t, count)
}
