package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"farmrecords/models"
	"farmrecords/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := openDB(config.DBConfig{Driver: config.DriverSQLite, DSN: filepath.Join(t.TempDir(), "farm.db")}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestRegisterAccount(t *testing.T) {
	db := newTestDB(t)

	acc, err := registerAccount(db, "farmer1", "password123")
	require.NoError(t, err)
	assert.NotZero(t, acc.ID)
	assert.NotEqual(t, "password123", acc.Password)

	_, err = registerAccount(db, "farmer1", "another-pass")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	var n int64
	require.NoError(t, db.Model(&models.Account{}).Where("username = ?", "farmer1").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestUniqueIndexBacksUsernameCheck(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Create(&models.Account{Username: "farmer1", Password: "x"}).Error)
	err := db.Create(&models.Account{Username: "farmer1", Password: "y"}).Error
	require.Error(t, err)
	assert.True(t, isUniqueConstraintError(err))
}

func TestAuthenticate(t *testing.T) {
	db := newTestDB(t)
	_, err := registerAccount(db, "farmer1", "password123")
	require.NoError(t, err)

	acc, err := authenticate(db, "farmer1", "password123")
	require.NoError(t, err)
	assert.Equal(t, "farmer1", acc.Username)

	_, err = authenticate(db, "farmer1", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = authenticate(db, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResetPassword(t *testing.T) {
	db := newTestDB(t)
	_, err := registerAccount(db, "farmer1", "password123")
	require.NoError(t, err)

	require.NoError(t, resetPassword(db, "farmer1", "newpassword1"))
	_, err = authenticate(db, "farmer1", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = authenticate(db, "farmer1", "newpassword1")
	assert.NoError(t, err)

	assert.ErrorIs(t, resetPassword(db, "nobody", "newpassword1"), ErrAccountNotFound)
}

var harvestDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestHarvestRequiresProfile(t *testing.T) {
	db := newTestDB(t)
	err := recordHarvest(db, models.ProduceCoffee, 999, harvestDay, 1)
	assert.Error(t, err, "foreign key must reject a harvest without a profile")
	assert.Error(t, recordHarvest(db, models.ProduceType("tea"), 1, harvestDay, 1))
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, isUniqueConstraintError(nil))
	assert.True(t, isUniqueConstraintError(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueConstraintError(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey)))
	assert.True(t, isUniqueConstraintError(errors.New("UNIQUE constraint failed: accounts.username")))
	assert.True(t, isUniqueConstraintError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_accounts_username"`)))
	assert.False(t, isUniqueConstraintError(errors.New("connection refused")))
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "farm.db?_pragma=foreign_keys(1)", sqliteDSN("farm.db"))
	assert.Equal(t, "farm.db?cache=shared&_pragma=foreign_keys(1)", sqliteDSN("farm.db?cache=shared"))
	assert.Equal(t, "farm.db?_pragma=foreign_keys(0)", sqliteDSN("farm.db?_pragma=foreign_keys(0)"))
}

func TestOpenDBUnknownDriver(t *testing.T) {
	_, err := openDB(config.DBConfig{Driver: "mysql", DSN: "x"}, zap.NewNop())
	assert.Error(t, err)
}
