package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"farmrecords/models"
	"farmrecords/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLIAccountLifecycle(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "cli.db")
	t.Setenv("FARM_DB_DSN", dsn)
	t.Setenv("FARM_LOG_LEVEL", "error")

	out, err := runCLI(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "All tables created")

	out, err = runCLI(t, "create-account", "farmer1", "password123")
	require.NoError(t, err)
	assert.Contains(t, out, "created account farmer1")

	_, err = runCLI(t, "create-account", "farmer1", "password123")
	require.Error(t, err)
	assert.Contains(t, err.Error(), msgUsernameTaken)

	_, err = runCLI(t, "create-account", "ab", "password123")
	assert.Error(t, err)

	out, err = runCLI(t, "reset-password", "farmer1", "newpassword1")
	require.NoError(t, err)
	assert.Contains(t, out, "password reset for farmer1")

	_, err = runCLI(t, "reset-password", "farmer1", "short")
	assert.Error(t, err)

	_, err = runCLI(t, "reset-password", "nobody", "newpassword1")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	db, err := openDB(config.DBConfig{Driver: config.DriverSQLite, DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	acc, err := authenticate(db, "farmer1", "newpassword1")
	require.NoError(t, err)
	assert.Equal(t, "farmer1", acc.Username)
	var n int64
	require.NoError(t, db.Model(&models.Account{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestCLIBadConfig(t *testing.T) {
	t.Setenv("FARM_DB_DRIVER", "mysql")
	_, err := runCLI(t, "migrate")
	assert.Error(t, err)

	_, err = runCLI(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "migrate")
	assert.Error(t, err)
}
