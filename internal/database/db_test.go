package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sortegrande/linkauth/internal/models"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "oracle")
}

func TestOpenDefaultsToSQLite(t *testing.T) {
	db, err := Open(Config{DSN: "file::memory:?_foreign_keys=1"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, sqlDB.Ping())
}

func TestAutoMigrateCreatesSchema(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file::memory:?_foreign_keys=1"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	require.True(t, migrator.HasTable(&models.User{}))
	require.True(t, migrator.HasTable(&models.VerificationToken{}))
	require.True(t, migrator.HasTable(&models.CacheEntry{}))

	// Migrations are idempotent.
	require.NoError(t, AutoMigrate(db))
}
