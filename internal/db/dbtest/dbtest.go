// Package dbtest opens migrated throwaway sqlite databases for tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/franklininnocent/EkklesiaSoftApi/internal/config"
	"github.com/franklininnocent/EkklesiaSoftApi/internal/db"
)

// New returns a migrated sqlite database living in the test's temp dir.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DB: config.DB{
			GormEngine: config.EngineSQLite,
			Path:       filepath.Join(t.TempDir(), "test.db"),
		},
	}

	gdb, err := db.Open(cfg)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return gdb
}
