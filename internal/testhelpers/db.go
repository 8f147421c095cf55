// Package testhelpers holds fixtures shared by package tests.
package testhelpers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lucasaraujosgc-hue/crm/internal/database"
)

// NewTestDB returns a migrated in-memory database closed at test end
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(context.Background(), db))
	return db
}
