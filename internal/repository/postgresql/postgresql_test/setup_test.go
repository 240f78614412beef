package postgresql_test

import (
	"context"
	"os"
	"testing"

	"github.com/skponto/skponto-backend-go/internal/pkg/database"
	"github.com/stretchr/testify/require"
)

const migrationPath = "../../../../db/migrations/001_init.sql"

// newTestDB connects to TEST_DATABASE_URL and rebuilds the schema. Tests are
// skipped when the variable is unset.
func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := database.NewPostgreSQLDB(dsn, database.PoolConfig{MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	schema, err := os.ReadFile(migrationPath)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = db.Exec(ctx, "DROP SCHEMA public CASCADE; CREATE SCHEMA public;")
	require.NoError(t, err)
	_, err = db.Exec(ctx, string(schema))
	require.NoError(t, err)

	return db
}

func createUser(t *testing.T, db *database.DB, email, role string) string {
	t.Helper()
	var id string
	err := db.QueryRow(context.Background(), `
		INSERT INTO users (name, email, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`, email, email, role).Scan(&id)
	require.NoError(t, err)
	return id
}
