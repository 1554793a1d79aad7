package database_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridion-labs/facegate/internal/database"
)

// TestMigratorIntegration exercises the embedded migrations against a
// real database. Set FACEGATE_TEST_DSN to run it.
func TestMigratorIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dsn := os.Getenv("FACEGATE_TEST_DSN")
	if dsn == "" {
		t.Skip("FACEGATE_TEST_DSN not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))

	cleanupDatabase(t, db)

	t.Run("Up runs migrations successfully", func(t *testing.T) {
		migrator, err := database.NewMigrator(db, "facegate_test")
		require.NoError(t, err)
		defer func() { _ = migrator.Close() }()

		require.NoError(t, migrator.Up())

		assertTableExists(t, db, "attempts")
		assertTableExists(t, db, "face_index")
	})

	t.Run("Version reflects latest migration", func(t *testing.T) {
		migrator, err := database.NewMigrator(db, "facegate_test")
		require.NoError(t, err)
		defer func() { _ = migrator.Close() }()

		version, dirty, err := migrator.Version()
		require.NoError(t, err)
		assert.False(t, dirty, "migration should not be dirty")
		assert.Equal(t, uint(2), version)
	})

	t.Run("attempts table has expected columns", func(t *testing.T) {
		columns := getTableColumns(t, db, "attempts")
		for _, col := range []string{
			"id", "kind", "username", "success", "score", "reason", "latency_ms", "created_at",
		} {
			assert.Contains(t, columns, col, "attempts should have column %s", col)
		}
	})

	t.Run("attempt insertion works", func(t *testing.T) {
		var createdAt time.Time
		err := db.QueryRow(`
			INSERT INTO attempts (id, kind, username, success, score, reason, latency_ms)
			VALUES (gen_random_uuid(), 'login', 'alice', true, 0.9, '', 420)
			RETURNING created_at
		`).Scan(&createdAt)
		require.NoError(t, err)
		assert.False(t, createdAt.IsZero())
	})

	t.Run("kind check constraint rejects unknown values", func(t *testing.T) {
		_, err := db.Exec(`
			INSERT INTO attempts (id, kind)
			VALUES (gen_random_uuid(), 'selfie')
		`)
		assert.Error(t, err)
	})

	t.Cleanup(func() {
		cleanupDatabase(t, db)
	})
}

func cleanupDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	_, err := db.Exec(`
		DROP TABLE IF EXISTS face_index;
		DROP TABLE IF EXISTS attempts;
		DROP TABLE IF EXISTS schema_migrations;
	`)
	if err != nil {
		t.Logf("cleanup warning: %v", err)
	}
}

func assertTableExists(t *testing.T, db *sql.DB, tableName string) {
	t.Helper()

	var exists bool
	err := db.QueryRow(`
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)

	require.NoError(t, err)
	assert.True(t, exists, "table %s should exist", tableName)
}

func getTableColumns(t *testing.T, db *sql.DB, tableName string) []string {
	t.Helper()

	rows, err := db.Query(`
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = 'public'
		AND table_name = $1
		ORDER BY ordinal_position
	`, tableName)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var columns []string
	for rows.Next() {
		var col string
		require.NoError(t, rows.Scan(&col))
		columns = append(columns, col)
	}

	return columns
}
