package database

import (
	"io/fs"
	"strings"
	"testing"

	"storefront/internal/config"
	"storefront/migrations"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readMigration(t *testing.T, name string) string {
	t.Helper()
	content, err := fs.ReadFile(migrations.FS, name)
	require.NoError(t, err, "migration %s must be embedded", name)
	return string(content)
}

func TestMigrationFilesExist(t *testing.T) {
	expectedMigrations := []string{
		"00001_create_users_table.sql",
		"00002_create_sessions_table.sql",
		"00003_create_categories_table.sql",
		"00004_create_products_table.sql",
	}

	for _, migration := range expectedMigrations {
		_, err := fs.Stat(migrations.FS, migration)
		assert.NoError(t, err, "migration file %s does not exist", migration)
	}
}

func TestMigrationFilesHaveUpAndDown(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files, "no SQL migration files found")

	for _, file := range files {
		content := readMigration(t, file)
		for _, directive := range []string{
			"-- +goose Up",
			"-- +goose Down",
			"-- +goose StatementBegin",
			"-- +goose StatementEnd",
		} {
			assert.Contains(t, content, directive, "migration %s missing %q", file, directive)
		}
	}
}

func TestMigrationFilesCreateExpectedTables(t *testing.T) {
	expectedTables := map[string]string{
		"users":      "00001_create_users_table.sql",
		"sessions":   "00002_create_sessions_table.sql",
		"categories": "00003_create_categories_table.sql",
		"products":   "00004_create_products_table.sql",
	}

	for tableName, migrationFile := range expectedTables {
		content := readMigration(t, migrationFile)
		assert.Contains(t, content, "CREATE TABLE IF NOT EXISTS "+tableName)
		assert.Contains(t, content, "DROP TABLE IF EXISTS "+tableName)
	}
}

func TestProductsTableHasRequiredColumns(t *testing.T) {
	content := readMigration(t, "00004_create_products_table.sql")

	requiredColumns := []string{
		"id TEXT PRIMARY KEY",
		"seq BIGSERIAL",
		"name VARCHAR",
		"description TEXT",
		"price NUMERIC",
		"category_id VARCHAR",
		"image_url VARCHAR",
		"sizes TEXT[]",
		"colors TEXT[]",
		"featured BOOLEAN",
		"created_at TIMESTAMPTZ",
	}

	for _, column := range requiredColumns {
		assert.Contains(t, content, column, "products table missing column definition")
	}

	// Categories are matched by slug only
	assert.False(t, strings.Contains(content, "FOREIGN KEY"), "products must not reference categories")
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     "5432",
		User:     "shop",
		Password: "p@ss word",
		Database: "storefront",
		Schema:   "public",
		SSLMode:  "disable",
	})

	assert.True(t, strings.HasPrefix(dsn, "postgres://shop:p%40ss%20word@db:5432/storefront?"), dsn)
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "search_path=public")
}
