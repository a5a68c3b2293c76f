package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// ApplyMigrations runs every up migration in name order. The statements are
// written to be re-runnable.
func ApplyMigrations(ctx context.Context, db *sql.DB) error {
	names, err := migrationNames(".up.sql")
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := execMigration(ctx, db, name); err != nil {
			return err
		}
	}
	return nil
}

// ApplyMigration runs the single migration file whose name ends with
// migrationName, e.g. "create_votes.up" or "0004_create_votes.down".
func ApplyMigration(ctx context.Context, db *sql.DB, migrationName string) (string, error) {
	name, err := migrationFileName(migrationName)
	if err != nil {
		return "", err
	}
	return name, execMigration(ctx, db, name)
}

// MigrationNames lists the embedded migration files.
func MigrationNames() ([]string, error) {
	return migrationNames(".sql")
}

func execMigration(ctx context.Context, db *sql.DB, name string) error {
	content, err := migrationFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("failed to read migration file %s: %w", name, err)
	}
	if _, err := db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute migration %s: %w", name, err)
	}
	return nil
}

func migrationNames(suffix string) ([]string, error) {
	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func migrationFileName(migrationName string) (string, error) {
	regex, err := regexp.Compile(fmt.Sprintf(`^.*%s\.sql$`, regexp.QuoteMeta(migrationName)))
	if err != nil {
		return "", fmt.Errorf("invalid migration name: %w", err)
	}

	names, err := MigrationNames()
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if regex.MatchString(name) {
			return name, nil
		}
	}
	return "", fmt.Errorf("migration file not found")
}
