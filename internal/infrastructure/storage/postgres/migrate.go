package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"stockledger/pkg/logger"
)

// The files keep goose annotations so they can also be applied with
// `goose -dir internal/infrastructure/storage/postgres/migrations`.
//
//go:embed migrations/*.sql
var migrationFiles embed.FS

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"
)

// Migration is one versioned schema change.
type Migration struct {
	Version string
	Up      string
}

// LoadMigrations returns the embedded migrations ordered by version.
func LoadMigrations() ([]Migration, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(entries)

	out := make([]Migration, 0, len(entries))
	for _, name := range entries {
		body, err := migrationFiles.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		up, err := upSection(string(body))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		version := strings.TrimSuffix(strings.TrimPrefix(name, "migrations/"), ".sql")
		out = append(out, Migration{Version: version, Up: up})
	}
	return out, nil
}

func upSection(body string) (string, error) {
	start := strings.Index(body, gooseUp)
	if start < 0 {
		return "", fmt.Errorf("missing %q marker", gooseUp)
	}
	body = body[start+len(gooseUp):]
	if end := strings.Index(body, gooseDown); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body), nil
}

// Migrate applies pending migrations, each in its own transaction,
// and records them in schema_migrations. Returns the versions applied.
func Migrate(ctx context.Context, pool *Pool) ([]string, error) {
	migrations, err := LoadMigrations()
	if err != nil {
		return nil, err
	}

	const createTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
	if _, err := pool.Exec(ctx, createTable); err != nil {
		return nil, mapError(fmt.Errorf("create schema_migrations: %w", err))
	}

	var applied []string
	for _, m := range migrations {
		done, err := applyMigration(ctx, pool, m)
		if err != nil {
			return applied, err
		}
		if done {
			logger.Info(ctx, "migration applied", "version", m.Version)
			applied = append(applied, m.Version)
		}
	}
	return applied, nil
}

func applyMigration(ctx context.Context, pool *Pool, m Migration) (bool, error) {
	applied := false
	err := pgx.BeginFunc(ctx, pool.Pool, func(tx pgx.Tx) error {
		// Serialises concurrent migrators.
		if _, err := tx.Exec(ctx, "LOCK TABLE schema_migrations IN EXCLUSIVE MODE"); err != nil {
			return err
		}

		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.Version,
		).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return nil
		}

		if _, err := tx.Exec(ctx, m.Up); err != nil {
			return fmt.Errorf("apply %s: %w", m.Version, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version); err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, mapError(err)
	}
	return applied, nil
}
