package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const migrationTableDDL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version VARCHAR(255) PRIMARY KEY,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// RunMigrations applies every *.up.sql file under dir that has not yet
// been recorded in schema_migrations, in filename order, each inside
// its own transaction. It is shared by cmd/migrate and the CLI's
// initialise subcommand so both drive exactly one migration path.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, dir string, log zerolog.Logger) (int, error) {
	if _, err := pool.Exec(ctx, migrationTableDDL); err != nil {
		return 0, fmt.Errorf("creating schema_migrations table: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	var migrations []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".up.sql") {
			migrations = append(migrations, entry.Name())
		}
	}
	sort.Strings(migrations)

	if len(migrations) == 0 {
		log.Info().Str("dir", dir).Msg("no migrations found")
		return 0, nil
	}

	rows, err := pool.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return 0, fmt.Errorf("listing applied migrations: %w", err)
	}
	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return 0, fmt.Errorf("reading applied migration: %w", err)
		}
		applied[version] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating applied migrations: %w", err)
	}

	count := 0
	for _, migration := range migrations {
		version := strings.TrimSuffix(migration, ".up.sql")
		if applied[version] {
			log.Debug().Str("migration", version).Msg("already applied")
			continue
		}

		sqlBytes, err := os.ReadFile(filepath.Join(dir, migration))
		if err != nil {
			return count, fmt.Errorf("reading migration %s: %w", migration, err)
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return count, fmt.Errorf("starting transaction for %s: %w", migration, err)
		}
		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			tx.Rollback(ctx)
			return count, fmt.Errorf("applying migration %s: %w", migration, err)
		}
		if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
			tx.Rollback(ctx)
			return count, fmt.Errorf("recording migration %s: %w", migration, err)
		}
		if err := tx.Commit(ctx); err != nil {
			return count, fmt.Errorf("committing migration %s: %w", migration, err)
		}

		log.Info().Str("migration", version).Msg("migration applied")
		count++
	}

	return count, nil
}

// IsInitialised reports whether the schema_migrations table exists,
// the signal the CLI uses to distinguish "store has never been
// initialised" (exit code 409) from any other runtime failure.
func IsInitialised(ctx context.Context, pool *pgxpool.Pool) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables WHERE table_name = 'schema_migrations'
		)
	`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking schema_migrations: %w", err)
	}
	return exists, nil
}
