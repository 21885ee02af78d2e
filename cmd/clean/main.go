package main

import (
	"context"
	"fmt"
	"os"

	"github.com/menucost/engine/internal/config"
	"github.com/menucost/engine/internal/database"
	"github.com/menucost/engine/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.New(cfg.App.Env)
	log.Info().Msg("wiping database")

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.PostgresDSN(), 5)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	tables := []string{
		"recipe_lines",
		"recipes",
		"ingredients",
		"suppliers",
		"schema_migrations",
	}

	for _, table := range tables {
		if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+table+" CASCADE"); err != nil {
			return fmt.Errorf("dropping table %s: %w", table, err)
		}
		log.Info().Str("table", table).Msg("table dropped")
	}

	log.Info().Msg("database wiped")
	log.Info().Msg("run 'go run ./cmd/migrate' to recreate the schema")

	return nil
}
