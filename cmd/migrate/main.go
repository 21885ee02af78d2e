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
	log.Info().Msg("starting migration tool")

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.PostgresDSN(), 5)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer pool.Close()

	applied, err := database.RunMigrations(ctx, pool, cfg.Database.MigrationsDir, log)
	if err != nil {
		return err
	}

	if applied == 0 {
		log.Info().Msg("schema already up to date")
	} else {
		log.Info().Int("count", applied).Msg("migrations applied")
	}

	return nil
}
