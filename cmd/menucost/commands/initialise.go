package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/menucost/engine/internal/config"
	"github.com/menucost/engine/internal/database"
	"github.com/menucost/engine/internal/logger"
)

const defaultDomainTOML = `# domain.toml - pricing defaults, hot-reloaded while menucost ui is running.
vat = 0.20
marginTarget = 65
defaultPriceIncludesVat = true
`

var projectDirs = []string{"suppliers", "ingredients", "recipes"}

var initialiseCmd = &cobra.Command{
	Use:   "initialise",
	Short: "Create the project layout and database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInitialise(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(initialiseCmd)
}

func runInitialise(ctx context.Context) error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found; using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return withCode(ExitInputInvalid, fmt.Errorf("loading configuration: %w", err))
	}
	log := logger.New(cfg.App.Env)

	for _, dir := range projectDirs {
		path := filepath.Join(cfg.App.ProjectRoot, dir)
		if err := os.MkdirAll(path, 0o755); err != nil {
			return withCode(ExitRuntimeFailure, fmt.Errorf("creating %s: %w", path, err))
		}
		log.Info().Str("path", path).Msg("directory ready")
	}

	domainPath := filepath.Join(cfg.App.ProjectRoot, "domain.toml")
	if _, err := os.Stat(domainPath); os.IsNotExist(err) {
		if err := os.WriteFile(domainPath, []byte(defaultDomainTOML), 0o644); err != nil {
			return withCode(ExitRuntimeFailure, fmt.Errorf("writing %s: %w", domainPath, err))
		}
		log.Info().Str("path", domainPath).Msg("default domain configuration written")
	} else {
		log.Info().Str("path", domainPath).Msg("domain configuration already present")
	}

	pool, err := database.Connect(ctx, cfg.PostgresDSN(), 5)
	if err != nil {
		return withCode(ExitRuntimeFailure, fmt.Errorf("connecting to postgres: %w", err))
	}
	defer pool.Close()

	applied, err := database.RunMigrations(ctx, pool, cfg.Database.MigrationsDir, log)
	if err != nil {
		return withCode(ExitRuntimeFailure, err)
	}

	if applied == 0 {
		log.Info().Msg("schema already up to date")
	} else {
		log.Info().Int("count", applied).Msg("migrations applied")
	}

	fmt.Println("project initialised")
	return nil
}
