// Package commands implements the menucost CLI's command tree: a
// root.go carrying global wiring plus one file per subcommand, the
// same shape go-coffee's cmd/task-cli uses.
package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/menucost/engine/internal/assets"
	"github.com/menucost/engine/internal/cache"
	"github.com/menucost/engine/internal/config"
	"github.com/menucost/engine/internal/costing"
	"github.com/menucost/engine/internal/database"
	"github.com/menucost/engine/internal/filestore"
	"github.com/menucost/engine/internal/logger"
	"github.com/menucost/engine/internal/service"
	"github.com/menucost/engine/internal/store"
)

// Exit codes per the CLI surface: 0 success, 1 runtime failure, 2
// unrecoverable input, 409 the store has never been initialised.
const (
	ExitSuccess        = 0
	ExitRuntimeFailure = 1
	ExitInputInvalid   = 2
	ExitNotInitialised = 409
)

// exitError pairs an error with the process exit code it should
// produce, so Execute can translate a cobra command's returned error
// into the right os.Exit call without every subcommand touching
// os.Exit itself.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// CodeOf extracts the intended exit code from err, defaulting to
// ExitRuntimeFailure for any error a subcommand did not explicitly
// classify.
func CodeOf(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *exitError
	if as(err, &ee) {
		return ee.code
	}
	return ExitRuntimeFailure
}

func as(err error, target **exitError) bool {
	for err != nil {
		if ee, ok := err.(*exitError); ok {
			*target = ee
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// app holds every dependency a subcommand might need, built once in
// PersistentPreRunE and torn down in PersistentPostRun.
type app struct {
	cfg         *config.Config
	domain      *config.DomainStore
	log         zerolog.Logger
	pool        *pgxpool.Pool
	cache       cache.Cache
	redisClient *redis.Client
	files       *filestore.Store
	images      *assets.Client
	svcs        *service.Services
	engine      *costing.Engine
}

var current *app

var rootCmd = &cobra.Command{
	Use:   "menucost",
	Short: "Local-first menu costing engine",
	Long: `menucost turns declarative supplier, ingredient, and recipe files
into costed, margin-checked menu items.

Subcommands:
  initialise            create the project layout and database schema
  import <files...>     import one or more declarative entity files
  recipe calculate      cost and margin-check one or more recipes
  recipe report         print a cost breakdown report across recipes
  recipe image          attach a photo to a recipe via object storage
  ui                     run the watcher + HTTP surface in the foreground`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dbOnly, _ := cmd.Flags().GetBool("db-only")
		if cmd.Name() == "initialise" {
			return nil
		}
		return bootstrap(cmd.Context(), dbOnly)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("db-only", false, "store declarative entity files in the database only, skipping filesystem writes")
}

// Execute runs the command tree and returns the error a subcommand
// produced, already classified with the right exit code.
func Execute() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

// bootstrap loads configuration, connects to Postgres and Redis (or a
// local cache when Redis is unconfigured), and assembles the service
// layer and cost engine every subcommand but initialise depends on.
func bootstrap(ctx context.Context, dbOnly bool) error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file found; using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		return withCode(ExitInputInvalid, fmt.Errorf("loading configuration: %w", err))
	}

	log := logger.New(cfg.App.Env)

	pool, err := database.Connect(ctx, cfg.PostgresDSN(), 10)
	if err != nil {
		return withCode(ExitRuntimeFailure, fmt.Errorf("connecting to postgres: %w", err))
	}

	initialised, err := database.IsInitialised(ctx, pool)
	if err != nil {
		pool.Close()
		return withCode(ExitRuntimeFailure, err)
	}
	if !initialised {
		pool.Close()
		return withCode(ExitNotInitialised, fmt.Errorf("project is not initialised: run 'menucost initialise' first"))
	}

	domainPath := cfg.App.ProjectRoot + "/domain.toml"
	domain, err := config.LoadDomain(domainPath, log)
	if err != nil {
		pool.Close()
		return withCode(ExitInputInvalid, fmt.Errorf("loading domain configuration: %w", err))
	}

	var c cache.Cache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedis(cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TLSEnabled)
		if err != nil {
			pool.Close()
			return withCode(ExitRuntimeFailure, fmt.Errorf("connecting to redis: %w", err))
		}
		c = cache.NewRedisCache(redisClient)
	} else {
		c = cache.NewLocalCache(5*time.Minute, 10*time.Minute)
	}

	mode := filestore.ModeFilesystem
	if dbOnly || cfg.App.StorageMode == string(filestore.ModeDatabaseOnly) {
		mode = filestore.ModeDatabaseOnly
	}
	files := filestore.New(cfg.App.ProjectRoot, mode)

	var images *assets.Client
	if cfg.MinIO.Endpoint != "" {
		images, err = assets.New(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
			cfg.MinIO.Bucket, cfg.MinIO.Region, cfg.MinIO.UseSSL, cfg.MinIO.PresignTTL)
		if err != nil {
			pool.Close()
			return withCode(ExitRuntimeFailure, fmt.Errorf("connecting to image storage: %w", err))
		}
		if err := images.EnsureBucket(ctx); err != nil {
			pool.Close()
			return withCode(ExitRuntimeFailure, err)
		}
	}

	st := store.New(pool)
	svcs := service.NewServices(service.Dependencies{
		Config:      cfg,
		Suppliers:   st,
		Ingredients: st,
		Recipes:     st,
		Cache:       c,
		Files:       files,
		Logger:      log,
	})

	d := domain.Get()
	engine := costing.New(svcs.Recipes, svcs.Ingredients, decimal.NewFromFloat(d.VAT), log)
	domain.OnChange(func(d config.Domain) {
		engine.VATRate = decimal.NewFromFloat(d.VAT)
		if err := c.InvalidatePrefixes(ctx, "margin:", "dashboard:"); err != nil {
			log.Warn().Err(err).Msg("cache invalidation after domain config reload failed")
		}
	})

	current = &app{cfg: cfg, domain: domain, log: log, pool: pool, cache: c, redisClient: redisClient, files: files, images: images, svcs: svcs, engine: engine}
	return nil
}

func teardown() {
	if current == nil {
		return
	}
	if current.pool != nil {
		current.pool.Close()
	}
	current = nil
}
