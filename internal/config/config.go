// Package config loads the deployment-level configuration (env vars,
// via caarlos0/env) and the domain-level configuration (a TOML file,
// via spf13/viper, see domain.go) that together configure a running
// menucost engine.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config aggregates the deployment settings sourced from the process
// environment. SMTP/notification settings are dropped relative to the
// teacher — this engine has no mailer.
type Config struct {
	App struct {
		Name        string `env:"APP_NAME,notEmpty"`
		Env         string `env:"APP_ENV,notEmpty"`
		Host        string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
		Port        int    `env:"SERVER_PORT" envDefault:"8080"`
		ExternalURL string `env:"SERVER_EXTERNAL_URL" envDefault:""`
		ProjectRoot string `env:"MENUCOST_PROJECT_ROOT,notEmpty"`
		StorageMode string `env:"MENUCOST_STORAGE_MODE" envDefault:"filesystem"`
	}

	Database struct {
		Host          string `env:"POSTGRES_HOST,notEmpty"`
		Port          int    `env:"POSTGRES_PORT" envDefault:"5432"`
		Name          string `env:"POSTGRES_DB,notEmpty"`
		User          string `env:"POSTGRES_USER,notEmpty"`
		Password      string `env:"POSTGRES_PASSWORD,notEmpty"`
		SSLMode       string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		MigrationsDir string `env:"POSTGRES_MIGRATIONS_DIR" envDefault:"migrations"`
	}

	Redis struct {
		Addr       string `env:"REDIS_ADDR" envDefault:""`
		Username   string `env:"REDIS_USERNAME"`
		Password   string `env:"REDIS_PASSWORD"`
		DB         int    `env:"REDIS_DB" envDefault:"0"`
		TLSEnabled bool   `env:"REDIS_TLS_ENABLED" envDefault:"false"`
	}

	MinIO struct {
		Endpoint   string        `env:"MINIO_ENDPOINT" envDefault:""`
		Region     string        `env:"MINIO_REGION" envDefault:"us-east-1"`
		AccessKey  string        `env:"MINIO_ACCESS_KEY"`
		SecretKey  string        `env:"MINIO_SECRET_KEY"`
		UseSSL     bool          `env:"MINIO_USE_SSL" envDefault:"false"`
		Bucket     string        `env:"MINIO_BUCKET" envDefault:"recipe-assets"`
		PresignTTL time.Duration `env:"MINIO_PRESIGNED_EXPIRATION_MINUTES" envDefault:"15m"`
	}

	JWT struct {
		Secret              string        `env:"JWT_SECRET,notEmpty"`
		Issuer              string        `env:"JWT_ISSUER" envDefault:"menucost"`
		AccessTokenDuration time.Duration `env:"JWT_ACCESS_TOKEN_MINUTES" envDefault:"60m"`
	}

	RateLimit struct {
		Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
		Window   time.Duration `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60s"`
	}

	Observability struct {
		PrometheusEnabled bool `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"true"`
		PrometheusPort    int  `env:"PROMETHEUS_METRICS_PORT" envDefault:"9090"`
	}
}

// Load parses the process environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("loading environment configuration: %w", err)
	}

	return cfg, nil
}

// PostgresDSN builds the Postgres connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s", c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name, c.Database.SSLMode)
}
