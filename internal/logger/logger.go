package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger writing to stdout, switching to debug
// level for a "development" environment and info level otherwise.
func New(env string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	if strings.EqualFold(env, "development") {
		level = zerolog.DebugLevel
	}

	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Logger().
		Level(level)

	return log
}
