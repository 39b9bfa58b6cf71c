package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/yukikurage/toondo/internal/config"
)

var globalLogger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// L returns the process logger.
func L() *zerolog.Logger {
	return &globalLogger
}

// Init configures the process logger for the given environment, writing to
// stdout.
func Init(cfg *config.Config) {
	InitTo(cfg, os.Stdout)
}

// InitTo is Init with an explicit destination.
func InitTo(cfg *config.Config, out io.Writer) {
	zerolog.TimestampFieldName = "timestamp"

	w := out
	level := zerolog.InfoLevel
	switch cfg.Env {
	case config.EnvDev:
		level = zerolog.DebugLevel
	case config.EnvProd:
		level = zerolog.InfoLevel
	case config.EnvLocal:
		level = zerolog.DebugLevel

		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = out
		w = consoleWriter
	}

	if cfg.LogLevel != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)

	globalLogger = zerolog.New(w).
		With().
		Timestamp().
		Int("pid", os.Getpid()).
		Logger()

	globalLogger.Info().
		Str("env", cfg.Env).
		Str("level", level.String()).
		Msg("initialized application logger")
}

// SetOutput replaces the process logger writer (used by tests).
func SetOutput(w io.Writer) {
	globalLogger = globalLogger.Output(w)
}
