package app

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/config"
)

const serviceName = "task-tracker"

var globalLogger zerolog.Logger

func InitDefaultLogger() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	zerolog.TimestampFieldName = "timestamp"

	globalLogger = zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Str("service", serviceName).
		Int("pid", os.Getpid()).
		Logger()

	globalLogger.Info().Msg("initialized default logger")
}

// loggerOutput picks the level and writer for env. The console writer is
// only used for local runs.
func loggerOutput(env string) (zerolog.Level, io.Writer, error) {
	switch env {
	case config.EnvDev:
		return zerolog.DebugLevel, os.Stdout, nil
	case config.EnvProd:
		return zerolog.InfoLevel, os.Stdout, nil
	case config.EnvLocal:
		consoleWriter := zerolog.NewConsoleWriter()
		consoleWriter.TimeFormat = time.DateTime
		consoleWriter.Out = os.Stdout
		return zerolog.TraceLevel, consoleWriter, nil
	default:
		return zerolog.NoLevel, nil, fmt.Errorf("unknown env: %s", env)
	}
}

func MustInitApplicationLogger() {
	cfg := config.Global()

	level, w, err := loggerOutput(cfg.Env)
	if err != nil {
		globalLogger.Error().
			Str("env", cfg.Env).
			Msg("unknown env")
		panic(err)
	}
	zerolog.SetGlobalLevel(level)

	globalLogger = globalLogger.Output(w)
	globalLogger.Info().
		Str("level", level.String()).
		Msg("initialized application logger")
}
