package app

import (
	_ "github.com/joho/godotenv/autoload"

	"github.com/adanyl0v/go-task-tracker/internal/config"
)

// MustReadEnv reads the configuration from the process environment, or
// from the dotenv file at path when it is set.
func MustReadEnv(path string) {
	cfg, err := config.NewReader(path).Read()
	if err != nil {
		globalLogger.Error().
			Err(err).
			Str("path", path).
			Msg("failed to read env")
		panic(err)
	}
	globalLogger.Info().
		Str("env", cfg.Env).
		Msg("read env")

	config.SetGlobal(cfg)
}
