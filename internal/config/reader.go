package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Reader interface {
	Read() (*Config, error)
}

// NewReader returns a FileReader for path, or an EnvReader when path is empty.
func NewReader(path string) Reader {
	if path == "" {
		return NewEnvReader()
	}
	return NewFileReader(path)
}

type EnvReader struct{}

func NewEnvReader() EnvReader {
	return EnvReader{}
}

func (EnvReader) Read() (*Config, error) {
	cfg := new(Config)
	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}

	return cfg, nil
}

// FileReader loads a dotenv file into the process environment and then
// reads the configuration from it. Values in the file take precedence over
// variables already set. The file name is not interpreted, so .env.local or
// prod.dotenv work as well as .env.
type FileReader struct {
	path string
}

func NewFileReader(path string) FileReader {
	return FileReader{path: path}
}

func (r FileReader) Read() (*Config, error) {
	err := godotenv.Overload(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to load env file %s: %w", r.path, err)
	}

	return NewEnvReader().Read()
}
