package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read when no .env path is given.
const DefaultEnvFile = ".env"

// LoadDotEnv loads environment variables from a .env file.
// If path is empty, it loads from ".env" in the current directory.
// If the file does not exist, it silently returns nil (not an error).
// Variables already present in the environment are never overwritten.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}

// MustLoadDotEnv loads environment variables from a .env file.
// Unlike LoadDotEnv, it returns an error if the file does not exist.
func MustLoadDotEnv(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	return godotenv.Load(path)
}

// LoadConfig loads configuration from a .env file and environment variables.
// An empty envPath reads ./.env when present; an explicit envPath must exist.
// Environment variables win over values from the file.
func LoadConfig(envPath string) (AppConfig, error) {
	load := LoadDotEnv
	if envPath != "" {
		load = MustLoadDotEnv
	}
	if err := load(envPath); err != nil {
		return AppConfig{}, fmt.Errorf("load env file: %w", err)
	}

	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, fmt.Errorf("process environment: %w", err)
	}

	return envCfg.Normalize().ToAppConfig(), nil
}
