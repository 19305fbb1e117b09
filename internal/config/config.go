package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries environment-provided settings. Process environment always
// wins; a .env file in the working directory only fills gaps.
type Config struct {
	OpenAIAPIKey  string
	ModelDir      string
	OutputDir     string
	WhisperPath   string
	DefaultEngine string
}

const (
	envAPIKey    = "OPENAI_API_KEY"
	envModelDir  = "SCRIBE_MODEL_DIR"
	envOutputDir = "SCRIBE_OUTPUT_DIR"
	envWhisper   = "SCRIBE_WHISPER_PATH"
	envEngine    = "SCRIBE_ENGINE"
)

// Load reads configuration from the environment, optionally merging a .env
// file first. A missing .env file is not an error.
func Load() (Config, error) {
	return loadFrom(".env")
}

func loadFrom(dotenvPath string) (Config, error) {
	if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	return Config{
		OpenAIAPIKey:  strings.TrimSpace(os.Getenv(envAPIKey)),
		ModelDir:      strings.TrimSpace(os.Getenv(envModelDir)),
		OutputDir:     strings.TrimSpace(os.Getenv(envOutputDir)),
		WhisperPath:   strings.TrimSpace(os.Getenv(envWhisper)),
		DefaultEngine: strings.TrimSpace(os.Getenv(envEngine)),
	}, nil
}

func (c Config) HasAPIKey() bool {
	return c.OpenAIAPIKey != ""
}
