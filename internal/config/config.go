package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath     = "bookshelf.yaml"
	DefaultDataFile = "library_data.json"
	DefaultLogLevel = "info"
)

type Config struct {
	DataFile    string `yaml:"dataFile"`
	LogLevel    string `yaml:"logLevel"`
	MetricsFile string `yaml:"metricsFile"`
}

func Default() Config {
	return Config{
		DataFile: DefaultDataFile,
		LogLevel: DefaultLogLevel,
	}
}

// Load resolves the config from defaults, the YAML file at path, .env files and
// the environment, in that order. A missing file at the default path is not an
// error; a missing file that was asked for explicitly is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	loadEnvFiles()

	if v := os.Getenv("BOOKSHELF_DATA_FILE"); v != "" {
		cfg.DataFile = v
	}
	if v := os.Getenv("BOOKSHELF_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("BOOKSHELF_METRICS_FILE"); v != "" {
		cfg.MetricsFile = v
	}

	return cfg, nil
}

// loadEnvFiles never overrides variables already set in the environment.
func loadEnvFiles() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DataFile) == "" {
		return errors.New("config: dataFile is required (set in bookshelf.yaml or BOOKSHELF_DATA_FILE)")
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: logLevel %q: %w", c.LogLevel, err)
	}
	return nil
}
