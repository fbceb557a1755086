package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir         string        `yaml:"data_dir"`
	RosterPath      string        `yaml:"roster_path"`
	ResultsURLs     []string      `yaml:"results_urls"`
	DBPath          string        `yaml:"db_path"`
	ServerPort      string        `yaml:"server_port"`
	LogLevel        string        `yaml:"log_level"`
	InitialRating   float64       `yaml:"initial_rating"`
	KFactor         float64       `yaml:"k_factor"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

func defaults() *Config {
	return &Config{
		DataDir:       "data",
		DBPath:        "ratings.db",
		ServerPort:    "8080",
		LogLevel:      "info",
		InitialRating: 1200,
		KFactor:       20,
	}
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.mergeEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Info().
		Str("data_dir", cfg.DataDir).
		Str("roster_path", cfg.RosterPath).
		Int("results_urls", len(cfg.ResultsURLs)).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Float64("initial_rating", cfg.InitialRating).
		Float64("k_factor", cfg.KFactor).
		Dur("refresh_interval", cfg.RefreshInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

func (c *Config) mergeEnv() error {
	c.DataDir = getEnv("DATA_DIR", c.DataDir)
	c.RosterPath = getEnv("ROSTER_PATH", c.RosterPath)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.ServerPort = getEnv("SERVER_PORT", c.ServerPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	if v := os.Getenv("RESULTS_URLS"); v != "" {
		c.ResultsURLs = nil
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.ResultsURLs = append(c.ResultsURLs, u)
			}
		}
	}

	var err error
	if c.InitialRating, err = getEnvFloat("INITIAL_RATING", c.InitialRating); err != nil {
		return err
	}
	if c.KFactor, err = getEnvFloat("K_FACTOR", c.KFactor); err != nil {
		return err
	}
	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid REFRESH_INTERVAL %q: %w", v, err)
		}
		c.RefreshInterval = d
	}
	return nil
}

func (c *Config) Validate() error {
	if c.DataDir == "" && len(c.ResultsURLs) == 0 {
		return fmt.Errorf("DATA_DIR or RESULTS_URLS is required")
	}
	if c.KFactor <= 0 {
		return fmt.Errorf("K_FACTOR must be positive, got %v", c.KFactor)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("REFRESH_INTERVAL must not be negative")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

var Module = fx.Provide(Load)
