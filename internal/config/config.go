// Package config loads server configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"mazerace/internal/maze"
)

// Storage backend names
const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

// Config is the full server configuration.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Storage selects the backend: memory, redis, or postgres.
	Storage     string `yaml:"storage"`
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`

	UploadDir string `yaml:"upload_dir"`

	Maze MazeConfig `yaml:"maze"`

	// Experience awards for match outcomes.
	WinExperience  int `yaml:"win_experience"`
	LossExperience int `yaml:"loss_experience"`
	LevelThreshold int `yaml:"level_threshold"`
}

// MazeConfig holds the maze geometry. Goal cells are configurable; an
// empty list means the standard single goal opposite the start.
type MazeConfig struct {
	Rows  int             `yaml:"rows"`
	Cols  int             `yaml:"cols"`
	Goals []maze.Position `yaml:"goals"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Host:           "",
		Port:           8080,
		Storage:        StorageMemory,
		RedisURL:       "redis://localhost:6379",
		UploadDir:      "static/uploads",
		Maze:           MazeConfig{Rows: maze.DefaultRows, Cols: maze.DefaultCols},
		WinExperience:  30,
		LossExperience: 10,
		LevelThreshold: 100,
	}
}

// Load reads the YAML file at path (if non-empty) over the defaults,
// then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
}

func (c Config) validate() error {
	switch c.Storage {
	case StorageMemory:
	case StorageRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis_url required when storage is %q", StorageRedis)
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("database_url required when storage is %q", StoragePostgres)
		}
	default:
		return fmt.Errorf("invalid storage backend %q", c.Storage)
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	return nil
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
