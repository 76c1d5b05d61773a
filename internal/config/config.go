package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sempreviva/dashboard/internal/database"
)

type Config struct {
	App struct {
		Name     string `envconfig:"APP_NAME" default:"Sempreviva"`
		Port     int    `envconfig:"PORT" default:"8080"`
		LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
		LogFile  string `envconfig:"LOG_FILE" default:"data/tui.log"`
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
		Path     string `envconfig:"DB_PATH" default:"data/sempreviva.db"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"sempreviva"`
	}

	Server struct {
		Timeout        time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		UploadMaxBytes int64         `envconfig:"UPLOAD_MAX_BYTES" default:"10485760"`
		AllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	}

	Insight struct {
		APIKey   string        `envconfig:"GEMINI_API_KEY"`
		Model    string        `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
		Timeout  time.Duration `envconfig:"INSIGHT_TIMEOUT" default:"15s"`
		CacheTTL time.Duration `envconfig:"INSIGHT_CACHE_TTL" default:"10m"`
		Every    time.Duration `envconfig:"INSIGHT_MIN_INTERVAL" default:"2s"`
	}

	Dashboard struct {
		SwapReversedRange bool `envconfig:"DASHBOARD_SWAP_REVERSED_RANGE" default:"false"`
	}
}

func (c *Config) Dialect() (database.Dialect, error) {
	return database.ParseDialect(c.DB.Driver)
}

// ConnectionString returns the DSN for the configured driver. For SQLite the
// parent directory of the database file is created if missing.
func (c *Config) ConnectionString() (string, error) {
	dialect, err := c.Dialect()
	if err != nil {
		return "", err
	}

	if dialect == database.DialectPostgres {
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name), nil
	}

	if dir := filepath.Dir(c.DB.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
	}

	return database.SQLiteDSN(c.DB.Path), nil
}

func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}

	return slog.LevelInfo
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if _, err := cfg.Dialect(); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
