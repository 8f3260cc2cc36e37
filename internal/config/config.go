// Package config loads Shelfie server configuration from flags, environment
// variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/shelfieapp/shelfie-server/internal/logger"
)

// Storage drivers.
const (
	DriverSQLite = "sqlite"
	DriverBadger = "badger"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Storage   StorageConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // empty picks a format from the environment
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration // 0 keeps SSE streams open
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// StorageConfig selects and locates the document store.
type StorageConfig struct {
	Driver  string
	DataDir string
}

// DatabasePath returns the on-disk location for the configured driver.
func (s StorageConfig) DatabasePath() string {
	if s.Driver == DriverBadger {
		return filepath.Join(s.DataDir, "badger")
	}
	return filepath.Join(s.DataDir, "shelfie.db")
}

// SearchPath returns the location of the user search index.
func (s StorageConfig) SearchPath() string {
	return filepath.Join(s.DataDir, "search")
}

// AuthConfig holds session token configuration.
type AuthConfig struct {
	TokenDuration time.Duration
}

// RateLimitConfig bounds engagement writes per actor.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// RedisConfig configures the optional cross-instance event bus.
// An empty URL keeps event delivery in-process.
type RedisConfig struct {
	URL     string
	Channel string
}

// Enabled reports whether a Redis URL was configured.
func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

// LoadConfig loads configuration with precedence:
// command-line flag, environment variable, .env file, default.
func LoadConfig() (*Config, error) {
	return load(flag.CommandLine, os.Args[1:])
}

func load(fs *flag.FlagSet, args []string) (*Config, error) {
	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, pretty)")
	port := fs.String("port", "", "HTTP port (default: 5001)")
	dataDir := fs.String("data-dir", "", "Directory for database, search index and keys")
	driver := fs.String("db-driver", "", "Storage driver (sqlite, badger)")
	origins := fs.String("cors-origins", "", "Comma separated list of allowed CORS origins")
	redisURL := fs.String("redis-url", "", "Redis URL for the cross-instance event bus")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load env file %s: %w", *envFile, err)
	}

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "SHELFIE_ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*port, "PORT", "5001"),
			AllowedOrigins: splitList(getConfigValue(*origins, "CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Storage: StorageConfig{
			Driver:  strings.ToLower(getConfigValue(*driver, "DB_DRIVER", DriverSQLite)),
			DataDir: getConfigValue(*dataDir, "DATA_DIR", ""),
		},
		RateLimit: RateLimitConfig{
			RPS:   getFloatConfigValue("", "RATE_LIMIT_RPS", 2),
			Burst: getIntConfigValue("", "RATE_LIMIT_BURST", 10),
		},
		Redis: RedisConfig{
			URL:     getConfigValue(*redisURL, "REDIS_URL", ""),
			Channel: getConfigValue("", "REDIS_CHANNEL", "shelfie:events"),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue("SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue("SERVER_WRITE_TIMEOUT", "0s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue("SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenDuration, err = getDurationConfigValue("TOKEN_DURATION", "720h"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataDir(); err != nil {
		return nil, fmt.Errorf("invalid data dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are usable.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	if !logger.ValidLevel(c.Logger.Level) {
		return fmt.Errorf("invalid log level: %q (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", logger.FormatJSON, logger.FormatPretty:
	default:
		return fmt.Errorf("invalid log format: %q (must be json or pretty)", c.Logger.Format)
	}

	switch c.Storage.Driver {
	case DriverSQLite, DriverBadger:
	default:
		return fmt.Errorf("invalid storage driver: %q (must be sqlite or badger)", c.Storage.Driver)
	}

	if c.Storage.DataDir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	if p, err := strconv.Atoi(c.Server.Port); err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid port: %q", c.Server.Port)
	}

	if c.Auth.TokenDuration <= 0 {
		return errors.New("token duration must be positive")
	}

	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 1 {
		return errors.New("rate limit must allow at least one request")
	}

	return nil
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (c *Config) expandDataDir() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	expanded, err := expandPath(c.Storage.DataDir, filepath.Join(home, ".shelfie"))
	if err != nil {
		return err
	}
	c.Storage.DataDir = expanded
	return nil
}

// expandPath expands a leading ~ and makes the path absolute.
// An empty path yields defaultPath.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = abs
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return defaultValue
}

func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	v := getConfigValue(flagValue, envKey, "")
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	v := getConfigValue(flagValue, envKey, "")
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getDurationConfigValue(envKey, defaultValue string) (time.Duration, error) {
	v := getConfigValue("", envKey, defaultValue)
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, v, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
