package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

const (
	BackendCSV      = "csv"
	BackendMemory   = "memory"
	BackendBolt     = "bolt"
	BackendPostgres = "postgres"
)

type Config struct {
	ServerPort      string        `validate:"required,numeric"`
	StoreBackend    string        `validate:"oneof=csv memory bolt postgres"`
	CSVPath         string        `validate:"required_if=StoreBackend csv"`
	BoltPath        string        `validate:"required_if=StoreBackend bolt"`
	DatabaseURL     string        `validate:"required_if=StoreBackend postgres"`
	CORSAllowOrigin string        `validate:"required"`
	ShutdownTimeout time.Duration `validate:"gt=0"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
}

// fileConfig mirrors Config as it appears in the optional TOML file.
type fileConfig struct {
	ServerPort      string `toml:"server_port"`
	StoreBackend    string `toml:"store_backend"`
	CSVPath         string `toml:"csv_path"`
	BoltPath        string `toml:"bolt_path"`
	DatabaseURL     string `toml:"database_url"`
	CORSAllowOrigin string `toml:"cors_allow_origin"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	LogLevel        string `toml:"log_level"`
}

var validate = validator.New()

// Load builds the configuration from defaults, the TOML file named by
// CONFIG_FILE (if any) and environment variables, in increasing priority.
func Load() (*Config, error) {
	fc := fileConfig{
		ServerPort:      "8080",
		StoreBackend:    BackendCSV,
		CSVPath:         "keywords.csv",
		BoltPath:        "keywords.db",
		CORSAllowOrigin: "*",
		ShutdownTimeout: "10s",
		LogLevel:        "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := readFile(path, &fc); err != nil {
			return nil, err
		}
	}

	defaultTimeout, err := time.ParseDuration(fc.ShutdownTimeout)
	if err != nil {
		return nil, fmt.Errorf("shutdown_timeout %q: %w", fc.ShutdownTimeout, err)
	}

	cfg := &Config{
		ServerPort:      getEnv("SERVER_PORT", fc.ServerPort),
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", fc.StoreBackend)),
		CSVPath:         getEnv("KEYWORD_CSV_PATH", fc.CSVPath),
		BoltPath:        getEnv("BOLT_PATH", fc.BoltPath),
		DatabaseURL:     getEnv("DATABASE_URL", fc.DatabaseURL),
		CORSAllowOrigin: getEnv("CORS_ALLOW_ORIGIN", fc.CORSAllowOrigin),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", defaultTimeout),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", fc.LogLevel)),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid field in one error.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), validationMessage(fe)))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// SlogLevel maps LogLevel onto slog levels. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func readFile(path string, fc *fileConfig) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := toml.Unmarshal(content, fc); err != nil {
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			row, col := derr.Position()
			return fmt.Errorf("parse %s at %d:%d: %s", path, row, col, derr.Error())
		}
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "numeric":
		return "must be numeric"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration for env var, using default",
			"key", key, "value", v, "default", fallback)
		return fallback
	}
	return d
}
