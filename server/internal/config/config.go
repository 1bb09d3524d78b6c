package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zhaobenny/stayboard/internal/parser"
	"github.com/zhaobenny/stayboard/internal/report"
	"gopkg.in/yaml.v3"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Config holds the server configuration
type Config struct {
	Port            string         `yaml:"port"`
	SessionStore    string         `yaml:"session_store"`
	DBPath          string         `yaml:"db_path"`
	SessionLifetime time.Duration  `yaml:"session_lifetime"`
	SecureCookies   bool           `yaml:"secure_cookies"`
	MaxUploadBytes  int64          `yaml:"max_upload_bytes"`
	UploadRate      float64        `yaml:"upload_rate"` // uploads per second per client
	UploadBurst     int            `yaml:"upload_burst"`
	InputEncoding   string         `yaml:"input_encoding"`
	Columns         parser.Columns `yaml:"columns"`
	CurrencyUnit    string         `yaml:"currency_unit"`
	DayUnit         string         `yaml:"day_unit"`
	LogLevel        string         `yaml:"log_level"`
	LogFormat       string         `yaml:"log_format"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Port:            "8080",
		SessionStore:    StoreMemory,
		DBPath:          "./stayboard.db",
		SessionLifetime: 12 * time.Hour,
		MaxUploadBytes:  32 << 20,
		UploadRate:      1,
		UploadBurst:     5,
		InputEncoding:   string(parser.EncodingAuto),
		Columns:         parser.DefaultColumns(),
		CurrencyUnit:    report.DefaultCurrencyUnit,
		DayUnit:         report.DefaultDayUnit,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when it does not exist), then a .env file, then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.SessionStore = getEnv("SESSION_STORE", cfg.SessionStore)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.SessionLifetime = getEnvDuration("SESSION_LIFETIME", cfg.SessionLifetime)
	cfg.SecureCookies = getEnvBool("SECURE_COOKIES", cfg.SecureCookies)
	cfg.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.UploadRate = getEnvFloat("UPLOAD_RATE", cfg.UploadRate)
	cfg.UploadBurst = getEnvInt("UPLOAD_BURST", cfg.UploadBurst)
	cfg.InputEncoding = getEnv("INPUT_ENCODING", cfg.InputEncoding)
	cfg.CurrencyUnit = getEnv("CURRENCY_UNIT", cfg.CurrencyUnit)
	cfg.DayUnit = getEnv("DAY_UNIT", cfg.DayUnit)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	cfg.Columns = cfg.Columns.Merge(parser.DefaultColumns())

	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.SessionStore {
	case StoreMemory:
	case StoreSQLite:
		if c.DBPath == "" {
			errs = append(errs, "db_path cannot be empty when using the sqlite session store")
		}
	default:
		errs = append(errs, fmt.Sprintf("invalid session store '%s': must be one of [%s %s]", c.SessionStore, StoreMemory, StoreSQLite))
	}

	if c.SessionLifetime < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid session lifetime %v: must be at least 1 minute", c.SessionLifetime))
	}
	if c.MaxUploadBytes < 1 {
		errs = append(errs, fmt.Sprintf("invalid max upload size %d: must be positive", c.MaxUploadBytes))
	}
	if c.UploadRate <= 0 {
		errs = append(errs, fmt.Sprintf("invalid upload rate %v: must be positive", c.UploadRate))
	}
	if c.UploadBurst < 1 {
		errs = append(errs, fmt.Sprintf("invalid upload burst %d: must be at least 1", c.UploadBurst))
	}
	if _, err := parser.ParseEncoding(c.InputEncoding); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

// Level returns the configured slog level
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level '%s'", c.LogLevel)
	}
	return level, nil
}

// Encoding returns the parsed input encoding, defaulting to auto
func (c *Config) Encoding() parser.Encoding {
	enc, err := parser.ParseEncoding(c.InputEncoding)
	if err != nil {
		return parser.EncodingAuto
	}
	return enc
}

// NewLogger builds the slog logger described by the configuration
func (c *Config) NewLogger() *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
