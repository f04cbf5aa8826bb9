package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DevJWTSecret signs tokens when JWT_SECRET is unset outside production.
const DevJWTSecret = "dev-only-jwt-secret"

type Config struct {
	Addr               string        `yaml:"addr"`
	DatabaseURL        string        `yaml:"database_url"`
	JWTSecret          string        `yaml:"jwt_secret"`
	SessionTTL         time.Duration `yaml:"session_ttl"`
	DataEncryptionKey  string        `yaml:"data_encryption_key"`
	Environment        string        `yaml:"environment"`
	DefaultLanguage    string        `yaml:"default_language"`
	LogLevel           string        `yaml:"log_level"`
	LogFormat          string        `yaml:"log_format"`
	SeedAdminUsername  string        `yaml:"seed_admin_username"`
	SeedAdminPassword  string        `yaml:"seed_admin_password"`
	SeedAdminName      string        `yaml:"seed_admin_name"`
	RunMigrations      bool          `yaml:"run_migrations"`
	RunSeed            bool          `yaml:"run_seed"`
	MaxBodyBytes       int64         `yaml:"max_body_bytes"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
	ListCacheSize      int           `yaml:"list_cache_size"`
	PDFFontPath        string        `yaml:"pdf_font_path"`
	MetricsEnabled     bool          `yaml:"metrics_enabled"`

	HousekeepingInterval time.Duration `yaml:"housekeeping_interval"`
	IdempotencyTTL       time.Duration `yaml:"idempotency_ttl"`
}

func Defaults() Config {
	return Config{
		Addr:               ":8080",
		JWTSecret:          DevJWTSecret,
		SessionTTL:         8 * time.Hour,
		Environment:        "development",
		DefaultLanguage:    "ar",
		LogLevel:           "info",
		LogFormat:          "json",
		SeedAdminName:      "HR Administrator",
		RunMigrations:      true,
		RunSeed:            true,
		MaxBodyBytes:       1048576,
		RateLimitPerMinute: 60,
		ListCacheSize:      1,
		MetricsEnabled:     true,

		HousekeepingInterval: time.Hour,
		IdempotencyTTL:       24 * time.Hour,
	}
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and the environment (including a local .env file), in that
// order of precedence.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.Addr = getEnv("APP_ADDR", cfg.Addr)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.SessionTTL = getEnvDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.DataEncryptionKey = getEnv("DATA_ENCRYPTION_KEY", cfg.DataEncryptionKey)
	cfg.Environment = getEnv("APP_ENV", cfg.Environment)
	cfg.DefaultLanguage = getEnv("DEFAULT_LANGUAGE", cfg.DefaultLanguage)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.SeedAdminUsername = getEnv("SEED_ADMIN_USERNAME", cfg.SeedAdminUsername)
	cfg.SeedAdminPassword = getEnv("SEED_ADMIN_PASSWORD", cfg.SeedAdminPassword)
	cfg.SeedAdminName = getEnv("SEED_ADMIN_NAME", cfg.SeedAdminName)
	cfg.RunMigrations = getEnvBool("RUN_MIGRATIONS", cfg.RunMigrations)
	cfg.RunSeed = getEnvBool("RUN_SEED", cfg.RunSeed)
	cfg.MaxBodyBytes = int64(getEnvInt("MAX_BODY_BYTES", int(cfg.MaxBodyBytes)))
	cfg.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.ListCacheSize = getEnvInt("LIST_CACHE_SIZE", cfg.ListCacheSize)
	cfg.PDFFontPath = getEnv("PDF_FONT_PATH", cfg.PDFFontPath)
	cfg.MetricsEnabled = getEnvBool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.HousekeepingInterval = getEnvDuration("HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval)
	cfg.IdempotencyTTL = getEnvDuration("IDEMPOTENCY_TTL", cfg.IdempotencyTTL)
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Environment == "production" {
		if strings.TrimSpace(c.JWTSecret) == "" || c.JWTSecret == DevJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
		}
		if strings.TrimSpace(c.DataEncryptionKey) == "" {
			return fmt.Errorf("DATA_ENCRYPTION_KEY must be set in production for encryption at rest")
		}
		if c.RunSeed && strings.TrimSpace(c.SeedAdminPassword) == "" {
			return fmt.Errorf("SEED_ADMIN_PASSWORD must be changed or RUN_SEED disabled in production")
		}
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET must not be empty")
	}
	if c.DefaultLanguage != "ar" && c.DefaultLanguage != "en" {
		return fmt.Errorf("DEFAULT_LANGUAGE must be ar or en")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.ListCacheSize < 0 {
		return fmt.Errorf("LIST_CACHE_SIZE must not be negative")
	}
	if c.HousekeepingInterval < 0 || c.IdempotencyTTL < 0 {
		return fmt.Errorf("HOUSEKEEPING_INTERVAL and IDEMPOTENCY_TTL must not be negative")
	}
	return nil
}
