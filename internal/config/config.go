package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Database struct {
	Driver   string // postgres, mysql or sqlite
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	Schema   string
	DSN      string // overrides the fields above when set
	LogLevel string
}

type Config struct {
	Port           int
	Database       Database
	JWTSecret      string
	SessionTTL     time.Duration
	AllowedOrigins []string
	RateLimitsFile string
	NATSURL        string
	NATSPrefix     string
}

// Load reads the environment, after merging a .env file if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Port: getEnvAsInt("PORT", 8080),
		Database: Database{
			Driver:   getEnv("DB_DRIVER", "postgres"),
			Host:     getEnv("BLUEPRINT_DB_HOST", "localhost"),
			Port:     getEnv("BLUEPRINT_DB_PORT", "5432"),
			Username: getEnv("BLUEPRINT_DB_USERNAME", ""),
			Password: getEnv("BLUEPRINT_DB_PASSWORD", ""),
			Name:     getEnv("BLUEPRINT_DB_DATABASE", ""),
			Schema:   getEnv("BLUEPRINT_DB_SCHEMA", ""),
			DSN:      getEnv("DB_DSN", ""),
			LogLevel: getEnv("DB_LOG_LEVEL", "warn"),
		},
		JWTSecret:      getEnv("JWT_SECRET", ""),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"https://*", "http://*"}),
		RateLimitsFile: getEnv("RATE_LIMITS_FILE", ""),
		NATSURL:        getEnv("NATS_URL", ""),
		NATSPrefix:     getEnv("NATS_SUBJECT_PREFIX", "todo"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return errors.New("DB_DRIVER must be one of postgres, mysql, sqlite")
	}
	if c.Database.Driver != "postgres" && c.Database.DSN == "" {
		return errors.New("DB_DSN is required for the " + c.Database.Driver + " driver")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	if valueStr != "" {
		log.Printf("Warning: invalid %s %q, using default %d", key, valueStr, defaultValue)
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
