package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dashmed/dashmed/internal/constants"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mail     MailConfig
	Security SecurityConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Port        string
	BaseURL     string
	Timeout     time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	Database     int
	Enabled      bool
	PoolSize     int
	MinIdleConns int
}

type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// When SMTP is unconfigured or fails, mails are written as .eml
	// files under this directory instead of being dropped.
	FallbackDir string
}

type SecurityConfig struct {
	SessionCookieName string
	SessionTTL        time.Duration
	CSRFTTL           time.Duration
	HealthDBKey       string
	// The legacy behaviour keeps the session alive after a password
	// change; flipping this forces a fresh login instead.
	ForceReauthOnPasswordChange bool
	ForgotPasswordMaxAttempts   int
	ForgotPasswordWindow        time.Duration
}

func LoadConfig() (*Config, error) {
	// .env is optional; deployments may set the variables directly.
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "dashmed"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			BaseURL:     getEnv("APP_BASE_URL", "http://localhost:8080"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			Timeout:     getEnvAsDuration("APP_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			Name:            getEnv("DB_NAME", "dashmed_db"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "postgres"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnvAsInt("REDIS_PORT", 6379),
			Password:     getEnv("REDIS_PASSWORD", ""),
			Database:     getEnvAsInt("REDIS_DB", 0),
			Enabled:      getEnvAsBool("REDIS_ENABLED", false),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 5),
		},
		Mail: MailConfig{
			Host:        getEnv("MAIL_HOST", ""),
			Port:        getEnvAsInt("MAIL_PORT", 587),
			Username:    getEnv("MAIL_USERNAME", ""),
			Password:    getEnv("MAIL_PASSWORD", ""),
			From:        getEnv("MAIL_FROM", "dashmed-site@alwaysdata.net"),
			FromName:    getEnv("MAIL_FROM_NAME", "DashMed"),
			FallbackDir: getEnv("MAIL_FALLBACK_DIR", "./storage/mails"),
		},
		Security: SecurityConfig{
			SessionCookieName:           getEnv("SESSION_COOKIE_NAME", "dashmed_session"),
			SessionTTL:                  getEnvAsDuration("SESSION_TTL", 12*time.Hour),
			CSRFTTL:                     getEnvAsDuration("CSRF_TTL", constants.CSRFDefaultTTL),
			HealthDBKey:                 getEnv("HEALTH_DB_KEY", ""),
			ForceReauthOnPasswordChange: getEnvAsBool("FORCE_REAUTH_ON_PASSWORD_CHANGE", false),
			ForgotPasswordMaxAttempts:   getEnvAsInt("FORGOT_PASSWORD_MAX_ATTEMPTS", 5),
			ForgotPasswordWindow:        getEnvAsDuration("FORGOT_PASSWORD_WINDOW", time.Hour),
		},
	}

	return config, nil
}

func (c *Config) DatabaseConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func (c *Config) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		boolValue, err := strconv.ParseBool(value)
		if err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
