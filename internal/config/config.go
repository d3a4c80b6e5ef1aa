package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // APP_TIMEZONE must resolve in slim containers

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	DatabaseURL string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBSSLMode   string
	DBLogLevel  string

	JWTSecret []byte
	JWTTTL    time.Duration

	RedisAddr    string
	MenuCacheTTL time.Duration

	LedgerWindow  int
	CommitTimeout time.Duration
	Location      *time.Location

	LogLevel string
}

// defaultJWTSecret is only meant for local development.
const defaultJWTSecret = "your-256-bit-secret"

// LoadEnv reads .env into the process environment. A missing file is not an
// error; the system environment is used as is.
func LoadEnv() bool {
	return godotenv.Load() == nil
}

// Load builds the Config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      getEnv("DB_NAME", "diza_food"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),
		DBLogLevel:  getEnv("DB_LOG_LEVEL", "warn"),
		JWTSecret:   []byte(getEnv("JWT_SECRET", defaultJWTSecret)),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.JWTTTL, err = getDuration("JWT_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.MenuCacheTTL, err = getDuration("MENU_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CommitTimeout, err = getDuration("COMMIT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.LedgerWindow, err = getInt("LEDGER_WINDOW", 100); err != nil {
		return nil, err
	}
	if cfg.LedgerWindow <= 0 {
		return nil, fmt.Errorf("config: LEDGER_WINDOW must be positive, got %d", cfg.LedgerWindow)
	}

	tz := getEnv("APP_TIMEZONE", "Local")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("config: APP_TIMEZONE %q: %w", tz, err)
	}

	return cfg, nil
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from
// the DB_* variables.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}
