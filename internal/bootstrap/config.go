package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/caps24escola/pixel-world/internal/domain"
	"github.com/caps24escola/pixel-world/internal/dto"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds the settings loaded from the environment.
type Config struct {
	ServerPort           string
	LogLevel             string
	AppEnv               string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	KeyPrefix            string
	RateLimitMax         int
	RateLimitWindow      time.Duration
	SessionTTL           time.Duration
	SessionIdleTimeout   time.Duration
	SessionSweepSchedule string
	CORSAllowedOrigin    string
	DefaultColor         domain.Color
}

// LoadConfig reads the configuration from the environment, loading .env first
// when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort:           getEnv("SERVER_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		AppEnv:               getEnv("APP_ENV", "development"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		KeyPrefix:            getEnv("REDIS_KEY_PREFIX", "px:"),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 1m"),
		CORSAllowedOrigin:    getEnv("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
		DefaultColor:         domain.Color(getEnv("DEFAULT_COLOR", string(domain.DefaultColor))),
	}

	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax, err = getInt("RATE_LIMIT_MAX", 100); err != nil {
		return nil, err
	}
	if cfg.RateLimitWindow, err = getDuration("RATE_LIMIT_WINDOW", time.Second); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionIdleTimeout, err = getDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.RateLimitMax <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive, got %d", cfg.RateLimitMax)
	}
	if err := dto.ValidateColor(string(cfg.DefaultColor)); err != nil {
		return nil, fmt.Errorf("DEFAULT_COLOR %q is not a hex color: %w", cfg.DefaultColor, err)
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}
