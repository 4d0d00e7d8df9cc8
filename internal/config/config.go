package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Contact   ContactConfig
	RateLimit RateLimitConfig
	Blog      BlogConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// ContactConfig configures the mail-sending collaborator. FromAddress and
// ToAddress are both required for mail to be considered configured; their
// absence is a hard misconfiguration surfaced per-submission, not at startup.
type ContactConfig struct {
	FromAddress string
	ToAddress   string
	AWSRegion   string
}

// RateLimitConfig configures both limiters. ServiceURL and ServiceToken point
// at the distributed sliding-window service; when either is empty only the
// in-memory limiter runs.
type RateLimitConfig struct {
	Limit        int
	Window       time.Duration
	Capacity     int
	ServiceURL   string
	ServiceToken string
}

type BlogConfig struct {
	ContentDir string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Contact: ContactConfig{
			FromAddress: getEnv("CONTACT_FROM_ADDRESS", ""),
			ToAddress:   getEnv("CONTACT_TO_ADDRESS", ""),
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
		},
		RateLimit: RateLimitConfig{
			Limit:        getEnvAsInt("RATE_LIMIT_MAX", 5),
			Window:       getEnvAsDuration("RATE_LIMIT_WINDOW", 60*time.Second),
			Capacity:     getEnvAsInt("RATE_LIMIT_STORE_CAPACITY", 10_000),
			ServiceURL:   getEnv("RATE_LIMIT_REDIS_URL", ""),
			ServiceToken: getEnv("RATE_LIMIT_REDIS_TOKEN", ""),
		},
		Blog: BlogConfig{
			ContentDir: getEnv("BLOG_CONTENT_DIR", "content/blog"),
		},
	}

	if cfg.RateLimit.Limit <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX must be positive")
	}
	if cfg.RateLimit.Window <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}
	if cfg.RateLimit.Capacity <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_STORE_CAPACITY must be positive")
	}

	return cfg, nil
}

// Configured reports whether the mail collaborator has everything it needs.
func (c *ContactConfig) Configured() bool {
	return c.FromAddress != "" && c.ToAddress != ""
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
