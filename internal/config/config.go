package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host            string
	Port            int
	GinMode         string // debug, release or test
	RedisURL        string // Optional, shares rate limit counters across instances
	RateLimitRPS    float64
	RateLimitBurst  int
	TrustedProxies  []string // Proxies allowed to set X-Forwarded-For; empty trusts none
	MaxBodyBytes    int64    // Upper bound for signup request bodies
	StaticDir       string   // Built site output served alongside the API
	MetricsEnabled  bool
	ShutdownTimeout time.Duration
	Logging         LoggingConfig
}

type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json or console
}

// Load reads configuration from the environment, after loading .env if present.
func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		Host:            getEnv("HOST", ""),
		Port:            getEnvInt("PORT", 8080),
		GinMode:         getEnv("GIN_MODE", "release"),
		RedisURL:        getEnv("REDIS_URL", ""),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 5),  // 5 signups per second per IP
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 10), // Allow bursts of 10
		TrustedProxies:  getEnvList("TRUSTED_PROXIES"),
		MaxBodyBytes:    int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		StaticDir:       getEnv("STATIC_DIR", "dist"),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS must not be negative, got %v", c.RateLimitRPS))
	}
	if c.RateLimitBurst < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must not be negative, got %d", c.RateLimitBurst))
	} else if c.RateLimitRPS > 0 && c.RateLimitBurst == 0 {
		errs = append(errs, errors.New("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled"))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes))
	}
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("GIN_MODE must be debug, release or test, got %q", c.GinMode))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RateLimitEnabled is false when RATE_LIMIT_RPS is zero.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitRPS > 0
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var values []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return boolValue
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
