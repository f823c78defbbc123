package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultAppName         = "LoanDesk"
	defaultAppEnv          = "development"
	defaultPort            = "5001"
	defaultLogLevel        = "info"
	defaultShutdownDelay   = 10 * time.Second
	defaultIdempotencyTTL  = 24 * time.Hour
	defaultCORSOrigins     = "*"
	defaultOTPCode         = "0000"
	defaultOTPLength       = 6
	idemTTLSecondsEnvVar   = "IDEMPOTENCY_TTL_SECONDS"
	idemTTLDurEnvVar       = "IDEMPOTENCY_TTL"
	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// OTPConfig holds the one-time-passcode policy knobs.
type OTPConfig struct {
	// Code is issued verbatim when set; otherwise random digits of Length are used.
	Code   string
	Length int
	// TTL of zero means challenges never expire.
	TTL           time.Duration
	SingleUse     bool
	StrictCompare bool
	// RequestsPerMinute limits request-otp per phone number; zero disables it.
	RequestsPerMinute int
}

// Config captures application runtime configuration loaded from environment variables.
type Config struct {
	AppName          string
	AppEnv           string
	Port             string
	LogLevel         string
	DatabaseURL      string
	RedisURL         string
	CORSAllowOrigins string
	ShutdownPeriod   time.Duration
	IdempotencyTTL   time.Duration
	OTP              OTPConfig
}

// Load reads configuration values from the environment and populates a Config
// instance. A .env file in the working directory is applied first when present;
// real environment variables take precedence.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv is Load without the .env lookup.
func FromEnv() (Config, error) {
	cfg := Config{
		AppName:          getEnv("APP_NAME", defaultAppName),
		AppEnv:           getEnv("APP_ENV", defaultAppEnv),
		Port:             getEnv("PORT", defaultPort),
		LogLevel:         strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		CORSAllowOrigins: getEnv("CORS_ALLOW_ORIGINS", defaultCORSOrigins),
		ShutdownPeriod:   defaultShutdownDelay,
		IdempotencyTTL:   defaultIdempotencyTTL,
		OTP: OTPConfig{
			Code:   defaultOTPCode,
			Length: defaultOTPLength,
		},
	}

	var err error
	if cfg.ShutdownPeriod, err = durationFromEnv(shutdownSecondsEnvVar, shutdownDurationEnvVar, cfg.ShutdownPeriod); err != nil {
		return Config{}, err
	}
	if cfg.IdempotencyTTL, err = durationFromEnv(idemTTLSecondsEnvVar, idemTTLDurEnvVar, cfg.IdempotencyTTL); err != nil {
		return Config{}, err
	}

	if v, ok := os.LookupEnv("OTP_CODE"); ok {
		cfg.OTP.Code = strings.TrimSpace(v)
	}
	if cfg.OTP.Length, err = intFromEnv("OTP_LENGTH", cfg.OTP.Length); err != nil {
		return Config{}, err
	}
	if cfg.OTP.TTL, err = durationFromEnv("", "OTP_TTL", 0); err != nil {
		return Config{}, err
	}
	if cfg.OTP.SingleUse, err = boolFromEnv("OTP_SINGLE_USE", false); err != nil {
		return Config{}, err
	}
	if cfg.OTP.StrictCompare, err = boolFromEnv("OTP_STRICT_COMPARE", false); err != nil {
		return Config{}, err
	}
	if cfg.OTP.RequestsPerMinute, err = intFromEnv("OTP_REQUESTS_PER_MINUTE", 0); err != nil {
		return Config{}, err
	}

	if cfg.OTP.Code == "" && cfg.OTP.Length <= 0 {
		return Config{}, fmt.Errorf("OTP_LENGTH must be positive when OTP_CODE is empty")
	}

	if !cfg.IsDev() {
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
		if cfg.RedisURL == "" {
			return Config{}, fmt.Errorf("REDIS_URL must be set when APP_ENV=%s", cfg.AppEnv)
		}
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

// IsDev reports whether in-memory stores are acceptable.
func (c Config) IsDev() bool {
	switch strings.ToLower(c.AppEnv) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// durationFromEnv prefers a whole-seconds variable over a Go duration string.
func durationFromEnv(secondsKey, durationKey string, fallback time.Duration) (time.Duration, error) {
	if secondsKey != "" {
		if v := os.Getenv(secondsKey); v != "" {
			seconds, err := strconv.Atoi(v)
			if err != nil {
				return 0, fmt.Errorf("invalid %s: %w", secondsKey, err)
			}
			return time.Duration(seconds) * time.Second, nil
		}
	}
	if v := os.Getenv(durationKey); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", durationKey, err)
		}
		return d, nil
	}
	return fallback, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}
