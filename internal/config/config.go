package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	AdminAPIKey string

	OCRBaseURL        string
	OCRTimeoutSeconds int

	LedgerDifficulty      int
	LedgerSealTimeoutSecs int

	ReviewPolicyPath string

	VerifyCacheTTLSeconds int

	RateLimitRequests      int
	RateLimitWindowSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func FromEnv() Config {
	addr := os.Getenv("HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	return Config{
		HTTPAddr:               addr,
		PostgresDSN:            os.Getenv("POSTGRES_DSN"),
		LogLevel:               envDefault("LOG_LEVEL", "info"),
		AdminAPIKey:            os.Getenv("ADMIN_API_KEY"),
		OCRBaseURL:             os.Getenv("OCR_BASE_URL"),
		OCRTimeoutSeconds:      envIntDefault("OCR_TIMEOUT_SECONDS", 30),
		LedgerDifficulty:       envIntDefault("LEDGER_DIFFICULTY", 2),
		LedgerSealTimeoutSecs:  envIntDefault("LEDGER_SEAL_TIMEOUT_SECONDS", 10),
		ReviewPolicyPath:       os.Getenv("REVIEW_POLICY_PATH"),
		VerifyCacheTTLSeconds:  envIntDefault("VERIFY_CACHE_TTL_SECONDS", 300),
		RateLimitRequests:      envIntDefault("RATE_LIMIT_REQUESTS", 0),
		RateLimitWindowSeconds: envIntDefault("RATE_LIMIT_WINDOW_SECONDS", 60),
		RedisAddr:              os.Getenv("REDIS_ADDR"),
		RedisPassword:          os.Getenv("REDIS_PASSWORD"),
		RedisDB:                envIntDefault("REDIS_DB", 0),
	}
}

func (c Config) OCRTimeout() time.Duration {
	return time.Duration(c.OCRTimeoutSeconds) * time.Second
}

func (c Config) LedgerSealTimeout() time.Duration {
	return time.Duration(c.LedgerSealTimeoutSecs) * time.Second
}

func (c Config) VerifyCacheTTL() time.Duration {
	return time.Duration(c.VerifyCacheTTLSeconds) * time.Second
}

func (c Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func envDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envIntDefault(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
