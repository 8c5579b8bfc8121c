package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	HTTP        HTTPConfig
	Redis       RedisConfig
	Scraper     ScraperConfig
	Log         LogConfig

	AgentCatalogPath string
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	URL          string
	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type ScraperConfig struct {
	UserAgent      string
	RequestTimeout time.Duration
	RetryAttempts  int
	Parallelism    int
	Delay          time.Duration
}

type LogConfig struct {
	Level    string
	Format   string
	Output   string
	FilePath string
}

func Load() (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	poolSize, err := intEnv("REDIS_POOL_SIZE", 20)
	if err != nil {
		return nil, err
	}
	retryAttempts, err := intEnv("SCRAPER_RETRY_ATTEMPTS", 3)
	if err != nil {
		return nil, err
	}
	parallelism, err := intEnv("SCRAPER_PARALLELISM", 2)
	if err != nil {
		return nil, err
	}

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		HTTP: HTTPConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		Redis: RedisConfig{
			URL:          getEnv("REDIS_URL", "redis://localhost:6379/0"),
			PoolSize:     poolSize,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Scraper: ScraperConfig{
			UserAgent:      getEnv("SCRAPER_USER_AGENT", "TadkaCMS-Agent/1.0 (+https://tadka.example.com/bot)"),
			RequestTimeout: 60 * time.Second,
			RetryAttempts:  retryAttempts,
			Parallelism:    parallelism,
			Delay:          2 * time.Second,
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "json"),
			Output:   getEnv("LOG_OUTPUT", "stdout"),
			FilePath: getEnv("LOG_FILE_PATH", "logs/agents.log"),
		},
		AgentCatalogPath: getEnv("AGENT_CATALOG_PATH", "agents.yaml"),
	}, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative, got %d", key, value)
	}
	return value, nil
}
