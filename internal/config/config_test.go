package config_test

import (
	"testing"

	"github.com/kit2552/tadka-cms-final-sub001/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port == "" {
		t.Error("HTTP port should default")
	}
	if cfg.Scraper.RetryAttempts < 1 {
		t.Errorf("Default retry attempts should be at least 1, got %d", cfg.Scraper.RetryAttempts)
	}
}

func TestLoadRejectsNegativeIntEnv(t *testing.T) {
	cases := []string{"SCRAPER_RETRY_ATTEMPTS", "SCRAPER_PARALLELISM", "REDIS_POOL_SIZE"}

	for _, key := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "-1")
			if _, err := config.Load(); err == nil {
				t.Errorf("Negative %s should be rejected", key)
			}
		})
	}
}
