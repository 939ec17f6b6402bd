package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.ProductServicePort != 8081 {
		t.Fatalf("expected default product port 8081, got %d", cfg.ProductServicePort)
	}
	if cfg.EventRetention != 5*time.Minute {
		t.Fatalf("expected default retention 5m, got %s", cfg.EventRetention)
	}
	if cfg.EmailMaxRetries != 3 {
		t.Fatalf("expected default max retries 3, got %d", cfg.EmailMaxRetries)
	}
	if cfg.DedupTTL <= cfg.CacheTTL {
		t.Fatalf("dedup claims must outlive the read cache: dedup %s, cache %s",
			cfg.DedupTTL, cfg.CacheTTL)
	}
	if cfg.EventExchange != "ecommerce.events" {
		t.Fatalf("unexpected exchange: %q", cfg.EventExchange)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("EVENT_RETENTION", "48h")
	t.Setenv("EMAIL_MAX_RETRIES", "5")
	t.Setenv("POSTGRES_HOST", "db.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.EventRetention != 48*time.Hour {
		t.Fatalf("expected 48h retention, got %s", cfg.EventRetention)
	}
	if cfg.EmailMaxRetries != 5 {
		t.Fatalf("expected 5 retries, got %d", cfg.EmailMaxRetries)
	}
	if cfg.PostgresHost != "db.internal" {
		t.Fatalf("expected overridden host, got %q", cfg.PostgresHost)
	}
}
