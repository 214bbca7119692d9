package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")
	t.Setenv("DELIVERY_BATCH_SIZE", "")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,")

	cfg := Load()

	if cfg.JWTAccessTTL != 24*time.Hour {
		t.Fatalf("expected 24h fallback, got %s", cfg.JWTAccessTTL)
	}
	if cfg.DeliveryBatchSize != 100 {
		t.Fatalf("expected batch size 100, got %d", cfg.DeliveryBatchSize)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %#v", cfg.AllowedOrigins)
	}
}

func TestReminderClock(t *testing.T) {
	cfg := &Config{ReminderRunAt: "07:45"}
	if h, m := cfg.ReminderClock(); h != 7 || m != 45 {
		t.Fatalf("expected 07:45, got %02d:%02d", h, m)
	}

	cfg.ReminderRunAt = "late"
	if h, m := cfg.ReminderClock(); h != 8 || m != 0 {
		t.Fatalf("expected 08:00 fallback, got %02d:%02d", h, m)
	}
}
