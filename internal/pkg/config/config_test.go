package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("unexpected port: %s", cfg.Port)
	}
	if cfg.Store.Backend != BackendMemory || cfg.Store.KeyPrefix != "lumina_" {
		t.Fatalf("unexpected store config: %+v", cfg.Store)
	}
	if cfg.Ledger.SignupBonus != 10 || cfg.Ledger.DailyReward != 5 || cfg.Ledger.AdminCoins != 99999 {
		t.Fatalf("unexpected ledger config: %+v", cfg.Ledger)
	}
	if cfg.Pricing.Generate != 1 || cfg.Pricing.Edit != 1 || cfg.Pricing.Analyze != 1 {
		t.Fatalf("unexpected pricing: %+v", cfg.Pricing)
	}
	if cfg.Admin.RefreshInterval != 5*time.Second {
		t.Fatalf("unexpected refresh interval: %v", cfg.Admin.RefreshInterval)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":     "s3cret",
		"STORE_BACKEND":  "redis",
		"PRICE_GENERATE": "3",
		"TIMEZONE":       "Asia/Kolkata",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.Backend != BackendRedis || cfg.Pricing.Generate != 3 {
		t.Fatalf("overrides not applied: %+v %+v", cfg.Store, cfg.Pricing)
	}
	if cfg.Location().String() != "Asia/Kolkata" {
		t.Fatalf("unexpected location: %s", cfg.Location())
	}
}

func TestLoadWith_RejectsUnknownBackend(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":    "s3cret",
		"STORE_BACKEND": "sqlite",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}

func TestLoadWith_JWTSecret(t *testing.T) {
	if _, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}

	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":        "production",
		"JWT_SECRET": "change-me",
	}))
	if err == nil {
		t.Fatalf("expected placeholder secret to be rejected in production")
	}

	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "change-me",
	}))
	if err != nil {
		t.Fatalf("placeholder secret should load in development: %v", err)
	}
	if cfg.JWTSecret != "change-me" {
		t.Fatalf("unexpected secret: %q", cfg.JWTSecret)
	}
}
