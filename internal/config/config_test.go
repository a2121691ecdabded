package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every key so the host environment cannot leak in; viper
// treats an empty variable as unset and falls back to the default.
func clearEnv(t *testing.T) {
	t.Helper()
	for k := range defaults {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env != "dev" || cfg.HTTPPort != "8080" || cfg.StorageDriver != "postgres" {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.SessionTTL != 30*time.Minute || cfg.SweepSpec != "@every 1m" {
		t.Fatalf("session settings=%s %q", cfg.SessionTTL, cfg.SweepSpec)
	}
	if cfg.PINStorage != "bcrypt" || cfg.RateRPS != 100 || cfg.WorkerCount != 4 || cfg.Migrate {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.JWTIssuer != "atm-backend" || cfg.RabbitMQURL != "" || cfg.AdminAPIKey != "" {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "prod")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/atm")
	t.Setenv("APP_MIGRATE", "true")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("SESSION_SWEEP_SPEC", "@every 30s")
	t.Setenv("RATE_RPS", "7")
	t.Setenv("PIN_STORAGE", "plain")
	t.Setenv("WORKER_COUNT", "2")
	t.Setenv("ADMIN_API_KEY", "k")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		Env:           "prod",
		HTTPPort:      "9090",
		DatabaseURL:   "postgres://u:p@db:5432/atm",
		StorageDriver: "postgres",
		Migrate:       true,
		JWTSecret:     "prod-secret",
		JWTIssuer:     "atm-backend",
		SessionTTL:    5 * time.Minute,
		SweepSpec:     "@every 30s",
		RateRPS:       7,
		PINStorage:    "plain",
		WorkerCount:   2,
		AdminAPIKey:   "k",
	}
	if cfg != want {
		t.Fatalf("cfg=%+v\nwant %+v", cfg, want)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "sqlite"}, "STORAGE_DRIVER"},
		{"negative ttl", map[string]string{"SESSION_TTL": "-1m"}, "SESSION_TTL"},
		{"unknown pin storage", map[string]string{"PIN_STORAGE": "md5"}, "PIN_STORAGE"},
		{"zero ttl", map[string]string{"SESSION_TTL": "0s"}, "SESSION_TTL"},
		{"dev secret in prod", map[string]string{"APP_ENV": "prod", "JWT_SECRET": devJWTSecret}, "JWT_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err=%v want mention of %s", err, tt.wantErr)
			}
		})
	}
}
