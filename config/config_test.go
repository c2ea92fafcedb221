package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("API_URL", "http://api.example.com/api/")
	t.Setenv("SESSION_EXPIRATION", "")

	cfg := Load("does-not-exist.env")

	if cfg.Server.Port != "8080" {
		t.Errorf("Server.Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "http://api.example.com/api" {
		t.Errorf("API.BaseURL = %q, trailing slash should be trimmed", cfg.API.BaseURL)
	}
	if cfg.Session.Backend != SessionBackendMemory {
		t.Errorf("Session.Backend = %q, want memory", cfg.Session.Backend)
	}
	if cfg.Session.ExpirationDuration() != 24*time.Hour {
		t.Errorf("ExpirationDuration = %s, want 24h", cfg.Session.ExpirationDuration())
	}
}

func TestLoad_FluentWithoutHostIsDisabled(t *testing.T) {
	t.Setenv("FLUENTBIT_ENABLED", "true")
	t.Setenv("FLUENTBIT_HOST", "")

	cfg := Load("does-not-exist.env")
	if cfg.Log.FluentEnabled {
		t.Error("fluent logging should be disabled when FLUENTBIT_HOST is empty")
	}
}

func TestLoad_AllowedOrigins(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,")

	cfg := Load("does-not-exist.env")
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Fatalf("AllowedOrigins = %v, want 2 entries", cfg.Server.AllowedOrigins)
	}
	if cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("AllowedOrigins[1] = %q", cfg.Server.AllowedOrigins[1])
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := c.ConnectionString(); got != want {
		t.Errorf("ConnectionString() = %q, want %q", got, want)
	}
}
