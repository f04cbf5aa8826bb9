package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadLayersYAMLUnderEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "addr: \":9090\"\ndatabase_url: postgres://file\ndefault_language: en\nsession_ttl: 2h\nlist_cache_size: 0\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr from file, got %q", cfg.Addr)
	}
	if cfg.DatabaseURL != "postgres://env" {
		t.Fatalf("expected env to win over file, got %q", cfg.DatabaseURL)
	}
	if cfg.DefaultLanguage != "en" || cfg.SessionTTL != 2*time.Hour || cfg.ListCacheSize != 0 {
		t.Fatalf("unexpected file values: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: true},
		{name: "unknown language", mutate: func(c *Config) { c.DefaultLanguage = "fr" }, wantErr: true},
		{name: "production without secret", mutate: func(c *Config) { c.Environment = "production" }, wantErr: true},
		{name: "empty secret", mutate: func(c *Config) { c.JWTSecret = " " }, wantErr: true},
		{name: "negative cache", mutate: func(c *Config) { c.ListCacheSize = -1 }, wantErr: true},
		{name: "negative housekeeping", mutate: func(c *Config) { c.HousekeepingInterval = -time.Second }, wantErr: true},
		{name: "housekeeping disabled", mutate: func(c *Config) { c.HousekeepingInterval = 0 }},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.DatabaseURL = "postgres://localhost/hr"
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
