package daemon

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/showup-club/showup/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want %q", cfg.API.Host, "127.0.0.1")
	}
	if cfg.API.Port != 8420 {
		t.Errorf("API.Port = %d, want %d", cfg.API.Port, 8420)
	}
	if !cfg.API.Metrics {
		t.Error("API.Metrics should be true by default")
	}
	if cfg.Journey.DayLength != "24h" {
		t.Errorf("Journey.DayLength = %q, want %q", cfg.Journey.DayLength, "24h")
	}
	if cfg.Journey.MaxDurationDays != 3650 {
		t.Errorf("Journey.MaxDurationDays = %d, want 3650", cfg.Journey.MaxDurationDays)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Fees.GenesisBeneficiary != "" {
		t.Error("no genesis beneficiary should be set by default")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	cfg, err := LoadConfig(home)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Storage.Path != filepath.Join(home, "data") {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	jc, err := cfg.JourneyEngineConfig()
	if err != nil {
		t.Fatal(err)
	}
	if jc.DayLength != 24*time.Hour {
		t.Errorf("DayLength = %v", jc.DayLength)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadConfig_FileEnvAndDotenv(t *testing.T) {
	home := t.TempDir()
	writeFile(t, filepath.Join(home, ConfigFile), `
[api]
port = 9000
jwt_secret = "from-file"

[journey]
day_length = "1h"
allowed_actions = ["run", " read "]

[fees]
genesis_beneficiary = "0x0E0E0E0E0E0E0E0E0E0E0E0E0E0E0E0E0E0E0E0E"

[storage]
driver = "memory"
`)
	writeFile(t, filepath.Join(home, ".env"), "SHOWUP_LOG_LEVEL=debug\n")
	t.Setenv("SHOWUP_API_PORT", "9100")
	t.Cleanup(func() { os.Unsetenv("SHOWUP_LOG_LEVEL") })

	cfg, err := LoadConfig(home)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.API.Port != 9100 {
		t.Errorf("env override: API.Port = %d, want 9100", cfg.API.Port)
	}
	if cfg.API.JWTSecret != "from-file" {
		t.Errorf("API.JWTSecret = %q", cfg.API.JWTSecret)
	}
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("unset key lost its default: API.Host = %q", cfg.API.Host)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf(".env: Log.Level = %q, want debug", cfg.Log.Level)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("Storage.Driver = %q", cfg.Storage.Driver)
	}

	jc, _ := cfg.JourneyEngineConfig()
	if jc.DayLength != time.Hour {
		t.Errorf("DayLength = %v, want 1h", jc.DayLength)
	}
	if strings.Join(jc.AllowedActions, ",") != "run,read" {
		t.Errorf("AllowedActions = %q", jc.AllowedActions)
	}

	genesis, err := cfg.GenesisBeneficiary()
	if err != nil {
		t.Fatal(err)
	}
	if genesis != domain.MustIdentity("0x0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e0e") {
		t.Errorf("genesis = %s", genesis)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   string
	}{
		{"bad day length", func(c *Config) { c.Journey.DayLength = "soon" }, "journey.day_length"},
		{"zero day length", func(c *Config) { c.Journey.DayLength = "0s" }, "journey.day_length"},
		{"bad token ttl", func(c *Config) { c.API.TokenTTL = "-1h" }, "api.token_ttl"},
		{"bad genesis", func(c *Config) { c.Fees.GenesisBeneficiary = "abcde" }, "fees.genesis_beneficiary"},
		{"bad driver", func(c *Config) { c.Storage.Driver = "postgres" }, "storage.driver"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestHome(t *testing.T) {
	t.Setenv("SHOWUP_HOME", "/srv/showup")
	if Home() != "/srv/showup" {
		t.Errorf("Home() = %q", Home())
	}
}
