// Package daemon loads configuration and wires the showup services together.
package daemon

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/showup-club/showup/internal/app/journey"
	"github.com/showup-club/showup/internal/domain"
	"github.com/showup-club/showup/internal/logger"
)

// ConfigFile is the config file name inside the home directory.
const ConfigFile = "config.toml"

// Config is the top-level showup configuration.
// Values come from DefaultConfig, then config.toml, then the environment.
type Config struct {
	API     APIConfig     `toml:"api"`
	Journey JourneyConfig `toml:"journey"`
	Fees    FeesConfig    `toml:"fees"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Host      string `toml:"host" env:"SHOWUP_API_HOST"`
	Port      int    `toml:"port" env:"SHOWUP_API_PORT"`
	JWTSecret string `toml:"jwt_secret" env:"SHOWUP_JWT_SECRET"`
	TokenTTL  string `toml:"token_ttl" env:"SHOWUP_TOKEN_TTL"`
	Metrics   bool   `toml:"metrics" env:"SHOWUP_METRICS"`
}

// JourneyConfig configures journey validation and the duration unit.
type JourneyConfig struct {
	DayLength       string   `toml:"day_length" env:"SHOWUP_DAY_LENGTH"`
	MaxDurationDays int64    `toml:"max_duration_days" env:"SHOWUP_MAX_DURATION_DAYS"`
	AllowedActions  []string `toml:"allowed_actions" env:"SHOWUP_ALLOWED_ACTIONS"`
	AllowedFormats  []string `toml:"allowed_formats" env:"SHOWUP_ALLOWED_FORMATS"`
}

// FeesConfig configures fee collection.
type FeesConfig struct {
	// GenesisBeneficiary receives fees until the role is first transferred.
	GenesisBeneficiary string `toml:"genesis_beneficiary" env:"SHOWUP_GENESIS_BENEFICIARY"`
}

// StorageConfig selects the store backend.
type StorageConfig struct {
	Driver string `toml:"driver" env:"SHOWUP_STORAGE_DRIVER"` // sqlite or memory
	Path   string `toml:"path" env:"SHOWUP_STORAGE_PATH"`     // data dir, default $SHOWUP_HOME/data
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `toml:"level" env:"SHOWUP_LOG_LEVEL"`
	Format string `toml:"format" env:"SHOWUP_LOG_FORMAT"`
	File   string `toml:"file" env:"SHOWUP_LOG_FILE"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Host:     "127.0.0.1",
			Port:     8420,
			TokenTTL: "24h",
			Metrics:  true,
		},
		Journey: JourneyConfig{
			DayLength:       "24h",
			MaxDurationDays: 3650,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Home returns the showup home directory: $SHOWUP_HOME or ~/.showup.
func Home() string {
	if h := os.Getenv("SHOWUP_HOME"); h != "" {
		return h
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".showup"
	}
	return filepath.Join(home, ".showup")
}

// LoadConfig reads home/config.toml (if present), loads home/.env into the
// environment without overriding variables already set, then applies
// SHOWUP_* environment overrides.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig()

	path := filepath.Join(home, ConfigFile)
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if err := godotenv.Load(filepath.Join(home, ".env")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("read .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(home, "data")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if _, err := c.JourneyEngineConfig(); err != nil {
		return err
	}
	if _, err := c.TokenTTL(); err != nil {
		return err
	}
	if _, err := c.GenesisBeneficiary(); err != nil {
		return err
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// JourneyEngineConfig converts the [journey] section for the engine.
func (c Config) JourneyEngineConfig() (journey.Config, error) {
	day, err := time.ParseDuration(c.Journey.DayLength)
	if err != nil {
		return journey.Config{}, fmt.Errorf("journey.day_length: %w", err)
	}
	if day <= 0 {
		return journey.Config{}, fmt.Errorf("journey.day_length: must be positive, got %s", day)
	}
	if c.Journey.MaxDurationDays < 0 {
		return journey.Config{}, fmt.Errorf("journey.max_duration_days: must not be negative")
	}
	return journey.Config{
		DayLength:       day,
		MaxDurationDays: c.Journey.MaxDurationDays,
		AllowedActions:  trimAll(c.Journey.AllowedActions),
		AllowedFormats:  trimAll(c.Journey.AllowedFormats),
	}, nil
}

// TokenTTL parses api.token_ttl.
func (c Config) TokenTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.API.TokenTTL)
	if err != nil || ttl <= 0 {
		return 0, fmt.Errorf("api.token_ttl: invalid duration %q", c.API.TokenTTL)
	}
	return ttl, nil
}

// GenesisBeneficiary parses fees.genesis_beneficiary. An empty value
// returns the empty identity and no error.
func (c Config) GenesisBeneficiary() (domain.Identity, error) {
	if c.Fees.GenesisBeneficiary == "" {
		return "", nil
	}
	id, err := domain.ParseIdentity(c.Fees.GenesisBeneficiary)
	if err != nil {
		return "", fmt.Errorf("fees.genesis_beneficiary: %w", err)
	}
	return id, nil
}

// Addr returns host:port for the HTTP listener.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.API.Host, c.API.Port)
}

func trimAll(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
