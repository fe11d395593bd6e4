// Package config loads settings from the TOML config file, then lets
// HABITHERO_* environment variables (and an optional .env file) override them.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/gamification"
	"github.com/julianstephens/habithero/internal/logger"
	"github.com/julianstephens/habithero/internal/models"
	"github.com/julianstephens/habithero/internal/period"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "HABITHERO_"

type Config struct {
	// Database is a SQLite file path or a PostgreSQL connection string.
	Database string `toml:"database" env:"DATABASE"`
	Profile  string `toml:"profile" env:"PROFILE"`
	Timezone string `toml:"timezone" env:"TIMEZONE"`
	DataDir  string `toml:"data_dir" env:"DATA_DIR"`
	Debug    bool   `toml:"debug" env:"DEBUG"`
	Quotes   bool   `toml:"quotes" env:"QUOTES"`

	Lock   LockConfig   `toml:"lock" envPrefix:"LOCK_"`
	Backup BackupConfig `toml:"backup" envPrefix:"BACKUP_"`

	// Badges replaces the built-in badge catalog when not empty.
	Badges []gamification.Rule `toml:"badges,omitempty"`
}

type LockConfig struct {
	Backend   string `toml:"backend" env:"BACKEND"` // "local" or "redis"
	RedisAddr string `toml:"redis_addr" env:"REDIS_ADDR"`
	RedisDB   int    `toml:"redis_db" env:"REDIS_DB"`
	// Only read from the environment so it never lands in the file.
	RedisPassword string `toml:"-" env:"REDIS_PASSWORD"`
	Timeout       string `toml:"timeout" env:"TIMEOUT"`
}

type BackupConfig struct {
	Enabled bool `toml:"enabled" env:"ENABLED"`
	Keep    int  `toml:"keep" env:"KEEP"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Database: constants.DefaultDBPath,
		Profile:  constants.DefaultProfile,
		Timezone: "Local",
		DataDir:  constants.DefaultDataDir,
		Quotes:   true,
		Lock: LockConfig{
			Backend: constants.LockBackendLocal,
			Timeout: constants.DefaultLockTimeout.String(),
		},
		Backup: BackupConfig{
			Enabled: true,
			Keep:    constants.MaxBackups,
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from r on top of the defaults.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("Ignoring unknown config key", "key", key.String())
	}
	return cfg, nil
}

// Write encodes cfg to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// Load reads path (defaults when it does not exist), applies .env and
// environment overrides, expands ~ and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	path = ExpandPath(path)
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		m := &Manager{}
		cfg, err = m.Read(f)
		if err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		logger.Debug("No config file, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	if err := env.Parse(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	cfg.Database = ExpandPath(cfg.Database)
	cfg.DataDir = ExpandPath(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadDotEnv loads .env from the working directory if there is one.
// Variables already set in the environment win.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env file: %w", err)
	}
	return nil
}

// Validate checks every setting that can be checked without connecting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("database cannot be empty")
	}
	if strings.TrimSpace(c.Profile) == "" {
		return fmt.Errorf("profile cannot be empty")
	}
	if _, err := period.LoadLocation(c.Timezone); err != nil {
		return err
	}

	switch c.Lock.Backend {
	case constants.LockBackendLocal:
	case constants.LockBackendRedis:
		if c.Lock.RedisAddr == "" {
			return fmt.Errorf("lock.redis_addr is required for the redis lock backend")
		}
	default:
		return fmt.Errorf("unknown lock backend %q (expected %s or %s)", c.Lock.Backend, constants.LockBackendLocal, constants.LockBackendRedis)
	}
	if _, err := c.LockTimeout(); err != nil {
		return err
	}

	if c.Backup.Keep < 1 {
		return fmt.Errorf("backup.keep must be at least 1")
	}

	if _, err := c.Catalog(); err != nil {
		return fmt.Errorf("invalid badge catalog: %w", err)
	}
	return nil
}

// IsPostgres reports whether Database is a PostgreSQL connection string or
// points at one stored in the keyring.
func (c *Config) IsPostgres() bool {
	return c.Database == constants.DatabaseFromKeyring || IsPostgresURL(c.Database)
}

func IsPostgresURL(s string) bool {
	return strings.HasPrefix(s, "postgres://") || strings.HasPrefix(s, "postgresql://")
}

func (c *Config) Location() (*time.Location, error) {
	return period.LoadLocation(c.Timezone)
}

func (c *Config) LockTimeout() (time.Duration, error) {
	if c.Lock.Timeout == "" {
		return constants.DefaultLockTimeout, nil
	}
	d, err := time.ParseDuration(c.Lock.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid lock.timeout %q: %w", c.Lock.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("lock.timeout must be positive")
	}
	return d, nil
}

// Catalog compiles the configured badges, or returns the built-in catalog.
func (c *Config) Catalog() ([]models.Badge, error) {
	if len(c.Badges) == 0 {
		return gamification.DefaultCatalog(), nil
	}
	return gamification.BuildCatalog(c.Badges)
}

// Init writes cfg to path. It fails if the file already exists.
func Init(path string, cfg *Config) error {
	path = ExpandPath(path)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
// Connection strings are returned unchanged.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
