// Package config loads the optional TOML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/julianstephens/habitquest/internal/constants"
	"github.com/julianstephens/habitquest/internal/logger"
	"github.com/julianstephens/habitquest/internal/utils"
)

// Config is the content of config.toml
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Logging LoggingConfig `toml:"logging"`
	Server  ServerConfig  `toml:"server"`
	Day     DayConfig     `toml:"day"`
}

// StorageConfig selects the database. Path is a SQLite file or a PostgreSQL
// connection string without credentials.
type StorageConfig struct {
	Path string `toml:"path"`
}

type LoggingConfig struct {
	Debug bool `toml:"debug"`
}

// ServerConfig configures the read-only status server
type ServerConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// DayConfig controls how wall clock time maps to day indexes. Values here
// override the settings stored in the database.
type DayConfig struct {
	Timezone     string `toml:"timezone"`
	RolloverHour *int   `toml:"rollover_hour"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{Path: constants.DefaultDBPath},
		Server: ServerConfig{
			Addr:    constants.DefaultServerAddr,
			Metrics: true,
		},
	}
}

// Load reads the file at path on top of the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	path = ExpandPath(path)

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		logger.Warn("Unknown config key ignored", "key", key.String(), "file", path)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be fixed up silently
func (c Config) Validate() error {
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage.path cannot be empty")
	}
	if c.Day.Timezone != "" && !utils.ValidateTimezone(c.Day.Timezone) {
		return fmt.Errorf("day.timezone %q is not a valid IANA timezone", c.Day.Timezone)
	}
	if c.Day.RolloverHour != nil && !utils.ValidateRolloverHour(*c.Day.RolloverHour) {
		return fmt.Errorf("day.rollover_hour must be between 0 and 23, got %d", *c.Day.RolloverHour)
	}
	return nil
}

// Save writes the configuration as TOML, creating the parent directory
func Save(path string, cfg Config) error {
	path = ExpandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// ExpandPath replaces a leading ~ with the home directory. Connection
// strings and absolute paths are returned unchanged.
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

// IsPostgres reports whether the storage path is a PostgreSQL connection string
func IsPostgres(path string) bool {
	return strings.HasPrefix(path, "postgres://") || strings.HasPrefix(path, "postgresql://")
}
