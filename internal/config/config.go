package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	DefaultConfigFileName = "config.toml"
	DefaultDBName         = "daylist.db"
	DefaultLogName        = "daylist.log"
	appDir                = "daylist"
)

type Retry struct {
	Attempts int `toml:"attempts"`
	DelayMS  int `toml:"delay_ms"`
}

type Config struct {
	DBPath    string `toml:"db_path"`
	Timezone  string `toml:"timezone"`
	LogFile   string `toml:"log_file"`
	ExportDir string `toml:"export_dir"`
	Retry     Retry  `toml:"retry"`
}

// ResolveConfigPath picks the config file: $DAYLIST_CONFIG if set, otherwise
// config.toml under the user config directory.
func ResolveConfigPath() string {
	if p := os.Getenv("DAYLIST_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return DefaultConfigFileName
	}
	return filepath.Join(dir, appDir, DefaultConfigFileName)
}

// LoadOrCreate reads the config at path, writing the defaults there on first launch.
func LoadOrCreate(path string) (Config, error) {
	cfg := defaultConfig(filepath.Dir(path))
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := write(path, cfg); err != nil {
			return cfg, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(path), DefaultDBName)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Retry.Attempts < 0 {
		return fmt.Errorf("retry.attempts must not be negative, got %d", c.Retry.Attempts)
	}
	if c.Retry.DelayMS < 0 {
		return fmt.Errorf("retry.delay_ms must not be negative, got %d", c.Retry.DelayMS)
	}
	return nil
}

// Location resolves Timezone; empty or "Local" means the system zone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.Retry.DelayMS) * time.Millisecond
}

func write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultConfig(dir string) Config {
	home, _ := os.UserHomeDir()
	return Config{
		DBPath:    filepath.Join(dir, DefaultDBName),
		Timezone:  "Local",
		LogFile:   filepath.Join(dir, DefaultLogName),
		ExportDir: home,
		Retry: Retry{
			Attempts: 3,
			DelayMS:  50,
		},
	}
}
