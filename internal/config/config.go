// Package config loads the snapdesk configuration: database location and
// connection parameters, backup retention, and logging options. Defaults
// apply when no config file exists; a YAML file under ~/.snapdesk
// overrides them.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Database holds the embedded store's connection and backup parameters.
type Database struct {
	// Path is the database file location.
	Path string `yaml:"path"`
	// Password enables encryption when the storage engine supports it.
	// Never logged verbatim.
	Password string `yaml:"password"`
	// SharedAccess opens the file without an exclusive lock.
	SharedAccess bool `yaml:"shared_access"`
	// BusyTimeout bounds how long a store call waits on a locked database.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
	// BackupDir receives dated backup copies.
	BackupDir string `yaml:"backup_dir"`
	// RetentionDays is how long backup files are kept before automatic
	// deletion.
	RetentionDays int `yaml:"retention_days"`
}

// Logging holds log output options.
type Logging struct {
	Level string `yaml:"level"`
}

// Config is the root configuration.
type Config struct {
	Database Database `yaml:"database"`
	Logging  Logging  `yaml:"logging"`
}

const (
	appDirName     = ".snapdesk"
	dbFileName     = "snapdesk.db"
	configFileName = "config.yaml"
	backupDirName  = "backups"
)

// DefaultDatabasePath returns <userHome>/.snapdesk/snapdesk.db.
func DefaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDirName, dbFileName), nil
}

// DefaultConfigPath returns <userHome>/.snapdesk/config.yaml.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, appDirName, configFileName), nil
}

// Default returns the configuration used when no file overrides exist.
func Default() (*Config, error) {
	dbPath, err := DefaultDatabasePath()
	if err != nil {
		return nil, err
	}
	cfg := &Config{
		Database: Database{
			Path:          dbPath,
			BusyTimeout:   5 * time.Second,
			RetentionDays: 30,
		},
		Logging: Logging{Level: "info"},
	}
	cfg.applyDerived()
	return cfg, nil
}

// Load reads the configuration from the standard location, falling back
// to defaults when the file does not exist.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath reads configuration from an explicit file path. A missing
// file is not an error; defaults apply.
func LoadFromPath(path string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	cfg.applyDerived()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDerived fills values computed from others: the backup directory
// defaults to <dbDir>/backups.
func (c *Config) applyDerived() {
	if c.Database.BackupDir == "" && c.Database.Path != "" {
		c.Database.BackupDir = filepath.Join(filepath.Dir(c.Database.Path), backupDirName)
	}
	if c.Database.BusyTimeout <= 0 {
		c.Database.BusyTimeout = 5 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.Database.RetentionDays < 0 {
		return fmt.Errorf("retention days must be >= 0, got %d", c.Database.RetentionDays)
	}
	return nil
}

// Redacted returns a loggable description of the database configuration
// with the password masked.
func (d Database) Redacted() string {
	password := ""
	if d.Password != "" {
		password = " password=[redacted]"
	}
	return fmt.Sprintf("path=%s shared=%t timeout=%s retention=%dd%s",
		d.Path, d.SharedAccess, d.BusyTimeout, d.RetentionDays, password)
}
