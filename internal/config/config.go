// Package config handles chat core configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config is the root configuration structure for the chat core.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Storage settings
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Chat settings
	Chat ChatConfig `yaml:"chat" mapstructure:"chat"`

	// Sync settings
	Sync SyncConfig `yaml:"sync" mapstructure:"sync"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

// GlobalConfig contains global settings.
type GlobalConfig struct {
	// DataDir is where the chat core stores its data
	// (default: ~/.local/share/pharmchat).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// StorageConfig selects and configures the slot store backend.
type StorageConfig struct {
	// Backend is the slot store implementation (file, sqlite).
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Dir is the root directory of the file backend
	// (default: <data_dir>/slots).
	Dir string `yaml:"dir" mapstructure:"dir"`

	// SQLitePath is the database file of the sqlite backend
	// (default: <data_dir>/chat.db).
	SQLitePath string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
}

// ChatConfig contains conversation settings.
type ChatConfig struct {
	// SupportID is the identity id of the support side. A customer
	// session mirrors edits and deletes into this identity's slot until
	// support has replied in the conversation.
	SupportID string `yaml:"support_id" mapstructure:"support_id"`
}

// SyncConfig contains reconciliation settings.
type SyncConfig struct {
	// PollInterval is how often a viewer's slots are re-read.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		Global: GlobalConfig{
			DataDir: dataDir,
		},
		Storage: StorageConfig{
			Backend:    BackendFile,
			Dir:        filepath.Join(dataDir, "slots"),
			SQLitePath: filepath.Join(dataDir, "chat.db"),
		},
		Chat: ChatConfig{
			SupportID: "support",
		},
		Sync: SyncConfig{
			PollInterval: 3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func defaultDataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "pharmchat")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pharmchat"
	}
	return filepath.Join(home, ".local", "share", "pharmchat")
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage.Backend)
	}

	if c.Storage.Backend == BackendFile && c.Storage.Dir == "" {
		return fmt.Errorf("storage dir is required for the file backend")
	}
	if c.Storage.Backend == BackendSQLite && c.Storage.SQLitePath == "" {
		return fmt.Errorf("sqlite path is required for the sqlite backend")
	}

	if c.Chat.SupportID == "" {
		return fmt.Errorf("support identity id is required")
	}

	if c.Sync.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown logging format: %s", c.Logging.Format)
	}

	return nil
}
