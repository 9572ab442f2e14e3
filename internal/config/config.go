// Package config handles DataWhiz client configuration loading and validation.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration structure for the whiz client.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// API settings for the DataWhiz backend
	API APIConfig `yaml:"api" mapstructure:"api"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Upload settings for the simulated file processing pipeline
	Upload UploadConfig `yaml:"upload" mapstructure:"upload"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global client settings.
type GlobalConfig struct {
	// ConfigDir is where config and credentials are stored (default: ~/.config/whiz).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`

	// DataDir is where the client stores its data (default: ~/.local/share/whiz).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`
}

// APIConfig contains backend connection settings.
type APIConfig struct {
	// BaseURL is the backend API root.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Timeout is the per-request timeout.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// File is an optional log file path.
	File string `yaml:"file" mapstructure:"file"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// UploadConfig controls the simulated upload/extraction timing.
type UploadConfig struct {
	// TickInterval is how often the simulated progress advances.
	TickInterval time.Duration `yaml:"tick_interval" mapstructure:"tick_interval"`

	// ProgressStep is how much progress each tick adds (percent).
	ProgressStep int `yaml:"progress_step" mapstructure:"progress_step"`

	// ExtractionDelay is how long after attach the extraction-complete
	// message arrives.
	ExtractionDelay time.Duration `yaml:"extraction_delay" mapstructure:"extraction_delay"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// Theme is the color theme name.
	Theme string `yaml:"theme" mapstructure:"theme"`

	// ShowTimestamps displays message timestamps in the chat view.
	ShowTimestamps bool `yaml:"show_timestamps" mapstructure:"show_timestamps"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			ConfigDir: filepath.Join(homeDir, ".config", "whiz"),
			DataDir:   filepath.Join(homeDir, ".local", "share", "whiz"),
		},
		API: APIConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		Upload: UploadConfig{
			TickInterval:    80 * time.Millisecond,
			ProgressStep:    10,
			ExtractionDelay: 1200 * time.Millisecond,
		},
		TUI: TUIConfig{
			Theme:          "default",
			ShowTimestamps: false,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if _, err := url.Parse(c.API.BaseURL); err != nil {
		return fmt.Errorf("api.base_url is not a valid URL: %w", err)
	}

	if c.API.Timeout < time.Second {
		return fmt.Errorf("api.timeout must be at least 1s")
	}

	if c.Upload.TickInterval < time.Millisecond {
		return fmt.Errorf("upload.tick_interval must be at least 1ms")
	}

	if c.Upload.ProgressStep < 1 || c.Upload.ProgressStep > 100 {
		return fmt.Errorf("upload.progress_step must be between 1 and 100")
	}

	if c.Upload.ExtractionDelay < 0 {
		return fmt.Errorf("upload.extraction_delay must not be negative")
	}

	switch c.Logging.Format {
	case "json", "console":
		// ok
	default:
		return fmt.Errorf("logging.format must be json or console")
	}

	return nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.ConfigDir,
		c.Global.DataDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// CredentialsPath returns the local credential store path.
func (c *Config) CredentialsPath() string {
	return filepath.Join(c.Global.ConfigDir, "credentials.db")
}

// CredentialsKeyPath returns the path of the key sealing stored tokens.
func (c *Config) CredentialsKeyPath() string {
	return filepath.Join(c.Global.ConfigDir, "credentials.key")
}
