package config

import (
	"fmt"

	"github.com/positivepasswordbook/ppbbridge/internal/bridge"
	"github.com/spf13/viper"
)

// Config holds the configuration for the bridge
type Config struct {
	BaseDir              string   `toml:"base_dir" mapstructure:"base_dir"`             // Directory containing addons/ppb_backend (empty = current directory)
	BackendSubdir        string   `toml:"backend_subdir" mapstructure:"backend_subdir"` // Relative to base_dir
	BackendArgs          []string `toml:"backend_args" mapstructure:"backend_args"`     // Arguments placed before the payload
	Logging              bool     `toml:"logging" mapstructure:"logging"`
	IgnoreExitCode       bool     `toml:"ignore_exit_code" mapstructure:"ignore_exit_code"`
	HistoryEnabled       bool     `toml:"history_enabled" mapstructure:"history_enabled"`
	HistoryDir           string   `toml:"history_dir" mapstructure:"history_dir"`
	HistoryRetentionDays int      `toml:"history_retention_days" mapstructure:"history_retention_days"` // Default: 30
	ListenAddr           string   `toml:"listen_addr" mapstructure:"listen_addr"`
	AllowBaseDirOverride bool     `toml:"allow_base_dir_override" mapstructure:"allow_base_dir_override"` // Lets HTTP requests pick their own base_dir
}

// NewDefaultConfig returns a new Config with default values
func NewDefaultConfig(historyDir string) *Config {
	return &Config{
		BaseDir:              "",
		BackendSubdir:        bridge.DefaultBackendSubdir,
		BackendArgs:          append([]string(nil), bridge.ServerArgs...),
		Logging:              false,
		IgnoreExitCode:       false,
		HistoryEnabled:       true,
		HistoryDir:           historyDir,
		HistoryRetentionDays: 30,
		ListenAddr:           "127.0.0.1:8765",
		AllowBaseDirOverride: false,
	}
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	if config.BaseDir != "" {
		absPath, err := ResolvePath(config.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving base directory path '%s': %v", config.BaseDir, err)
		}
		config.BaseDir = absPath
	}

	if config.HistoryDir != "" {
		absPath, err := ResolvePath(config.HistoryDir)
		if err != nil {
			return nil, fmt.Errorf("error resolving history directory path '%s': %v", config.HistoryDir, err)
		}
		config.HistoryDir = absPath
	}

	if config.BackendSubdir == "" {
		config.BackendSubdir = bridge.DefaultBackendSubdir
	}
	if config.HistoryRetentionDays < 0 {
		return nil, fmt.Errorf("history_retention_days must not be negative (got %d)", config.HistoryRetentionDays)
	}

	return config, nil
}
