// Package config handles configuration loading for snowhive.
// It supports XDG config paths, project-level overrides, and
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for snowhive.
type Config struct {
	Team     TeamConfig     `mapstructure:"team"`
	Store    StoreConfig    `mapstructure:"store"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	TUI      TUIConfig      `mapstructure:"tui"`
}

// TeamConfig holds team assembly defaults.
type TeamConfig struct {
	MaxTeamSize          int     `mapstructure:"max_team_size"`
	PerformanceThreshold float64 `mapstructure:"performance_threshold"`
	SkillOverlap         bool    `mapstructure:"skill_overlap"`
	FallbackEnabled      bool    `mapstructure:"fallback_enabled"`
	// RosterFile optionally overrides the built-in specialist roster.
	RosterFile string `mapstructure:"roster_file"`
}

// StoreConfig holds coordination store settings.
type StoreConfig struct {
	// Path overrides the default .snowhive/coordination.db location.
	Path string `mapstructure:"path"`
	// PerformanceRetention bounds how long performance rows are kept.
	PerformanceRetention time.Duration `mapstructure:"performance_retention"`
}

// AnalysisConfig holds requirements analysis settings.
type AnalysisConfig struct {
	MaxRequirements int `mapstructure:"max_requirements"`
}

// TUIConfig holds status dashboard settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and
// environment variables. Precedence (highest to lowest):
// 1. Environment variables (SNOWHIVE_*)
// 2. Project config (.snowhive.yaml in current directory or parent)
// 3. User config (~/.config/snowhive/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.SetEnvPrefix("SNOWHIVE")
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("team.max_team_size", cfg.Team.MaxTeamSize)
	v.Set("team.performance_threshold", cfg.Team.PerformanceThreshold)
	v.Set("team.skill_overlap", cfg.Team.SkillOverlap)
	v.Set("team.fallback_enabled", cfg.Team.FallbackEnabled)
	v.Set("team.roster_file", cfg.Team.RosterFile)
	v.Set("store.path", cfg.Store.Path)
	v.Set("store.performance_retention", cfg.Store.PerformanceRetention.String())
	v.Set("analysis.max_requirements", cfg.Analysis.MaxRequirements)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if
// it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("team.max_team_size", 5)
	v.SetDefault("team.performance_threshold", 0.5)
	v.SetDefault("team.skill_overlap", true)
	v.SetDefault("team.fallback_enabled", true)
	v.SetDefault("team.roster_file", "")

	v.SetDefault("store.path", "")
	v.SetDefault("store.performance_retention", "168h")

	v.SetDefault("analysis.max_requirements", 200)

	v.SetDefault("tui.refresh_rate", "1s")
}

// getUserConfigDir returns the XDG config directory for snowhive.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "snowhive")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "snowhive")
	}
	return filepath.Join(home, ".config", "snowhive")
}

// findProjectConfig searches for .snowhive.yaml in the current
// directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".snowhive.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Team: TeamConfig{
			MaxTeamSize:          5,
			PerformanceThreshold: 0.5,
			SkillOverlap:         true,
			FallbackEnabled:      true,
		},
		Store: StoreConfig{
			PerformanceRetention: 168 * time.Hour,
		},
		Analysis: AnalysisConfig{
			MaxRequirements: 200,
		},
		TUI: TUIConfig{
			RefreshRate: time.Second,
		},
	}
}
