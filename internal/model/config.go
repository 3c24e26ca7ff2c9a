package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backend names.
const (
	BackendSQLite  = "sqlite"
	BackendMemory  = "memory"
	BackendStore   = "store"
	BackendKeyring = "keyring"
)

// StorageConfig selects and locates the local key-value medium.
type StorageConfig struct {
	// Backend is "sqlite" (durable) or "memory" (lost on exit).
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`

	// Namespace prefixes every storage key.
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
}

// SessionConfig holds sign-in settings.
type SessionConfig struct {
	// IdentityBackend is "store" (same medium as tasks) or "keyring".
	IdentityBackend string `mapstructure:"identity_backend" yaml:"identity_backend"`

	// LoginDelayMS simulates the provider round-trip.
	LoginDelayMS int `mapstructure:"login_delay_ms" yaml:"login_delay_ms"`
}

// LoginDelay returns the simulated provider round-trip as a duration.
func (c SessionConfig) LoginDelay() time.Duration {
	if c.LoginDelayMS <= 0 {
		return 0
	}
	return time.Duration(c.LoginDelayMS) * time.Millisecond
}

// TasksConfig holds task list settings.
type TasksConfig struct {
	PageSize int  `mapstructure:"page_size" yaml:"page_size"`
	SeedDemo bool `mapstructure:"seed_demo" yaml:"seed_demo"`
}

// FilterConfig holds filter engine settings.
type FilterConfig struct {
	// WeekStart is "sunday" or "monday".
	WeekStart string `mapstructure:"week_start" yaml:"week_start"`
}

// Weekday resolves WeekStart, defaulting to Sunday.
func (c FilterConfig) Weekday() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
	File  string `mapstructure:"file" yaml:"file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Tasks   TasksConfig   `mapstructure:"tasks" yaml:"tasks"`
	Filter  FilterConfig  `mapstructure:"filter" yaml:"filter"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tasknest/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tasknest", "config.yaml")
}

// defaultDataDir returns ~/.local/share/tasknest.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "tasknest")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	dataDir := defaultDataDir()
	return &AppConfig{
		Storage: StorageConfig{
			Backend:   BackendSQLite,
			Path:      filepath.Join(dataDir, "tasknest.db"),
			Namespace: "tasknest",
		},
		Session: SessionConfig{
			IdentityBackend: BackendStore,
			LoginDelayMS:    1500,
		},
		Tasks: TasksConfig{
			PageSize: 12,
			SeedDemo: true,
		},
		Filter: FilterConfig{
			WeekStart: "sunday",
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dataDir, "tasknest.log"),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	defaults := DefaultAppConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TASKNEST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("storage.backend", defaults.Storage.Backend)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.namespace", defaults.Storage.Namespace)
	v.SetDefault("session.identity_backend", defaults.Session.IdentityBackend)
	v.SetDefault("session.login_delay_ms", defaults.Session.LoginDelayMS)
	v.SetDefault("tasks.page_size", defaults.Tasks.PageSize)
	v.SetDefault("tasks.seed_demo", defaults.Tasks.SeedDemo)
	v.SetDefault("filter.week_start", defaults.Filter.WeekStart)
	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.file", defaults.Log.File)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate rejects values the application cannot run with.
func (c *AppConfig) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q",
			BackendSQLite, BackendMemory, c.Storage.Backend)
	}
	switch c.Session.IdentityBackend {
	case BackendStore, BackendKeyring:
	default:
		return fmt.Errorf("session.identity_backend must be %q or %q, got %q",
			BackendStore, BackendKeyring, c.Session.IdentityBackend)
	}
	if c.Storage.Namespace == "" {
		return fmt.Errorf("storage.namespace must not be empty")
	}
	if c.Tasks.PageSize < 1 {
		return fmt.Errorf("tasks.page_size must be positive, got %d", c.Tasks.PageSize)
	}
	switch c.Filter.WeekStart {
	case "sunday", "monday":
	default:
		return fmt.Errorf("filter.week_start must be sunday or monday, got %q", c.Filter.WeekStart)
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("storage", cfg.Storage)
	v.Set("session", cfg.Session)
	v.Set("tasks", cfg.Tasks)
	v.Set("filter", cfg.Filter)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
