// Package config loads habithero settings from a YAML file and HABITHERO_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/julianstephens/habithero/internal/constants"
	"github.com/julianstephens/habithero/internal/utils"
)

// OpenAIConfig holds settings for habit suggestions.
type OpenAIConfig struct {
	Model       string  `mapstructure:"model" yaml:"model"`
	Temperature float32 `mapstructure:"temperature" yaml:"temperature"`
}

// Config is the resolved application configuration.
type Config struct {
	// Store is a SQLite path, a postgres:// URL, or badger://<dir>.
	Store        string       `mapstructure:"store" yaml:"store"`
	Timezone     string       `mapstructure:"timezone" yaml:"timezone"`
	CalendarDays int          `mapstructure:"calendar_days" yaml:"calendar_days"`
	Debug        bool         `mapstructure:"debug" yaml:"debug"`
	OpenAI       OpenAIConfig `mapstructure:"openai" yaml:"openai"`

	// path is the file the config was read from, empty when none existed.
	path string
}

// Dir returns the default configuration directory, $XDG_CONFIG_HOME/habithero.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, constants.AppName)
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(Dir(), constants.DefaultConfigName)
}

// DefaultStore returns the default SQLite database path.
func DefaultStore() string {
	return filepath.Join(Dir(), constants.DefaultDatabaseName)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store", DefaultStore())
	v.SetDefault("timezone", "Local")
	v.SetDefault("calendar_days", constants.DefaultCalendarDays)
	v.SetDefault("debug", false)
	v.SetDefault("openai.model", constants.DefaultOpenAIModel)
	v.SetDefault("openai.temperature", constants.DefaultOpenAITemp)
}

// Load reads path (DefaultPath when empty). A missing file yields defaults;
// HABITHERO_* variables override file values, e.g. HABITHERO_OPENAI_MODEL.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	found := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		found = false
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if found {
		cfg.path = path
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges that viper cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store) == "" {
		return errors.New("store cannot be empty")
	}
	if _, err := utils.LoadLocation(c.Timezone); err != nil {
		return err
	}
	if c.CalendarDays < 1 || c.CalendarDays > constants.MaxCalendarDays {
		return fmt.Errorf("calendar_days must be between 1 and %d", constants.MaxCalendarDays)
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		return errors.New("openai.temperature must be between 0 and 2")
	}
	return nil
}

// Path returns the file the config was read from, or "" if defaults were used.
func (c *Config) Path() string {
	return c.path
}

// Write saves c as YAML to path, creating the directory.
func (c *Config) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("store", c.Store)
	v.Set("timezone", c.Timezone)
	v.Set("calendar_days", c.CalendarDays)
	v.Set("debug", c.Debug)
	v.Set("openai.model", c.OpenAI.Model)
	v.Set("openai.temperature", c.OpenAI.Temperature)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	c.path = path
	return nil
}
