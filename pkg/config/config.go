// Package config loads runtime settings from an optional config file,
// environment variables, and defaults.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application. The values are read
// by viper from a config file or environment variables, with CLI flags
// layered on top by the command.
type Config struct {
	ROM          string  `mapstructure:"rom"`
	Steps        int     `mapstructure:"steps"`
	Display      bool    `mapstructure:"display"`
	Sound        bool    `mapstructure:"sound"`
	MaxHistory   int     `mapstructure:"max_history"`
	LoadState    string  `mapstructure:"load_state"`
	Provider     string  `mapstructure:"provider"`
	Model        string  `mapstructure:"model"`
	APIKey       string  `mapstructure:"api_key"`
	MaxTokens    int     `mapstructure:"max_tokens"`
	Temperature  float64 `mapstructure:"temperature"`
	Navigator    bool    `mapstructure:"navigator"`
	Upscale      int     `mapstructure:"upscale"`
	EmulatorAddr string  `mapstructure:"emulator_addr"`
	LogLevel     string  `mapstructure:"log_level"`
}

// Load reads configuration using the provided viper instance, which the CLI
// has already bound to its flags. An empty path skips the file layer.
func Load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("GBAGENT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rom", "pokemon.gb")
	v.SetDefault("steps", 10)
	v.SetDefault("max_history", 30)
	v.SetDefault("provider", "anthropic")
	v.SetDefault("max_tokens", 4096)
	v.SetDefault("temperature", 1.0)
	v.SetDefault("upscale", 2)
	v.SetDefault("log_level", "info")
}

// Validate enforces minimal structural guarantees.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config is nil")
	}
	switch c.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("unknown provider %q: expected anthropic or openai", c.Provider)
	}
	if c.Steps <= 0 {
		return fmt.Errorf("steps must be positive: %d", c.Steps)
	}
	if c.MaxHistory < 2 {
		return fmt.Errorf("max_history must be at least 2: %d", c.MaxHistory)
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive: %d", c.MaxTokens)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2: %g", c.Temperature)
	}
	if c.Upscale < 1 {
		return fmt.Errorf("upscale must be at least 1: %d", c.Upscale)
	}
	return nil
}

// DefaultModel returns the per-provider model identifier used when none is
// configured.
func (c *Config) DefaultModel() string {
	if c.Model != "" {
		return c.Model
	}
	switch c.Provider {
	case "openai":
		return "gpt-4o"
	default:
		return "claude-3-7-sonnet-latest"
	}
}
