// Package config provides configuration management using viper.
// It supports loading from YAML files and environment variable overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Bot       BotConfig       `mapstructure:"bot"`
	Whitelist WhitelistConfig `mapstructure:"whitelist"`
	Scenarios ScenariosConfig `mapstructure:"scenarios"`
	Turns     TurnsConfig     `mapstructure:"turns"`
	Roles     RolesConfig     `mapstructure:"roles"`
}

// BotConfig holds Telegram bot configuration.
type BotConfig struct {
	Token string `mapstructure:"token"`
}

// WhitelistConfig holds chat whitelist configuration.
type WhitelistConfig struct {
	Chats []int64 `mapstructure:"chats"`
}

// ScenariosConfig holds scenario persistence configuration.
type ScenariosConfig struct {
	File string `mapstructure:"file"`
}

// TurnsConfig holds turn timing configuration.
type TurnsConfig struct {
	Duration          time.Duration `mapstructure:"duration"`
	ChallengeDuration time.Duration `mapstructure:"challenge_duration"`
	TickInterval      time.Duration `mapstructure:"tick_interval"`
}

// RolesConfig holds role distribution configuration.
type RolesConfig struct {
	Filler string `mapstructure:"filler"`
}

// Load reads configuration from file and environment variables.
// It looks for config.yaml in the config directory.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Configure viper
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Enable environment variable override
	// Environment variables use underscore separator and uppercase
	// e.g., BOT_TOKEN, TURNS_DURATION, SCENARIOS_FILE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional - env vars can provide all config)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we can use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("scenarios.file", "scenarios.json")

	// Timing defaults as observed in play: two-minute turns, one-minute
	// challenge turns, ten-second countdown updates.
	v.SetDefault("turns.duration", "120s")
	v.SetDefault("turns.challenge_duration", "60s")
	v.SetDefault("turns.tick_interval", "10s")

	v.SetDefault("roles.filler", "Citizen")
}

// IsChatAllowed checks if a chat ID is in the whitelist.
func (c *Config) IsChatAllowed(chatID int64) bool {
	// Empty whitelist means all chats are allowed
	if len(c.Whitelist.Chats) == 0 {
		return true
	}
	for _, id := range c.Whitelist.Chats {
		if id == chatID {
			return true
		}
	}
	return false
}
