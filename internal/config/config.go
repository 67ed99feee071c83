// Package config provides configuration management for the contest bot.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Tournament  TournamentConfig `mapstructure:"tournament"`
	Market      MarketConfig     `mapstructure:"market"`
	Server      ServerConfig     `mapstructure:"server"`
	Narrator    NarratorConfig   `mapstructure:"narrator"`
	Logging     LoggingConfig    `mapstructure:"logging"`
	Credentials Credentials      `mapstructure:"-"` // Loaded from environment
}

// TournamentConfig holds the contest parameters.
type TournamentConfig struct {
	Name         string  `mapstructure:"name"`
	DurationDays int     `mapstructure:"duration_days"`
	InitialCash  float64 `mapstructure:"initial_cash"`
	MaxPlayers   int     `mapstructure:"max_players"` // 0 = unlimited
}

// MarketConfig holds price-source configuration.
type MarketConfig struct {
	// LiveQuotes enables the live price feed; when false all quotes come
	// from the static catalog table.
	LiveQuotes bool   `mapstructure:"live_quotes"`
	QuoteURL   string `mapstructure:"quote_url"`
	TimeoutMS  int    `mapstructure:"timeout_ms"`
}

// ServerConfig holds the webhook server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	VerifyToken string `mapstructure:"verify_token"`
	DBPath      string `mapstructure:"db_path"`
}

// NarratorConfig holds the ranking-commentary configuration.
type NarratorConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Temperature float32 `mapstructure:"temperature"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  bool   `mapstructure:"file"`
}

// Credentials holds API credentials, loaded from the environment only.
type Credentials struct {
	WhatsAppToken   string
	WhatsAppPhoneID string
	GroqAPIKey      string
	BrapiToken      string
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/cartola-trader"
	}
	return filepath.Join(home, ".config", "cartola-trader")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.yaml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("tournament.name", "Cartola de Investimentos")
	v.SetDefault("tournament.duration_days", 7)
	v.SetDefault("tournament.initial_cash", 10000.0)
	v.SetDefault("tournament.max_players", 0)

	v.SetDefault("market.live_quotes", false)
	v.SetDefault("market.quote_url", "https://brapi.dev/api/quote")
	v.SetDefault("market.timeout_ms", 3000)

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.verify_token", "")
	v.SetDefault("server.db_path", filepath.Join(DefaultConfigDir(), "cartola.db"))

	v.SetDefault("narrator.enabled", true)
	v.SetDefault("narrator.model", "llama-3.3-70b-versatile")
	v.SetDefault("narrator.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("narrator.temperature", 0.8)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", true)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WHATSAPP_TOKEN"); v != "" {
		cfg.Credentials.WhatsAppToken = v
	}
	if v := os.Getenv("WHATSAPP_PHONE_NUMBER_ID"); v != "" {
		cfg.Credentials.WhatsAppPhoneID = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		cfg.Credentials.GroqAPIKey = v
	}
	if v := os.Getenv("BRAPI_TOKEN"); v != "" {
		cfg.Credentials.BrapiToken = v
	}
	if v := os.Getenv("WEBHOOK_VERIFY_TOKEN"); v != "" {
		cfg.Server.VerifyToken = v
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Tournament.InitialCash <= 0 {
		return fmt.Errorf("tournament.initial_cash must be positive, got %.2f", c.Tournament.InitialCash)
	}
	if c.Tournament.DurationDays <= 0 {
		return fmt.Errorf("tournament.duration_days must be positive, got %d", c.Tournament.DurationDays)
	}
	if c.Tournament.MaxPlayers < 0 {
		return fmt.Errorf("tournament.max_players must not be negative, got %d", c.Tournament.MaxPlayers)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Market.TimeoutMS <= 0 {
		return fmt.Errorf("market.timeout_ms must be positive, got %d", c.Market.TimeoutMS)
	}
	return nil
}
