// Package config loads process-wide settings once at startup: built-in
// defaults, then an optional YAML file, then environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// Config holds read-only runtime settings shared by every component.
type Config struct {
	SiteName   string `yaml:"site_name"`
	Version    string `yaml:"version"`
	ShowSource bool   `yaml:"show_source"`

	MaxDisplayNameLength int `yaml:"max_display_name_length"`
	MaxPostLength        int `yaml:"max_post_length"`
	MaxUsernameLength    int `yaml:"max_username_length"`

	RateLimiting bool `yaml:"rate_limiting"`
	// ServerSecret seeds the key mixed into every session token. Changing it
	// invalidates all issued tokens.
	ServerSecret string `yaml:"server_secret"`

	Addr          string `yaml:"addr"`
	DatabasePath  string `yaml:"database_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	BcryptCost    int    `yaml:"bcrypt_cost"`
	LogLevel      string `yaml:"log_level"`
	// CookieSecure marks the session cookie Secure. Disable only for local
	// development over plain HTTP.
	CookieSecure bool `yaml:"cookie_secure"`
}

// Default returns development defaults. ServerSecret is left empty and must
// be supplied.
func Default() Config {
	return Config{
		SiteName:             "Social Media Thing",
		Version:              "0.1.0",
		ShowSource:           true,
		MaxDisplayNameLength: 32,
		MaxPostLength:        280,
		MaxUsernameLength:    18,
		RateLimiting:         true,
		Addr:                 ":8080",
		DatabasePath:         "social.db",
		BcryptCost:           12,
		LogLevel:             "info",
		CookieSecure:         true,
	}
}

// Load builds the configuration. The YAML file named by CONFIG_FILE, if any,
// overlays the defaults; environment variables overlay the file.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.SiteName = envOrDefault("SITE_NAME", c.SiteName)
	c.Version = envOrDefault("VERSION", c.Version)
	c.ServerSecret = envOrDefault("AUTH_KEY", c.ServerSecret)
	c.Addr = envOrDefault("ADDR", c.Addr)
	if port := os.Getenv("PORT"); port != "" {
		c.Addr = ":" + port
	}
	c.DatabasePath = envOrDefault("DATABASE_PATH", c.DatabasePath)
	c.RedisAddr = envOrDefault("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = envOrDefault("REDIS_PASSWORD", c.RedisPassword)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)

	var err error
	if c.ShowSource, err = envBool("SOURCE_CODE", c.ShowSource); err != nil {
		return err
	}
	if c.RateLimiting, err = envBool("RATELIMIT", c.RateLimiting); err != nil {
		return err
	}
	if c.MaxDisplayNameLength, err = envInt("MAX_DISPLAY_NAME_LENGTH", c.MaxDisplayNameLength); err != nil {
		return err
	}
	if c.MaxPostLength, err = envInt("MAX_POST_LENGTH", c.MaxPostLength); err != nil {
		return err
	}
	if c.MaxUsernameLength, err = envInt("MAX_USERNAME_LENGTH", c.MaxUsernameLength); err != nil {
		return err
	}
	if c.BcryptCost, err = envInt("BCRYPT_COST", c.BcryptCost); err != nil {
		return err
	}
	if c.CookieSecure, err = envBool("COOKIE_SECURE", c.CookieSecure); err != nil {
		return err
	}
	return nil
}

// Validate rejects configurations the server cannot safely run with.
func (c Config) Validate() error {
	if c.ServerSecret == "" {
		return errors.New("server secret is required (AUTH_KEY)")
	}
	if len(c.ServerSecret) < 32 {
		return errors.New("server secret must be at least 32 characters")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost must be between 4 and 14, got %d", c.BcryptCost)
	}
	if c.MaxUsernameLength < 1 || c.MaxPostLength < 1 || c.MaxDisplayNameLength < 1 {
		return errors.New("length limits must be positive")
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
