// Package config provides YAML-based configuration loading for evodex.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level evodex configuration, loaded from evodex.yaml.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Ingest   IngestConfig   `yaml:"ingest"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Notify   NotifyConfig   `yaml:"notify"`
}

// DatabaseConfig selects and locates the record store.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite or mysql
	Path   string `yaml:"path"`   // sqlite file
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Name   string `yaml:"name"`
}

// CatalogConfig describes the remote catalog source.
type CatalogConfig struct {
	BaseURL           string  `yaml:"base_url"`
	PreferredLanguage string  `yaml:"preferred_language"`
	SecondaryLanguage string  `yaml:"secondary_language"`
	TimeoutSec        int     `yaml:"timeout_sec"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // 0 = unlimited
	ChainPageLimit    int     `yaml:"chain_page_limit"`
	NameCacheTTLMin   int     `yaml:"name_cache_ttl_min"`
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	ExpectedTotal  int    `yaml:"expected_total"`
	BatchSize      int    `yaml:"batch_size"`
	ResyncSchedule string `yaml:"resync_schedule"` // 5-field cron, empty disables
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LogConfig selects the logger mode (dev or prod).
type LogConfig struct {
	Mode string `yaml:"mode"`
}

// NotifyConfig lists the chat channels that receive ingestion outcomes.
type NotifyConfig struct {
	Slack   ChatConfig `yaml:"slack"`
	Discord ChatConfig `yaml:"discord"`
}

// ChatConfig addresses one chat channel. Tokens may reference environment
// variables as ${NAME}.
type ChatConfig struct {
	BotToken string `yaml:"bot_token"`
	Channel  string `yaml:"channel"`
}

// Enabled reports whether a token is configured.
func (c ChatConfig) Enabled() bool {
	return c.BotToken != ""
}

// Timeout returns the per-request catalog timeout.
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// NameCacheTTL returns how long resolved localized names are memoized.
func (c CatalogConfig) NameCacheTTL() time.Duration {
	return time.Duration(c.NameCacheTTLMin) * time.Minute
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a validated Config with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Driver == "sqlite" && c.Database.Path == "" {
		c.Database.Path = "evodex.db"
	}
	if c.Database.Driver == "mysql" {
		if c.Database.Host == "" {
			c.Database.Host = "127.0.0.1"
		}
		if c.Database.Port == 0 {
			c.Database.Port = 3306
		}
		if c.Database.User == "" {
			c.Database.User = "root"
		}
		if c.Database.Name == "" {
			c.Database.Name = "evodex"
		}
	}
	if c.Catalog.BaseURL == "" {
		c.Catalog.BaseURL = "https://pokeapi.co/api/v2"
	}
	c.Catalog.BaseURL = strings.TrimRight(c.Catalog.BaseURL, "/")
	if c.Catalog.PreferredLanguage == "" {
		c.Catalog.PreferredLanguage = "ko"
	}
	if c.Catalog.SecondaryLanguage == "" {
		c.Catalog.SecondaryLanguage = "en"
	}
	if c.Catalog.TimeoutSec == 0 {
		c.Catalog.TimeoutSec = 15
	}
	if c.Catalog.ChainPageLimit == 0 {
		c.Catalog.ChainPageLimit = 600
	}
	if c.Catalog.NameCacheTTLMin == 0 {
		c.Catalog.NameCacheTTLMin = 60
	}
	if c.Ingest.ExpectedTotal == 0 {
		c.Ingest.ExpectedTotal = 1032
	}
	if c.Ingest.BatchSize == 0 {
		c.Ingest.BatchSize = 50
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
	c.Notify.Slack.BotToken = os.ExpandEnv(c.Notify.Slack.BotToken)
	c.Notify.Discord.BotToken = os.ExpandEnv(c.Notify.Discord.BotToken)
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Database.Driver {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.driver %q is not supported (sqlite, mysql)", c.Database.Driver))
	}
	if !strings.HasPrefix(c.Catalog.BaseURL, "http://") && !strings.HasPrefix(c.Catalog.BaseURL, "https://") {
		errs = append(errs, "catalog.base_url must be an http(s) URL")
	}
	if c.Catalog.PreferredLanguage == c.Catalog.SecondaryLanguage {
		errs = append(errs, "catalog.secondary_language must differ from preferred_language")
	}
	if c.Catalog.TimeoutSec < 0 {
		errs = append(errs, "catalog.timeout_sec must not be negative")
	}
	if c.Catalog.RequestsPerSecond < 0 {
		errs = append(errs, "catalog.requests_per_second must not be negative")
	}
	if c.Ingest.ExpectedTotal < 0 {
		errs = append(errs, "ingest.expected_total must not be negative")
	}
	if c.Ingest.BatchSize < 0 {
		errs = append(errs, "ingest.batch_size must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port %d is out of range", c.Server.Port))
	}
	switch c.Log.Mode {
	case "dev", "prod":
	default:
		errs = append(errs, fmt.Sprintf("log.mode %q is not supported (dev, prod)", c.Log.Mode))
	}
	if c.Notify.Slack.Enabled() && c.Notify.Slack.Channel == "" {
		errs = append(errs, "notify.slack.channel is required when a bot token is set")
	}
	if c.Notify.Discord.Enabled() && c.Notify.Discord.Channel == "" {
		errs = append(errs, "notify.discord.channel is required when a bot token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
