// Package config loads the service configuration from a JSON or YAML file
// with optional environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"svitlo/infra/mqtt"
	"svitlo/yasno"
)

// BotConfig holds the Telegram transport settings.
type BotConfig struct {
	Token              string `json:"token"`
	PollTimeoutSeconds int    `json:"poll_timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *BotConfig) SetDefaults() {
	if c.PollTimeoutSeconds <= 0 {
		c.PollTimeoutSeconds = 30
	}
}

// Validate checks mandatory fields.
func (c BotConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("bot token is required")
	}
	return nil
}

// StoreConfig locates the registry database.
type StoreConfig struct {
	Path string `json:"path"`
}

// SetDefaults applies sane defaults.
func (c *StoreConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "svitlo.db"
	}
}

// MetricsConfig enables the metric sinks.
type MetricsConfig struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *MetricsConfig) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

// Validate checks mandatory fields.
func (c MetricsConfig) Validate() error {
	if c.InfluxEnabled && c.InfluxURL == "" {
		return fmt.Errorf("influx_url is required when influx is enabled")
	}
	return nil
}

// Config is the root configuration of the service.
type Config struct {
	Bot     BotConfig     `json:"bot"`
	Yasno   yasno.Config  `json:"yasno"`
	Store   StoreConfig   `json:"store"`
	Metrics MetricsConfig `json:"metrics"`
	MQTT    mqtt.Config   `json:"mqtt"`
}

// Load reads the configuration file at path, applies SVITLO_* environment
// overrides (SVITLO_BOT__TOKEN maps to bot.token) and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("SVITLO_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "svitlo_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Bot.SetDefaults()
	cfg.Yasno.SetDefaults()
	cfg.Store.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.MQTT.SetDefaults()
	if err := cfg.Bot.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Yasno.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Metrics.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.MQTT.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
