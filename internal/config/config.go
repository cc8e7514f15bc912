package config

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	cfg.applyDefaults()
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if cfg.Notify.Alerts.Enabled && cfg.Notify.Alerts.Endpoint == "" {
		return fmt.Errorf("notify.alerts.endpoint is required when alerts are enabled")
	}
	if cfg.Notify.Promo.Enabled && cfg.Notify.Promo.Endpoint == "" {
		return fmt.Errorf("notify.promo.endpoint is required when promo is enabled")
	}
	if cfg.Notify.Tracking.Enabled && cfg.Notify.Tracking.Endpoint == "" {
		return fmt.Errorf("notify.tracking.endpoint is required when tracking is enabled")
	}
	if cfg.Notify.Slack.Enabled && cfg.Notify.Slack.WebhookURL == "" {
		return fmt.Errorf("notify.slack.webhook_url is required when slack is enabled")
	}
	return nil
}
