package config

// Config is the main configuration carrier.
type Config struct {
	App      AppConfig      `toml:"app"`
	Database DatabaseConfig `toml:"database"`
	Rules    RulesConfig    `toml:"rules"`
	Notify   NotifyConfig   `toml:"notify"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

type DatabaseConfig struct {
	// Path is the trade/stop/ledger SQLite file.
	Path string `toml:"path"`
	// JournalPath is the inbound event journal file. Empty disables it.
	JournalPath string `toml:"journal_path"`
}

type RulesConfig struct {
	// Path points at the alert delivery rules YAML. Empty falls back to
	// built-in defaults with test mode on.
	Path string `toml:"path"`
}

type NotifyConfig struct {
	Slack    SlackConfig    `toml:"slack"`
	Alerts   AlertsConfig   `toml:"alerts"`
	Promo    PromoConfig    `toml:"promo"`
	Tracking TrackingConfig `toml:"tracking"`
}

type SlackConfig struct {
	Enabled    bool   `toml:"enabled"`
	WebhookURL string `toml:"webhook_url"`
}

type AlertsConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

type PromoConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	TestMode bool   `toml:"test_mode"`
}

type TrackingConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = ":8087"
	}
	if c.Database.Path == "" {
		c.Database.Path = "data/swingflow.db"
	}
}
