package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  env: prod
  log_level: debug
  http_addr: ":9090"
database:
  path: /tmp/trades.db
  journal_path: /tmp/journal.db
rules:
  path: configs/alert_rules.yaml
notify:
  slack:
    enabled: true
    webhook_url: https://hooks.slack.com/services/T000/B000/XXXX
  alerts:
    enabled: true
    endpoint: https://alerts.example.com/api/notify
  promo:
    enabled: true
    endpoint: https://promo.example.com/hook
    test_mode: true
  tracking:
    enabled: true
    endpoint: https://watcher.example.com/stop
`))
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.App.Env)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, ":9090", cfg.App.HTTPAddr)
	assert.Equal(t, "/tmp/trades.db", cfg.Database.Path)
	assert.Equal(t, "/tmp/journal.db", cfg.Database.JournalPath)
	assert.Equal(t, "configs/alert_rules.yaml", cfg.Rules.Path)
	assert.True(t, cfg.Notify.Slack.Enabled)
	assert.True(t, cfg.Notify.Promo.TestMode)
	assert.Equal(t, "https://watcher.example.com/stop", cfg.Notify.Tracking.Endpoint)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
database:
  path: /tmp/trades.db
`))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8087", cfg.App.HTTPAddr)
	assert.Empty(t, cfg.Database.JournalPath)
	assert.False(t, cfg.Notify.Alerts.Enabled)
}

func TestLoad_EnabledNotifiersRequireEndpoints(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"alerts", "notify:\n  alerts:\n    enabled: true\n"},
		{"promo", "notify:\n  promo:\n    enabled: true\n"},
		{"tracking", "notify:\n  tracking:\n    enabled: true\n"},
		{"slack", "notify:\n  slack:\n    enabled: true\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, "database:\n  path: /tmp/trades.db\n"+tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
	_, err = Load("")
	assert.Error(t, err)
}
