package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ParkLedger/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"LEDGER_HTTP_ADDR", "LEDGER_STORAGE_DRIVER", "LEDGER_SQLITE_PATH", "LEDGER_CUTOFF_HOUR",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "HTTPS_PROXY", "LEDGER_TIMEZONE", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 17, cfg.Rollover.CutoffHour)
	assert.Equal(t, "@every 10s", cfg.Rollover.CheckEvery)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.AckDuration)
	assert.False(t, cfg.NotificationsEnabled())
}

func TestLoad_YAMLAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
app:
  timezone: Africa/Abidjan
storage:
  driver: file
  ledger_file: /tmp/ledger.json
rollover:
  cutoff_hour: 18
  summary_cron: "0 30 18 * * *"
http:
  ack_duration: 5s
telegram:
  bot_token: file-token
  chat_id: "42"
`)
	t.Setenv("LEDGER_CUTOFF_HOUR", "16")
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 16, cfg.Rollover.CutoffHour)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "file", cfg.Storage.Driver)
	assert.Equal(t, 5*time.Second, cfg.HTTP.AckDuration)
	assert.True(t, cfg.NotificationsEnabled())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Abidjan", loc.String())
}

func TestLoad_MidnightCutoffIsKept(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, "rollover:\n  cutoff_hour: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Rollover.CutoffHour)
}

func TestLoad_BadCutoffEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEDGER_CUTOFF_HOUR", "five")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	tests := []struct {
		name string
		yaml string
	}{
		{"cutoff out of range", "rollover:\n  cutoff_hour: 24\n"},
		{"unknown driver", "storage:\n  driver: postgres\n"},
		{"token without chat", "telegram:\n  bot_token: abc\n"},
		{"unknown timezone", "app:\n  timezone: Mars/Olympus\n"},
		{"negative price", "modules:\n  pool:\n    - label: Piscine\n      unit_price: -1\n"},
		{"blank band color", "modules:\n  wristbands:\n    - stock_in: 10\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.yaml))
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTemplates_Overrides(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeConfig(t, `
modules:
  snackbar:
    - label: Sachet
      unit_price: 250
  wristbands:
    - color: Vert
      stock_in: 80
      tracking_in: V01
`))
	require.NoError(t, err)

	tpl := cfg.Templates()
	snack := tpl.Template(model.KindSnackbar)
	require.Len(t, snack.Sales.Items, 1)
	assert.Equal(t, "Sachet", snack.Sales.Items[0].Label)
	assert.Equal(t, "250", snack.Sales.Items[0].UnitPrice.String())

	bands := tpl.Template(model.KindWristbands)
	require.Len(t, bands.Wristbands.Rows, 1)
	assert.Equal(t, "Vert", bands.Wristbands.Rows[0].Color)
	assert.Equal(t, int64(80), bands.Wristbands.Rows[0].StockIn)

	pool := tpl.Template(model.KindPool)
	assert.Len(t, pool.Sales.Items, 10, "unconfigured modules keep the default price list")
}
