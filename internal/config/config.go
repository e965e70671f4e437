package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata" // app.timezone must resolve on hosts without zoneinfo

	"ParkLedger/internal/model"
	"ParkLedger/internal/store"
	"ParkLedger/internal/working"

	"gopkg.in/yaml.v3"
)

// ItemConfig is one priced line of a sales module.
type ItemConfig struct {
	Label     string `yaml:"label"`
	UnitPrice int64  `yaml:"unit_price"`
}

// BandConfig is one wristband color row.
type BandConfig struct {
	Color      string `yaml:"color"`
	StockIn    int64  `yaml:"stock_in"`
	TrackingIn string `yaml:"tracking_in"`
}

// Config holds all application configuration.
type Config struct {
	App struct {
		Timezone  string `yaml:"timezone"`
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"app"`
	Storage struct {
		Driver      string `yaml:"driver"`
		SQLitePath  string `yaml:"sqlite_path"`
		LedgerFile  string `yaml:"ledger_file"`
		WorkingFile string `yaml:"working_file"`
	} `yaml:"storage"`
	Rollover struct {
		CutoffHour  int    `yaml:"cutoff_hour"`
		CheckEvery  string `yaml:"check_every"`
		SummaryCron string `yaml:"summary_cron"`
	} `yaml:"rollover"`
	HTTP struct {
		Addr        string        `yaml:"addr"`
		AckDuration time.Duration `yaml:"ack_duration"`
	} `yaml:"http"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy   string `yaml:"proxy"`
	Modules struct {
		Pool       []ItemConfig `yaml:"pool"`
		Snackbar   []ItemConfig `yaml:"snackbar"`
		Apparel    []ItemConfig `yaml:"apparel"`
		Wristbands []BandConfig `yaml:"wristbands"`
	} `yaml:"modules"`

	// cutoffSet records that cutoff_hour was given explicitly, so 0 (midnight) survives defaults.
	cutoffSet bool
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Rollover.CutoffHour = -1

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}
	if cfg.Rollover.CutoffHour != -1 {
		cfg.cutoffSet = true
	}

	// Environment variable overrides
	if v := os.Getenv("LEDGER_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("LEDGER_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("LEDGER_SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("LEDGER_CUTOFF_HOUR"); v != "" {
		hour, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse LEDGER_CUTOFF_HOUR: %w", err)
		}
		cfg.Rollover.CutoffHour = hour
		cfg.cutoffSet = true
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LEDGER_TIMEZONE"); v != "" {
		cfg.App.Timezone = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.App.LogLevel = v
	}

	// Defaults
	if cfg.App.LogLevel == "" {
		cfg.App.LogLevel = "info"
	}
	if cfg.App.LogFormat == "" {
		cfg.App.LogFormat = "console"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = store.DriverSQLite
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "data/park_ledger.db"
	}
	if cfg.Storage.LedgerFile == "" {
		cfg.Storage.LedgerFile = "data/ledger.json"
	}
	if cfg.Storage.WorkingFile == "" {
		cfg.Storage.WorkingFile = "data/working_state.json"
	}
	if !cfg.cutoffSet {
		cfg.Rollover.CutoffHour = 17
	}
	if cfg.Rollover.CheckEvery == "" {
		cfg.Rollover.CheckEvery = "@every 10s"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
	if cfg.HTTP.AckDuration == 0 {
		cfg.HTTP.AckDuration = 3 * time.Second
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Rollover.CutoffHour < 0 || c.Rollover.CutoffHour > 23 {
		return fmt.Errorf("rollover.cutoff_hour must be between 0 and 23, got %d", c.Rollover.CutoffHour)
	}
	switch c.Storage.Driver {
	case store.DriverSQLite, store.DriverFile, store.DriverMemory:
	default:
		return fmt.Errorf("storage.driver %q is not one of sqlite, file, memory", c.Storage.Driver)
	}
	if c.HTTP.AckDuration < 0 {
		return fmt.Errorf("http.ack_duration must not be negative")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for _, list := range [][]ItemConfig{c.Modules.Pool, c.Modules.Snackbar, c.Modules.Apparel} {
		for _, it := range list {
			if it.Label == "" {
				return fmt.Errorf("modules: item label is required")
			}
			if it.UnitPrice < 0 {
				return fmt.Errorf("modules: unit_price of %q must not be negative", it.Label)
			}
		}
	}
	for _, b := range c.Modules.Wristbands {
		if b.Color == "" {
			return fmt.Errorf("modules.wristbands: color is required")
		}
		if b.StockIn < 0 {
			return fmt.Errorf("modules.wristbands: stock_in of %q must not be negative", b.Color)
		}
	}
	return nil
}

// NotificationsEnabled reports whether Telegram credentials are configured.
func (c *Config) NotificationsEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Location returns the clock the rollover runs on; empty means the host's local time.
func (c *Config) Location() (*time.Location, error) {
	if c.App.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("app.timezone: %w", err)
	}
	return loc, nil
}

// Templates returns the default module sheets with any configured price lists
// or wristband rows swapped in.
func (c *Config) Templates() working.Templates {
	tpl := working.DefaultTemplates()
	sales := map[model.ModuleKind][]ItemConfig{
		model.KindPool:     c.Modules.Pool,
		model.KindSnackbar: c.Modules.Snackbar,
		model.KindApparel:  c.Modules.Apparel,
	}
	for kind, items := range sales {
		if len(items) == 0 {
			continue
		}
		priced := make([]working.PricedItem, 0, len(items))
		for _, it := range items {
			priced = append(priced, working.PricedItem{Label: it.Label, UnitPrice: it.UnitPrice})
		}
		tpl[kind] = working.SalesTemplate(kind, priced)
	}
	if len(c.Modules.Wristbands) > 0 {
		colors := make([]working.BandColor, 0, len(c.Modules.Wristbands))
		for _, b := range c.Modules.Wristbands {
			colors = append(colors, working.BandColor{Color: b.Color, StockIn: b.StockIn, TrackingIn: b.TrackingIn})
		}
		tpl[model.KindWristbands] = working.WristbandTemplate(colors)
	}
	return tpl
}
