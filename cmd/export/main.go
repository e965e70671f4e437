// Command export writes the ledger history to an Excel workbook without
// going through the running service.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"ParkLedger/internal/config"
	"ParkLedger/internal/export"
	"ParkLedger/internal/ledger"
	"ParkLedger/internal/logging"
	"ParkLedger/internal/store"

	"github.com/rs/zerolog/log"
)

func main() {
	out := flag.String("o", "journal-"+time.Now().Format("2006-01-02")+".xlsx", "output workbook path")
	flag.Parse()

	logging.Setup("info", "console")

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if cfg.Storage.Driver == store.DriverMemory {
		log.Fatal().Msg("storage.driver memory keeps no history to export")
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone")
	}

	backend, err := store.Open(cfg.Storage.Driver, cfg.Storage.SQLitePath, cfg.Storage.LedgerFile)
	if err != nil {
		log.Fatal().Err(err).Msg("open storage")
	}
	defer backend.Close()

	led := ledger.Open(context.Background(), backend, loc)
	records := led.ListAll()
	if err := export.SaveAs(*out, records); err != nil {
		log.Fatal().Err(err).Msg("export workbook")
	}
	log.Info().Int("days", len(records)).Str("path", *out).Msg("workbook written")
}
