package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"ParkLedger/internal/api"
	"ParkLedger/internal/config"
	"ParkLedger/internal/eventloop"
	"ParkLedger/internal/finalize"
	"ParkLedger/internal/ledger"
	"ParkLedger/internal/logging"
	"ParkLedger/internal/metrics"
	"ParkLedger/internal/notifier"
	"ParkLedger/internal/recorder"
	"ParkLedger/internal/scheduler"
	"ParkLedger/internal/service"
	"ParkLedger/internal/store"
	"ParkLedger/internal/working"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	logging.Setup("info", "console")

	// Load config
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
	logging.Setup(cfg.App.LogLevel, cfg.App.LogFormat)
	log.Info().Str("config", cfgPath).Msg("ParkLedger starting")

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("load timezone")
	}
	now := func() time.Time { return time.Now().In(loc) }

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init storage
	if err := ensureDataDirs(cfg); err != nil {
		log.Fatal().Err(err).Msg("create data directory")
	}
	backend, err := store.Open(cfg.Storage.Driver, cfg.Storage.SQLitePath, cfg.Storage.LedgerFile)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("open storage")
	}
	defer backend.Close()

	// Init recorder
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Storage.Driver == store.DriverSQLite {
		sr, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.NotificationsEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	} else {
		log.Info().Msg("telegram not configured, notifications disabled")
	}

	m := metrics.New()
	observers := []ledger.Observer{m}
	var acks []finalize.Acknowledger
	if tn != nil {
		observers = append(observers, notifier.NewPersistAlerts(tn, 10*time.Minute, now))
		acks = append(acks, tn)
	}

	// Init desk core
	loop := eventloop.New(64)
	cache := working.NewCache(cfg.Storage.WorkingFile, cfg.Templates(), now)
	led := ledger.Open(ctx, backend, loc, observers...)
	roll := scheduler.NewRollover(ctx, cfg.Rollover.CutoffHour, cache, backend)
	if tn != nil {
		roll.OnFire(func(date string) {
			tn.SendAsync(notifier.FormatRollover(date, cfg.Rollover.CutoffHour))
		})
	}

	svc := service.New(service.Deps{
		Loop:          loop,
		Ledger:        led,
		Cache:         cache,
		Rollover:      roll,
		Banner:        finalize.NewBanner(cfg.HTTP.AckDuration),
		Metrics:       m,
		Recorder:      rec,
		Acknowledgers: acks,
		Location:      loc,
		Now:           now,
	})

	loopDone := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(loopDone)
	}()

	// Init scheduler; a nil interface keeps the summary job silent.
	var sender scheduler.Sender
	if tn != nil {
		sender = tn
	}
	sched := scheduler.NewScheduler(ctx, svc, sender, loc)
	if err := sched.RegisterAll(cfg.Rollover.CheckEvery, cfg.Rollover.SummaryCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, svc.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// Start HTTP server
	if cfg.App.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(api.NewHandler(svc), m),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	log.Info().Int("cutoff_hour", cfg.Rollover.CutoffHour).Str("storage", cfg.Storage.Driver).Msg("ParkLedger is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	sched.Stop()
	cancel()
	<-loopDone
	log.Info().Msg("ParkLedger stopped")
}

func ensureDataDirs(cfg *config.Config) error {
	var paths []string
	switch cfg.Storage.Driver {
	case store.DriverSQLite:
		paths = append(paths, cfg.Storage.SQLitePath)
	case store.DriverFile:
		paths = append(paths, cfg.Storage.LedgerFile)
	}
	paths = append(paths, cfg.Storage.WorkingFile)
	for _, p := range paths {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
	}
	return nil
}
