package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Desk is what the scheduled jobs act on.
type Desk interface {
	CheckRollover(ctx context.Context) (bool, error)
	DailySummary(ctx context.Context) (string, error)
}

// Sender delivers a text message to the operator.
type Sender interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron   *cron.Cron
	Desk   Desk
	Sender Sender
	Ctx    context.Context
}

// NewScheduler creates a new Scheduler. sender may be nil when notifications are disabled.
func NewScheduler(ctx context.Context, desk Desk, sender Sender, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Desk:   desk,
		Sender: sender,
		Ctx:    ctx,
	}
}

// RegisterAll registers the rollover check and, when summarySpec is set, the daily summary.
func (s *Scheduler) RegisterAll(rolloverSpec, summarySpec string) error {
	if _, err := s.Cron.AddFunc(rolloverSpec, s.rolloverTick); err != nil {
		return fmt.Errorf("register rollover check: %w", err)
	}
	if summarySpec == "" {
		return nil
	}
	if _, err := s.Cron.AddFunc(summarySpec, s.summaryTask); err != nil {
		return fmt.Errorf("register daily summary: %w", err)
	}
	return nil
}

// Start runs one rollover check immediately, so a reset missed while the
// process was down happens now, then starts the cron scheduler.
func (s *Scheduler) Start() {
	s.rolloverTick()
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunSummaryNow sends the daily summary immediately.
func (s *Scheduler) RunSummaryNow() {
	s.summaryTask()
}

func (s *Scheduler) rolloverTick() {
	fired, err := s.Desk.CheckRollover(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("rollover check")
		return
	}
	if fired {
		log.Debug().Msg("rollover tick cleared working state")
	}
}

func (s *Scheduler) summaryTask() {
	text, err := s.Desk.DailySummary(s.Ctx)
	if err != nil {
		log.Error().Err(err).Msg("build daily summary")
		return
	}
	s.trySend(text)
}

func (s *Scheduler) trySend(text string) {
	if s.Sender == nil {
		return
	}
	if err := s.Sender.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
