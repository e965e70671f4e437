package scheduler

import (
	"context"
	"time"

	"ParkLedger/internal/locale"

	"github.com/rs/zerolog/log"
)

// State is the rollover state for the current day.
type State string

const (
	// Armed means today's reset has not happened yet.
	Armed State = "ARMED"
	// Fired means today's reset has happened.
	Fired State = "FIRED"
)

// MarkerStore persists the date of the last reset.
type MarkerStore interface {
	LoadResetMarker(ctx context.Context) (string, error)
	SaveResetMarker(ctx context.Context, date string) error
}

// Resetter clears the working figures of every module.
type Resetter interface {
	ResetAll()
}

// Rollover clears working state once per calendar day after the cutoff hour.
// The check is level-triggered: it compares the stored marker with today's
// date key on every call, so a check made after downtime still fires and a
// second check the same day is a no-op.
type Rollover struct {
	cutoffHour int
	cache      Resetter
	markers    MarkerStore
	marker     string
	onFire     []func(date string)
}

// NewRollover loads the reset marker. An unreadable marker leaves the rollover armed.
func NewRollover(ctx context.Context, cutoffHour int, cache Resetter, markers MarkerStore) *Rollover {
	r := &Rollover{cutoffHour: cutoffHour, cache: cache, markers: markers}
	m, err := markers.LoadResetMarker(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("reset marker unreadable, rollover armed")
		return r
	}
	r.marker = m
	return r
}

// OnFire registers fn to run after each reset.
func (r *Rollover) OnFire(fn func(date string)) {
	r.onFire = append(r.onFire, fn)
}

// Marker returns the date of the last reset.
func (r *Rollover) Marker() string { return r.marker }

// CutoffHour returns the configured cutoff.
func (r *Rollover) CutoffHour() int { return r.cutoffHour }

// State reports whether today's reset has happened at now.
func (r *Rollover) State(now time.Time) State {
	if r.marker == locale.DateKey(now) {
		return Fired
	}
	return Armed
}

// Check fires the reset when now is at or past the cutoff hour and today's
// reset has not happened. It reports whether it fired.
func (r *Rollover) Check(ctx context.Context, now time.Time) bool {
	today := locale.DateKey(now)
	if now.Hour() < r.cutoffHour || r.marker == today {
		return false
	}

	r.cache.ResetAll()
	r.marker = today
	if err := r.markers.SaveResetMarker(ctx, today); err != nil {
		log.Error().Err(err).Str("date", today).Msg("persist reset marker")
	}
	log.Info().Str("date", today).Int("cutoff_hour", r.cutoffHour).Msg("daily rollover fired")

	for _, fn := range r.onFire {
		fn(today)
	}
	return true
}
