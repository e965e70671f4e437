// Package service is the desk facade: every read and write of the ledger, the
// working-state cache and the rollover runs here, on the event loop.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ParkLedger/internal/deposit"
	"ParkLedger/internal/eventloop"
	"ParkLedger/internal/finalize"
	"ParkLedger/internal/ledger"
	"ParkLedger/internal/locale"
	"ParkLedger/internal/metrics"
	"ParkLedger/internal/model"
	"ParkLedger/internal/recorder"
	"ParkLedger/internal/scheduler"
	"ParkLedger/internal/working"

	"github.com/rs/zerolog/log"
)

// ErrInvalidDate is returned for a day lookup whose key is not YYYY-MM-DD.
var ErrInvalidDate = errors.New("invalid date key")

// Deps are the components the service drives. Metrics and Recorder are optional.
type Deps struct {
	Loop          *eventloop.Loop
	Ledger        *ledger.Store
	Cache         *working.Cache
	Rollover      *scheduler.Rollover
	Banner        *finalize.Banner
	Metrics       *metrics.Metrics
	Recorder      recorder.Recorder
	Acknowledgers []finalize.Acknowledger
	Location      *time.Location
	Now           func() time.Time
}

// Service exposes the desk operations to the API, the scheduler and the chat.
type Service struct {
	loop     *eventloop.Loop
	ledger   *ledger.Store
	cache    *working.Cache
	rollover *scheduler.Rollover
	banner   *finalize.Banner
	coord    *finalize.Coordinator
	metrics  *metrics.Metrics
	recorder recorder.Recorder
	loc      *time.Location
	now      func() time.Time
	lastAck  *model.Acknowledgement
}

// Status is the desk state shown by the status view.
type Status struct {
	Today            string                 `json:"today"`
	DisplayDate      string                 `json:"display_date"`
	ResetMarker      string                 `json:"reset_marker"`
	RolloverState    scheduler.State        `json:"rollover_state"`
	CutoffHour       int                    `json:"cutoff_hour"`
	Banner           *model.Acknowledgement `json:"banner,omitempty"`
	LastPersistError string                 `json:"last_persist_error,omitempty"`
}

// FinalizeResult is what a successful finalize returns to the module.
type FinalizeResult struct {
	Report model.ModuleReport    `json:"report"`
	Ack    model.Acknowledgement `json:"acknowledgement"`
	Record model.DailyRecord     `json:"record"`
}

// New creates the service and its finalize coordinator.
func New(d Deps) *Service {
	loc := d.Location
	if loc == nil {
		loc = time.Local
	}
	now := d.Now
	if now == nil {
		now = func() time.Time { return time.Now().In(loc) }
	}
	rec := d.Recorder
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	banner := d.Banner
	if banner == nil {
		banner = finalize.NewBanner(3 * time.Second)
	}

	s := &Service{
		loop:     d.Loop,
		ledger:   d.Ledger,
		cache:    d.Cache,
		rollover: d.Rollover,
		banner:   banner,
		metrics:  d.Metrics,
		recorder: rec,
		loc:      loc,
		now:      now,
	}

	acks := []finalize.Acknowledger{banner, ackFunc(s.captureAck), recorder.Journal{Recorder: rec}}
	acks = append(acks, d.Acknowledgers...)
	s.coord = finalize.NewCoordinator(d.Ledger, now, acks...)

	d.Rollover.OnFire(func(date string) {
		if s.metrics != nil {
			s.metrics.RecordRollover()
		}
		evt := recorder.RolloverEvent{DateKey: date, CutoffHour: d.Rollover.CutoffHour(), At: s.now()}
		if err := s.recorder.RecordRollover(evt); err != nil {
			log.Error().Err(err).Str("date", date).Msg("record rollover event")
		}
	})
	return s
}

type ackFunc func(model.Acknowledgement)

func (f ackFunc) Acknowledge(ack model.Acknowledgement) { f(ack) }

func (s *Service) captureAck(ack model.Acknowledgement) {
	s.lastAck = &ack
}

// WorkingState returns the module's snapshot, or its template.
func (s *Service) WorkingState(ctx context.Context, kind model.ModuleKind) (model.WorkingState, error) {
	if !kind.Valid() {
		return model.WorkingState{}, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}
	var st model.WorkingState
	err := s.loop.Do(ctx, func() { st = s.cache.Read(kind) })
	return st, err
}

// SaveWorkingState replaces the module's snapshot.
func (s *Service) SaveWorkingState(ctx context.Context, kind model.ModuleKind, state model.WorkingState) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}
	var werr error
	if err := s.loop.Do(ctx, func() { werr = s.cache.Write(kind, state) }); err != nil {
		return err
	}
	return werr
}

// Finalize commits the module's state to today's ledger record. A nil state
// finalizes the cached snapshot.
func (s *Service) Finalize(ctx context.Context, kind model.ModuleKind, state *model.WorkingState) (FinalizeResult, error) {
	if !kind.Valid() {
		return FinalizeResult{}, fmt.Errorf("%w: %q", model.ErrUnknownKind, kind)
	}
	var (
		res  FinalizeResult
		ferr error
	)
	err := s.loop.Do(ctx, func() {
		st := s.cache.Read(kind)
		if state != nil {
			st = state.Clone()
		}
		s.lastAck = nil
		report, err := s.coord.Finalize(kind, st)
		if err != nil {
			ferr = err
			if finalize.IsValidation(err) && s.metrics != nil {
				s.metrics.RecordValidationFailure(kind)
			}
			return
		}
		res.Report = report
		if s.lastAck != nil {
			res.Ack = *s.lastAck
			res.Record, _ = s.ledger.Get(res.Ack.DateKey)
		}
	})
	if err != nil {
		return FinalizeResult{}, err
	}
	return res, ferr
}

// Deposit sums the live working states of the revenue modules.
func (s *Service) Deposit(ctx context.Context) (model.DepositSummary, error) {
	var sum model.DepositSummary
	err := s.loop.Do(ctx, func() {
		snap := s.cache.Snapshot()
		states := make([]model.WorkingState, 0, len(snap))
		for _, kind := range model.AllKinds {
			states = append(states, snap[kind])
		}
		sum = deposit.Aggregate(states...)
	})
	return sum, err
}

// History returns every ledger day, newest first.
func (s *Service) History(ctx context.Context) ([]model.DailyRecord, error) {
	var records []model.DailyRecord
	err := s.loop.Do(ctx, func() { records = s.ledger.ListAll() })
	if err != nil {
		return nil, err
	}
	ledger.SortNewestFirst(records)
	return records, nil
}

// Day returns the ledger record of dateKey.
func (s *Service) Day(ctx context.Context, dateKey string) (model.DailyRecord, bool, error) {
	if _, err := locale.ParseDateKey(dateKey, s.loc); err != nil {
		return model.DailyRecord{}, false, fmt.Errorf("%w: %q", ErrInvalidDate, dateKey)
	}
	var (
		rec model.DailyRecord
		ok  bool
	)
	err := s.loop.Do(ctx, func() { rec, ok = s.ledger.Get(dateKey) })
	return rec, ok, err
}

// Journal returns every finalize recorded for dateKey, replaced ones included.
func (s *Service) Journal(ctx context.Context, dateKey string) ([]recorder.JournalEntry, error) {
	if _, err := locale.ParseDateKey(dateKey, s.loc); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, dateKey)
	}
	var (
		entries []recorder.JournalEntry
		jerr    error
	)
	if err := s.loop.Do(ctx, func() { entries, jerr = s.recorder.Finalizations(dateKey) }); err != nil {
		return nil, err
	}
	return entries, jerr
}

// Status reports the rollover state, the acknowledgement banner and the last
// persistence error.
func (s *Service) Status(ctx context.Context) (Status, error) {
	var st Status
	err := s.loop.Do(ctx, func() {
		now := s.now()
		st = Status{
			Today:         locale.DateKey(now),
			DisplayDate:   locale.DisplayDate(now),
			ResetMarker:   s.rollover.Marker(),
			RolloverState: s.rollover.State(now),
			CutoffHour:    s.rollover.CutoffHour(),
		}
		if ack, ok := s.banner.Active(now); ok {
			st.Banner = &ack
		}
		if perr := s.ledger.LastPersistError(); perr != nil {
			st.LastPersistError = perr.Error()
		}
	})
	return st, err
}

// CheckRollover runs one rollover check and reports whether it fired.
func (s *Service) CheckRollover(ctx context.Context) (bool, error) {
	var fired bool
	err := s.loop.Do(ctx, func() { fired = s.rollover.Check(ctx, s.now()) })
	return fired, err
}
