// Package ledger holds the per-day record of finalized module reports.
//
// The Store is not safe for concurrent use; every call is expected to run on
// the service event loop.
package ledger

import (
	"context"
	"sort"
	"time"

	"ParkLedger/internal/locale"
	"ParkLedger/internal/model"
	"ParkLedger/internal/store"

	"github.com/rs/zerolog/log"
)

// Observer is notified about ledger writes.
type Observer interface {
	Upserted(rec model.DailyRecord, kind model.ModuleKind)
	PersistFailed(err error)
}

// Store is the in-memory ledger, written through to a Backend on every upsert.
type Store struct {
	records   map[string]model.DailyRecord
	backend   store.Backend
	loc       *time.Location
	observers []Observer
	lastErr   error
}

// Open loads the ledger from backend. A backend that cannot be read yields an
// empty ledger rather than an error.
func Open(ctx context.Context, backend store.Backend, loc *time.Location, observers ...Observer) *Store {
	if loc == nil {
		loc = time.Local
	}
	s := &Store{
		records:   make(map[string]model.DailyRecord),
		backend:   backend,
		loc:       loc,
		observers: observers,
	}

	loaded, err := backend.LoadLedger(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("ledger history unreadable, starting with an empty ledger")
		return s
	}
	for key, rec := range loaded {
		if _, err := locale.ParseDateKey(key, loc); err != nil {
			log.Warn().Str("date", key).Msg("skipping ledger entry with invalid date key")
			continue
		}
		rec.DateKey = key
		if rec.ModuleReports == nil {
			rec.ModuleReports = make(map[model.ModuleKind]model.ModuleReport)
		}
		rec.Recompute()
		s.records[key] = rec
	}
	log.Info().Int("days", len(s.records)).Msg("ledger loaded")
	return s
}

// Upsert merges report into the record of dateKey, creating the record on the
// first finalize of that day, and replaces any earlier report of kind.
func (s *Store) Upsert(dateKey string, kind model.ModuleKind, report model.ModuleReport) model.DailyRecord {
	rec, ok := s.records[dateKey]
	if !ok {
		display := dateKey
		if day, err := locale.ParseDateKey(dateKey, s.loc); err == nil {
			display = locale.DisplayDate(day)
		}
		rec = model.DailyRecord{
			DateKey:       dateKey,
			DisplayDate:   display,
			ModuleReports: make(map[model.ModuleKind]model.ModuleReport),
		}
	} else {
		rec = rec.Clone()
	}

	report.Kind = kind
	rec.ModuleReports[kind] = report
	rec.Recompute()
	s.records[dateKey] = rec

	for _, o := range s.observers {
		o.Upserted(rec, kind)
	}
	s.persist()
	return rec.Clone()
}

// Get returns the record of dateKey.
func (s *Store) Get(dateKey string) (model.DailyRecord, bool) {
	rec, ok := s.records[dateKey]
	if !ok {
		return model.DailyRecord{}, false
	}
	return rec.Clone(), true
}

// ListAll returns every record in no particular order.
func (s *Store) ListAll() []model.DailyRecord {
	out := make([]model.DailyRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	return out
}

// LastPersistError is the error of the most recent write, nil once a write succeeds.
func (s *Store) LastPersistError() error {
	return s.lastErr
}

// persist writes the whole ledger. A failure leaves the in-memory state
// authoritative; the next upsert writes the full snapshot again.
func (s *Store) persist() {
	err := s.backend.SaveLedger(context.Background(), s.ListAll())
	s.lastErr = err
	if err == nil {
		return
	}
	log.Error().Err(err).Msg("persist ledger")
	for _, o := range s.observers {
		o.PersistFailed(err)
	}
}

// SortNewestFirst orders records by date key, most recent day first.
func SortNewestFirst(records []model.DailyRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].DateKey > records[j].DateKey
	})
}
