// Package working holds the operator's unsaved sheet of each module.
package working

import (
	"fmt"
	"time"

	"ParkLedger/internal/locale"
	"ParkLedger/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Cache keeps one working state per module. It is not safe for concurrent use;
// callers serialize access through the event loop.
type Cache struct {
	states    map[model.ModuleKind]model.WorkingState
	templates Templates
	filePath  string
	day       string
	now       func() time.Time
}

// NewCache creates a Cache, loading the snapshot file when filePath is set. A
// snapshot written on an earlier day is loaded with its transactional figures
// cleared. An unreadable snapshot starts an empty cache.
func NewCache(filePath string, templates Templates, now func() time.Time) *Cache {
	if templates == nil {
		templates = DefaultTemplates()
	}
	if now == nil {
		now = time.Now
	}
	c := &Cache{
		states:    make(map[model.ModuleKind]model.WorkingState),
		templates: templates,
		filePath:  filePath,
		now:       now,
	}
	if filePath == "" {
		return c
	}

	snap, err := LoadSnapshot(filePath)
	if err != nil {
		log.Warn().Err(err).Str("path", filePath).Msg("working snapshot unreadable, starting from templates")
		return c
	}
	for kind, st := range snap.States {
		st.Kind = kind
		if err := st.CheckShape(); err != nil {
			log.Warn().Err(err).Str("kind", string(kind)).Msg("dropping malformed working state")
			continue
		}
		c.states[kind] = st
	}
	c.day = snap.Day

	if today := locale.DateKey(c.now()); c.day != "" && c.day != today {
		log.Info().Str("snapshot_day", c.day).Str("today", today).Msg("working snapshot is from an earlier day, clearing transactions")
		c.ResetAll()
	}
	return c
}

// Read returns the module's snapshot, or its template if none exists yet.
func (c *Cache) Read(kind model.ModuleKind) model.WorkingState {
	if st, ok := c.states[kind]; ok {
		return st.Clone()
	}
	return c.templates.Template(kind)
}

// Write replaces the module's snapshot. Only the shape is checked; field
// values are the editing module's business until finalize.
func (c *Cache) Write(kind model.ModuleKind, state model.WorkingState) error {
	if state.Kind == "" {
		state.Kind = kind
	}
	if state.Kind != kind {
		return fmt.Errorf("%w: state for %s written to %s", model.ErrVariantMismatch, state.Kind, kind)
	}
	if err := state.CheckShape(); err != nil {
		return err
	}
	c.states[kind] = state.Clone()
	c.save()
	return nil
}

// ResetAll zeroes the transactional fields of every cached module and keeps
// the configured structure: labels, prices, wristband colors and stock in.
func (c *Cache) ResetAll() {
	for kind, st := range c.states {
		c.states[kind] = resetState(st)
	}
	c.save()
}

// Snapshot returns a copy of every module's current state, templates included.
func (c *Cache) Snapshot() map[model.ModuleKind]model.WorkingState {
	out := make(map[model.ModuleKind]model.WorkingState, len(model.AllKinds))
	for _, kind := range model.AllKinds {
		out[kind] = c.Read(kind)
	}
	return out
}

func (c *Cache) save() {
	c.day = locale.DateKey(c.now())
	if c.filePath == "" {
		return
	}
	snap := &Snapshot{Day: c.day, States: c.states}
	if err := SaveSnapshot(c.filePath, snap); err != nil {
		log.Error().Err(err).Str("path", c.filePath).Msg("save working snapshot")
	}
}

func resetState(st model.WorkingState) model.WorkingState {
	out := st.Clone()
	if out.Sales != nil {
		for i := range out.Sales.Items {
			out.Sales.Items[i].Quantity = 0
		}
		for p := range out.Sales.MobileMoney {
			out.Sales.MobileMoney[p] = decimal.Zero
		}
		out.Sales.Expenses = decimal.Zero
		out.Sales.ExpenseNote = ""
	}
	if out.Wristbands != nil {
		for i := range out.Wristbands.Rows {
			out.Wristbands.Rows[i].StockOut = 0
			out.Wristbands.Rows[i].TrackingOut = ""
			out.Wristbands.Rows[i].TrackingRemaining = ""
		}
	}
	return out
}
