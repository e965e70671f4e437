// Package recorder keeps an append-only journal of desk events for later review.
package recorder

import (
	"time"

	"ParkLedger/internal/model"

	"github.com/rs/zerolog/log"
)

// RolloverEvent records one daily reset.
type RolloverEvent struct {
	DateKey    string
	CutoffHour int
	At         time.Time
}

// JournalEntry is one row of the finalize journal.
type JournalEntry struct {
	EventID       string           `json:"event_id"`
	Kind          model.ModuleKind `json:"kind"`
	DateKey       string           `json:"date_key"`
	GrossTotal    string           `json:"gross_total"`
	DepositAmount string           `json:"deposit_amount"`
	DayTotal      string           `json:"day_total"`
	At            time.Time        `json:"at"`
}

// Recorder persists desk events. Unlike the ledger it keeps every finalize,
// including the ones a later re-finalize replaced.
type Recorder interface {
	RecordFinalize(ack model.Acknowledgement) error
	RecordRollover(evt RolloverEvent) error
	Finalizations(dateKey string) ([]JournalEntry, error)
	Close() error
}

// Journal adapts a Recorder to the finalize acknowledgement hook.
type Journal struct {
	Recorder Recorder
}

func (j Journal) Acknowledge(ack model.Acknowledgement) {
	if err := j.Recorder.RecordFinalize(ack); err != nil {
		log.Error().Err(err).Str("event_id", ack.EventID).Msg("record finalize event")
	}
}
