package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"ParkLedger/internal/model"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the event journal to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS finalize_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id       TEXT NOT NULL,
			timestamp      INTEGER NOT NULL,
			date_key       TEXT NOT NULL,
			kind           TEXT NOT NULL,
			gross_total    TEXT NOT NULL,
			deposit_amount TEXT NOT NULL,
			day_total      TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_finalize_date ON finalize_events(date_key)`,

		`CREATE TABLE IF NOT EXISTS rollover_events (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			date_key    TEXT NOT NULL,
			cutoff_hour INTEGER NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordFinalize(ack model.Acknowledgement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO finalize_events
		(event_id, timestamp, date_key, kind, gross_total, deposit_amount, day_total)
		VALUES (?,?,?,?,?,?,?)`,
		ack.EventID, ack.At.UnixMilli(), ack.DateKey, string(ack.Kind),
		ack.GrossTotal.String(), ack.DepositAmount.String(), ack.DayTotal.String(),
	)
	return err
}

func (r *SQLiteRecorder) RecordRollover(evt RolloverEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO rollover_events (timestamp, date_key, cutoff_hour) VALUES (?,?,?)`,
		evt.At.UnixMilli(), evt.DateKey, evt.CutoffHour,
	)
	return err
}

// Finalizations returns every finalize of dateKey in the order they happened.
func (r *SQLiteRecorder) Finalizations(dateKey string) ([]JournalEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT event_id, timestamp, date_key, kind, gross_total, deposit_amount, day_total
		FROM finalize_events WHERE date_key = ? ORDER BY id`, dateKey)
	if err != nil {
		return nil, fmt.Errorf("query finalize events: %w", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		var ts int64
		var kind string
		if err := rows.Scan(&e.EventID, &ts, &e.DateKey, &kind, &e.GrossTotal, &e.DepositAmount, &e.DayTotal); err != nil {
			return nil, fmt.Errorf("scan finalize event: %w", err)
		}
		e.Kind = model.ModuleKind(kind)
		e.At = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
