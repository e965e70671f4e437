package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"ParkLedger/internal/model"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

const resetMarkerKey = "reset_marker"

// SQLiteBackend persists the ledger to a SQLite database, one row per day.
type SQLiteBackend struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteBackend opens (or creates) the SQLite database and runs migrations.
func NewSQLiteBackend(dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the export command read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite ledger opened")
	return b, nil
}

func (b *SQLiteBackend) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS daily_records (
			date_key     TEXT PRIMARY KEY,
			display_date TEXT NOT NULL,
			day_total    TEXT NOT NULL,
			payload      TEXT NOT NULL,
			updated_at   INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, s := range stmts {
		if _, err := b.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (b *SQLiteBackend) LoadLedger(ctx context.Context) (map[string]model.DailyRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	rows, err := b.db.QueryContext(ctx, `SELECT date_key, payload FROM daily_records`)
	if err != nil {
		return nil, fmt.Errorf("query daily records: %w", err)
	}
	defer rows.Close()

	out := make(map[string]model.DailyRecord)
	for rows.Next() {
		var key, payload string
		if err := rows.Scan(&key, &payload); err != nil {
			return nil, fmt.Errorf("scan daily record: %w", err)
		}
		var rec model.DailyRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			log.Warn().Err(err).Str("date", key).Msg("skipping malformed ledger row")
			continue
		}
		rec.DateKey = key
		out[key] = rec
	}
	return out, rows.Err()
}

func (b *SQLiteBackend) SaveLedger(ctx context.Context, records []model.DailyRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO daily_records
		(date_key, display_date, day_total, payload, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(date_key) DO UPDATE SET
			display_date = excluded.display_date,
			day_total    = excluded.day_total,
			payload      = excluded.payload,
			updated_at   = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.DateKey, err)
		}
		if _, err := stmt.ExecContext(ctx, rec.DateKey, rec.DisplayDate, rec.DayTotal.String(), string(payload), now); err != nil {
			return fmt.Errorf("upsert record %s: %w", rec.DateKey, err)
		}
	}
	return tx.Commit()
}

func (b *SQLiteBackend) LoadResetMarker(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var v string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, resetMarkerKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (b *SQLiteBackend) SaveResetMarker(ctx context.Context, date string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.db.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, resetMarkerKey, date)
	return err
}

func (b *SQLiteBackend) Close() error {
	log.Info().Msg("closing sqlite ledger")
	return b.db.Close()
}
