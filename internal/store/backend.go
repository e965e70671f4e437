package store

import (
	"context"
	"fmt"

	"ParkLedger/internal/model"
)

// Backend persists the ledger and the rollover reset marker.
type Backend interface {
	// LoadLedger returns every persisted day keyed by date. Rows that cannot be
	// decoded are skipped.
	LoadLedger(ctx context.Context) (map[string]model.DailyRecord, error)
	// SaveLedger writes a full snapshot of the ledger.
	SaveLedger(ctx context.Context, records []model.DailyRecord) error
	LoadResetMarker(ctx context.Context) (string, error)
	SaveResetMarker(ctx context.Context, date string) error
	Close() error
}

// Drivers accepted by Open.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

// Open returns the backend selected by driver.
func Open(driver, sqlitePath, filePath string) (Backend, error) {
	switch driver {
	case DriverSQLite:
		return NewSQLiteBackend(sqlitePath)
	case DriverFile:
		return NewFileBackend(filePath), nil
	case DriverMemory:
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
