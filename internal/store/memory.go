package store

import (
	"context"
	"encoding/json"
	"sync"

	"ParkLedger/internal/model"
)

// MemoryBackend keeps the serialized ledger in memory. Used in tests and when
// storage.driver is "memory".
type MemoryBackend struct {
	mu     sync.Mutex
	ledger []byte
	marker string
}

func NewMemoryBackend() *MemoryBackend { return &MemoryBackend{} }

func (m *MemoryBackend) LoadLedger(_ context.Context) (map[string]model.DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return decodeRecords(m.ledger)
}

func (m *MemoryBackend) SaveLedger(_ context.Context, records []model.DailyRecord) error {
	data, err := encodeRecords(records)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.ledger = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) LoadResetMarker(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.marker, nil
}

func (m *MemoryBackend) SaveResetMarker(_ context.Context, date string) error {
	m.mu.Lock()
	m.marker = date
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

func encodeRecords(records []model.DailyRecord) ([]byte, error) {
	byKey := make(map[string]model.DailyRecord, len(records))
	for _, r := range records {
		byKey[r.DateKey] = r
	}
	return json.Marshal(byKey)
}

// decodeRecords treats empty input as an empty ledger.
func decodeRecords(data []byte) (map[string]model.DailyRecord, error) {
	out := make(map[string]model.DailyRecord)
	if len(data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return make(map[string]model.DailyRecord), err
	}
	return out, nil
}
