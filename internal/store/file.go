package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"ParkLedger/internal/model"

	"github.com/rs/zerolog/log"
)

// fileDocument is the on-disk layout of FileBackend.
type fileDocument struct {
	Records     map[string]json.RawMessage `json:"records"`
	ResetMarker string                     `json:"reset_marker"`
}

// FileBackend keeps the ledger and the reset marker in one JSON document.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

func NewFileBackend(path string) *FileBackend { return &FileBackend{path: path} }

// read returns an empty document when the file is missing or unreadable.
func (f *FileBackend) read() fileDocument {
	doc := fileDocument{Records: map[string]json.RawMessage{}}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", f.path).Msg("ledger file unreadable, starting empty")
		}
		return doc
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", f.path).Msg("ledger file malformed, starting empty")
		return fileDocument{Records: map[string]json.RawMessage{}}
	}
	if doc.Records == nil {
		doc.Records = map[string]json.RawMessage{}
	}
	return doc
}

func (f *FileBackend) write(doc fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

func (f *FileBackend) LoadLedger(_ context.Context) (map[string]model.DailyRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]model.DailyRecord)
	for key, raw := range f.read().Records {
		var rec model.DailyRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			log.Warn().Err(err).Str("date", key).Msg("skipping malformed ledger entry")
			continue
		}
		rec.DateKey = key
		out[key] = rec
	}
	return out, nil
}

func (f *FileBackend) SaveLedger(_ context.Context, records []model.DailyRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.read()
	doc.Records = make(map[string]json.RawMessage, len(records))
	for _, rec := range records {
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", rec.DateKey, err)
		}
		doc.Records[rec.DateKey] = raw
	}
	return f.write(doc)
}

func (f *FileBackend) LoadResetMarker(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read().ResetMarker, nil
}

func (f *FileBackend) SaveResetMarker(_ context.Context, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc := f.read()
	doc.ResetMarker = date
	return f.write(doc)
}

func (f *FileBackend) Close() error { return nil }
