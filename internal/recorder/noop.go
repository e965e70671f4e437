package recorder

import "ParkLedger/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordFinalize(_ model.Acknowledgement) error { return nil }
func (n *NoopRecorder) RecordRollover(_ RolloverEvent) error         { return nil }
func (n *NoopRecorder) Finalizations(_ string) ([]JournalEntry, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
