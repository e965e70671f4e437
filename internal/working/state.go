package working

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"ParkLedger/internal/model"
)

// Snapshot is the on-disk form of the cache.
type Snapshot struct {
	Day       string                                  `json:"day"`
	States    map[model.ModuleKind]model.WorkingState `json:"states"`
	UpdatedAt time.Time                               `json:"updated_at"`
}

// LoadSnapshot reads the cache snapshot. Returns an empty snapshot if the file doesn't exist.
func LoadSnapshot(filePath string) (*Snapshot, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Snapshot{States: map[model.ModuleKind]model.WorkingState{}}, nil
		}
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, err
	}
	if snap.States == nil {
		snap.States = map[model.ModuleKind]model.WorkingState{}
	}
	return &snap, nil
}

// SaveSnapshot writes the cache snapshot to a JSON file through a temp file
// and a rename, so a crash mid-write leaves the previous snapshot intact.
func SaveSnapshot(filePath string, snap *Snapshot) error {
	snap.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return err
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
