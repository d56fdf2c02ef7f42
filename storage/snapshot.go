package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dealer_sync/models"
)

// SnapshotFile persists the inventory snapshot as one JSON document.
// Writes are a plain overwrite; concurrent writers race and the last one wins.
type SnapshotFile struct {
	path string
}

func NewSnapshotFile(path string) *SnapshotFile {
	return &SnapshotFile{path: path}
}

func (s *SnapshotFile) Path() string {
	return s.path
}

func (s *SnapshotFile) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the snapshot from disk. A missing file yields an empty snapshot.
func (s *SnapshotFile) Load() (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.EmptySnapshot(), nil
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.path, err)
	}
	if snap.Cars == nil {
		snap.Cars = []models.Car{}
	}
	return &snap, nil
}

// Save writes snap to disk, creating the parent directory, and returns the bytes written.
func (s *SnapshotFile) Save(snap *models.Snapshot) ([]byte, error) {
	data, err := Encode(snap)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}
	return data, nil
}

// Encode renders a snapshot as indented UTF-8 JSON without HTML escaping.
func Encode(snap *models.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
