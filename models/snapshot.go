package models

import (
	"encoding/json"
	"time"
)

// Snapshot is the full persisted inventory, replaced wholesale on each sync.
type Snapshot struct {
	DealerID string     `json:"dealer_id"`
	LastSync *time.Time `json:"last_sync"`
	Count    int        `json:"count"`
	Cars     []Car      `json:"cars"`
}

// EmptySnapshot is what readers see before the first sync has written anything.
func EmptySnapshot() *Snapshot {
	return &Snapshot{Cars: []Car{}}
}

// FindCar returns the car with the exact id, or nil.
func (s *Snapshot) FindCar(id string) *Car {
	for i := range s.Cars {
		if s.Cars[i].ID == id {
			return &s.Cars[i]
		}
	}
	return nil
}

// UnmarshalJSON accepts last_sync with or without a UTC offset.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	aux := struct {
		*plain
		LastSync *isoTime `json:"last_sync"`
	}{plain: (*plain)(s)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.LastSync = nil
	if aux.LastSync != nil {
		t := time.Time(*aux.LastSync)
		s.LastSync = &t
	}
	return nil
}
