package models

import (
	"time"

	"github.com/google/uuid"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

type RunTrigger string

const (
	TriggerSchedule  RunTrigger = "schedule"
	TriggerBootstrap RunTrigger = "bootstrap"
	TriggerManual    RunTrigger = "manual"
	TriggerCLI       RunTrigger = "cli"
)

// SyncRun records the outcome of one sync. Kept in memory only.
type SyncRun struct {
	ID            uuid.UUID  `json:"id"`
	Trigger       RunTrigger `json:"trigger"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	Status        RunStatus  `json:"status"`
	ListingsFound int        `json:"listings_found"`
	Shape         string     `json:"response_shape"`
	FetchError    string     `json:"fetch_error,omitempty"`
	Error         string     `json:"error,omitempty"`
}
