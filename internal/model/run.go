package model

import "time"

// RunStatus tracks the lifecycle of a migration run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusComplete  RunStatus = "complete"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// RunSummary holds the counts reported at the end of every run.
type RunSummary struct {
	Files    int `json:"files"`
	Ready    int `json:"ready"`
	Excluded int `json:"excluded"`
	Warned   int `json:"warned"`
	Skipped  int `json:"skipped"`
}

// Run is one invocation of the batch pipeline, persisted for audit.
type Run struct {
	ID        string      `json:"id"`
	Operator  string      `json:"operator"`
	BatchDir  string      `json:"batch_dir"`
	Status    RunStatus   `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
