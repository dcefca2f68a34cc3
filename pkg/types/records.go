// Package types holds record and event shapes shared across services.
package types

import "time"

// ExecutionStatus tracks a single function invocation.
type ExecutionStatus string

const (
	ExecutionStarted ExecutionStatus = "started"
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailure ExecutionStatus = "failure"
)

// ExecutionRecord is one document in the executions collection.
type ExecutionRecord struct {
	ExecutionID string          `json:"execution_id"`
	Service     string          `json:"service"`
	UserID      string          `json:"user_id,omitempty"`
	TriggerType string          `json:"trigger_type"`
	Status      ExecutionStatus `json:"status"`
	Error       string          `json:"error,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at,omitempty"`
}

// SectionStatus is the per-section state machine driven by the pipeline:
// neutral -> processing -> success | failed.
type SectionStatus string

const (
	SectionNeutral    SectionStatus = "neutral"
	SectionProcessing SectionStatus = "processing"
	SectionSuccess    SectionStatus = "success"
	SectionFailed     SectionStatus = "failed"
)

// IngestionRun is one document in users/{uid}/ingestion_runs. The client polls
// it for per-section progress while the processor works.
type IngestionRun struct {
	RunID          string                   `json:"run_id"`
	UserID         string                   `json:"user_id"`
	UserName       string                   `json:"user_name,omitempty"`
	ArchiveBucket  string                   `json:"archive_bucket"`
	ArchiveObject  string                   `json:"archive_object"`
	RemoteFileName string                   `json:"remote_file_name,omitempty"`
	Statuses       map[string]SectionStatus `json:"statuses"`
	Truncated      bool                     `json:"truncated"`
	Dropped        int                      `json:"dropped"`
	Error          string                   `json:"error,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
	UpdatedAt      time.Time                `json:"updated_at"`
}
