package models

import "time"

// AuditRecord is one persisted log entry for a reasoning-agent invocation
type AuditRecord struct {
	ID         string    `json:"id" badgerhold:"key"`
	JobID      string    `json:"job_id" badgerhold:"index"`
	Repository string    `json:"repository"`
	Model      string    `json:"model"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	Timestamp  time.Time `json:"timestamp"`
}
