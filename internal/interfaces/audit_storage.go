package interfaces

import (
	"context"

	"github.com/ternarybob/medeor/internal/models"
)

// AuditStorage persists a record per reasoning-agent invocation for
// operability. Job state itself never touches disk; only the audit trail
// is stored.
type AuditStorage interface {
	// LogInvocation appends one audit record
	LogInvocation(ctx context.Context, record *models.AuditRecord) error

	// GetRecent returns the most recent audit records, newest first
	GetRecent(ctx context.Context, limit int) ([]models.AuditRecord, error)

	// CountByJob returns the number of agent invocations for a job
	CountByJob(ctx context.Context, jobID string) (int, error)
}
