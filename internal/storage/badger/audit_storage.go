package badger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/medeor/internal/interfaces"
	"github.com/ternarybob/medeor/internal/models"
)

// AuditStorage implements the agent-invocation audit trail on Badger
type AuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAuditStorage creates an AuditStorage instance
func NewAuditStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AuditStorage {
	return &AuditStorage{
		db:     db,
		logger: logger,
	}
}

// LogInvocation appends one audit record, assigning an id when missing
func (s *AuditStorage) LogInvocation(ctx context.Context, record *models.AuditRecord) error {
	if record.ID == "" {
		record.ID = "audit_" + uuid.New().String()
	}

	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return fmt.Errorf("failed to insert audit record: %w", err)
	}
	return nil
}

// GetRecent returns the most recent audit records, newest first
func (s *AuditStorage) GetRecent(ctx context.Context, limit int) ([]models.AuditRecord, error) {
	var records []models.AuditRecord
	query := (&badgerhold.Query{}).SortBy("Timestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to query audit records: %w", err)
	}
	return records, nil
}

// CountByJob returns the number of agent invocations recorded for a job
func (s *AuditStorage) CountByJob(ctx context.Context, jobID string) (int, error) {
	count, err := s.db.Store().Count(&models.AuditRecord{}, badgerhold.Where("JobID").Eq(jobID))
	if err != nil {
		return 0, fmt.Errorf("failed to count audit records: %w", err)
	}
	return int(count), nil
}
