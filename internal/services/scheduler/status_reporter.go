// -----------------------------------------------------------------------
// Status Reporter - Periodic registry status logging
// -----------------------------------------------------------------------

package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/medeor/internal/models"
	"github.com/ternarybob/medeor/internal/services/registry"
)

// StatusReporter periodically logs job counts by status so operators can
// see pipeline health without polling the HTTP surface.
type StatusReporter struct {
	registry *registry.Registry
	cron     *cron.Cron
	logger   arbor.ILogger
}

// NewStatusReporter creates a status reporter over the job registry
func NewStatusReporter(reg *registry.Registry, logger arbor.ILogger) *StatusReporter {
	return &StatusReporter{
		registry: reg,
		cron:     cron.New(),
		logger:   logger,
	}
}

// Start schedules periodic status reports. schedule accepts standard
// cron expressions and descriptors like "@every 5m".
func (s *StatusReporter) Start(schedule string) error {
	if schedule == "" {
		schedule = "@every 5m"
	}

	_, err := s.cron.AddFunc(schedule, func() {
		s.report()
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info().
		Str("schedule", schedule).
		Msg("Registry status reporter started")

	return nil
}

// Stop stops the reporter
func (s *StatusReporter) Stop() {
	s.cron.Stop()
	s.logger.Info().Msg("Registry status reporter stopped")
}

func (s *StatusReporter) report() {
	counts := s.registry.CountByStatus()

	total := 0
	for _, count := range counts {
		total += count
	}

	s.logger.Info().
		Int("total", total).
		Int("pending", counts[models.JobStatusPending]).
		Int("analyzing", counts[models.JobStatusAnalyzing]).
		Int("generating_fixes", counts[models.JobStatusGeneratingFixes]).
		Int("creating_prs", counts[models.JobStatusCreatingPRs]).
		Int("completed", counts[models.JobStatusCompleted]).
		Int("failed", counts[models.JobStatusFailed]).
		Msg("Research job registry status")
}
