// -----------------------------------------------------------------------
// Admission - Synchronous alert intake ahead of asynchronous processing
// -----------------------------------------------------------------------

package research

import (
	"context"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medeor/internal/models"
	"github.com/ternarybob/medeor/internal/services/ranking"
	"github.com/ternarybob/medeor/internal/services/registry"
)

// Admission is the synchronous intake path: parse, validate, rank,
// register. Accepted alerts get a detached processing goroutine; the
// caller is never blocked on external collaborators.
type Admission struct {
	ranker         *ranking.Ranker
	registry       *registry.Registry
	processor      *Processor
	repositories   []*models.RepositoryProfile
	ignorePatterns []string
	logger         arbor.ILogger
}

// NewAdmission wires the intake path over the configured repository set
func NewAdmission(ranker *ranking.Ranker, reg *registry.Registry, processor *Processor, repositories []*models.RepositoryProfile, ignorePatterns []string, logger arbor.ILogger) *Admission {
	return &Admission{
		ranker:         ranker,
		registry:       reg,
		processor:      processor,
		repositories:   repositories,
		ignorePatterns: ignorePatterns,
		logger:         logger,
	}
}

// Admit consumes one raw alert payload. It returns the created job when
// the alert is accepted, nil when the alert is validly skipped, and an
// error when the payload cannot be parsed. Skipped alerts leave no trace
// beyond the nil result.
func (a *Admission) Admit(payload map[string]interface{}) (*models.ResearchJob, error) {
	alert, err := models.ParseAlert(payload)
	if err != nil {
		return nil, err
	}

	if !alert.ShouldProcess(a.ignorePatterns) {
		return nil, nil
	}

	candidates := a.ranker.Rank(alert, a.repositories)

	job := a.registry.Create(alert, candidates)

	go a.processor.Run(context.Background(), job)

	return job, nil
}
