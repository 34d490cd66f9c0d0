// -----------------------------------------------------------------------
// Job Registry - Process-wide store of research jobs keyed by id
// -----------------------------------------------------------------------

package registry

import (
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medeor/internal/common"
	"github.com/ternarybob/medeor/internal/models"
)

// Registry is the process-wide mapping of job id to research job.
// Entries live for the process lifetime; there is no persistence and no
// eviction. Creation and lookup are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	jobs   map[string]*models.ResearchJob
	logger arbor.ILogger
}

// NewRegistry creates an empty job registry
func NewRegistry(logger arbor.ILogger) *Registry {
	return &Registry{
		jobs:   make(map[string]*models.ResearchJob),
		logger: logger,
	}
}

// Create allocates a fresh unique id, inserts a pending job, and returns
// it. An existing id is never overwritten; on the (vanishingly unlikely)
// uuid collision a new id is drawn.
func (r *Registry) Create(alert *models.AlertRecord, candidates []models.RankedRepository) *models.ResearchJob {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := common.NewJobID()
	for r.jobs[id] != nil {
		id = common.NewJobID()
	}

	job := models.NewResearchJob(id, alert, candidates)
	r.jobs[id] = job

	r.logger.Info().
		Str("job_id", id).
		Str("alert", alert.Name).
		Int("candidates", len(candidates)).
		Msg("Research job created")

	return job
}

// Get returns a snapshot of the job, or false when the id is unknown
func (r *Registry) Get(id string) (models.JobSnapshot, bool) {
	r.mu.RLock()
	job := r.jobs[id]
	r.mu.RUnlock()

	if job == nil {
		return models.JobSnapshot{}, false
	}
	return job.Snapshot(), true
}

// List returns snapshots of every job. Order is unspecified but stable
// within a single call.
func (r *Registry) List() []models.JobSnapshot {
	r.mu.RLock()
	jobs := make([]*models.ResearchJob, 0, len(r.jobs))
	for _, job := range r.jobs {
		jobs = append(jobs, job)
	}
	r.mu.RUnlock()

	snapshots := make([]models.JobSnapshot, 0, len(jobs))
	for _, job := range jobs {
		snapshots = append(snapshots, job.Snapshot())
	}
	return snapshots
}

// ActiveCount returns the number of jobs not yet in a terminal state
func (r *Registry) ActiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := 0
	for _, job := range r.jobs {
		if !job.IsTerminal() {
			active++
		}
	}
	return active
}

// CountByStatus returns job counts grouped by status
func (r *Registry) CountByStatus() map[models.JobStatus]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[models.JobStatus]int)
	for _, job := range r.jobs {
		counts[job.Status()]++
	}
	return counts
}
