// -----------------------------------------------------------------------
// Research Job - Lifecycle state for one alert investigation
// -----------------------------------------------------------------------

package models

import (
	"sync"
	"time"
)

// JobStatus represents the stage a research job is in
type JobStatus string

const (
	JobStatusPending         JobStatus = "pending"
	JobStatusAnalyzing       JobStatus = "analyzing"
	JobStatusGeneratingFixes JobStatus = "generating_fixes"
	JobStatusCreatingPRs     JobStatus = "creating_prs"
	JobStatusCompleted       JobStatus = "completed"
	JobStatusFailed          JobStatus = "failed"
)

// ResearchJob tracks one alert investigation through its stages. The job
// processor is the single writer; all other callers read through
// Snapshot(). Jobs start pending and end in exactly one of the terminal
// states (completed, failed); no state is ever revisited and terminal
// jobs are never mutated again.
type ResearchJob struct {
	mu sync.RWMutex

	id             string
	alert          *AlertRecord
	candidateRepos []RankedRepository
	status         JobStatus
	changeRequests []string
	errorMessage   string
	createdAt      time.Time
	completedAt    *time.Time
}

// JobSnapshot is an immutable point-in-time view of a research job
type JobSnapshot struct {
	ID             string             `json:"job_id"`
	Alert          AlertRecord        `json:"alert"`
	CandidateRepos []RankedRepository `json:"candidate_repositories"`
	Status         JobStatus          `json:"status"`
	ChangeRequests []string           `json:"change_requests"`
	ErrorMessage   string             `json:"error_message,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

// NewResearchJob creates a pending job for an alert and its ranked
// candidate repositories. Alert and candidates are fixed at creation.
func NewResearchJob(id string, alert *AlertRecord, candidates []RankedRepository) *ResearchJob {
	return &ResearchJob{
		id:             id,
		alert:          alert,
		candidateRepos: candidates,
		status:         JobStatusPending,
		changeRequests: []string{},
		createdAt:      time.Now(),
	}
}

// ID returns the job identifier
func (j *ResearchJob) ID() string {
	return j.id
}

// Alert returns the alert that triggered this job
func (j *ResearchJob) Alert() *AlertRecord {
	return j.alert
}

// Candidates returns the ranked candidate repositories, highest score first
func (j *ResearchJob) Candidates() []RankedRepository {
	return j.candidateRepos
}

// Status returns the current job status
func (j *ResearchJob) Status() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.status
}

// stageRank orders the non-terminal stages. Stages only move forward; a
// later candidate re-entering an earlier stage must not be observable.
var stageRank = map[JobStatus]int{
	JobStatusPending:         0,
	JobStatusAnalyzing:       1,
	JobStatusGeneratingFixes: 2,
	JobStatusCreatingPRs:     3,
}

// SetStatus advances the job to a non-terminal stage. Transitions out of
// a terminal state and transitions backwards in stage order are ignored.
func (j *ResearchJob) SetStatus(status JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isTerminalLocked() {
		return
	}
	if stageRank[status] < stageRank[j.status] {
		return
	}
	j.status = status
}

// RecordError records an error message on the job without failing it.
// Per-candidate failures are non-fatal as long as a later candidate
// produces a change request.
func (j *ResearchJob) RecordError(message string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isTerminalLocked() {
		return
	}
	j.errorMessage = message
}

// AddChangeRequest appends a created change-request URL
func (j *ResearchJob) AddChangeRequest(url string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isTerminalLocked() {
		return
	}
	j.changeRequests = append(j.changeRequests, url)
}

// ChangeRequestCount returns the number of change requests created so far
func (j *ResearchJob) ChangeRequestCount() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.changeRequests)
}

// MarkCompleted makes the job terminal with status completed.
// CompletedAt is set exactly once, at the terminal transition.
func (j *ResearchJob) MarkCompleted() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isTerminalLocked() {
		return
	}
	j.status = JobStatusCompleted
	now := time.Now()
	j.completedAt = &now
}

// MarkFailed makes the job terminal with status failed. An empty message
// leaves any previously recorded error in place.
func (j *ResearchJob) MarkFailed(errorMsg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isTerminalLocked() {
		return
	}
	j.status = JobStatusFailed
	if errorMsg != "" {
		j.errorMessage = errorMsg
	}
	now := time.Now()
	j.completedAt = &now
}

// IsTerminal returns true once the job reached completed or failed
func (j *ResearchJob) IsTerminal() bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.isTerminalLocked()
}

func (j *ResearchJob) isTerminalLocked() bool {
	return j.status == JobStatusCompleted || j.status == JobStatusFailed
}

// Snapshot returns an immutable copy of the job state
func (j *ResearchJob) Snapshot() JobSnapshot {
	j.mu.RLock()
	defer j.mu.RUnlock()

	urls := make([]string, len(j.changeRequests))
	copy(urls, j.changeRequests)

	candidates := make([]RankedRepository, len(j.candidateRepos))
	copy(candidates, j.candidateRepos)

	snapshot := JobSnapshot{
		ID:             j.id,
		Alert:          *j.alert,
		CandidateRepos: candidates,
		Status:         j.status,
		ChangeRequests: urls,
		ErrorMessage:   j.errorMessage,
		CreatedAt:      j.createdAt,
	}

	if j.completedAt != nil {
		completedAt := *j.completedAt
		snapshot.CompletedAt = &completedAt
	}

	return snapshot
}
