// -----------------------------------------------------------------------
// Job Processor - Drives a research job through its lifecycle
// -----------------------------------------------------------------------

package research

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medeor/internal/interfaces"
	"github.com/ternarybob/medeor/internal/models"
)

// maxCandidatesProcessed caps how many ranked candidates a single job
// investigates. Ranking may surface up to 3; processing stops after 2.
const maxCandidatesProcessed = 2

const hostUnavailableMessage = "repository host not configured"

const noChangeRequestsMessage = "no change requests created"

// Processor runs accepted research jobs to completion. Each job is
// processed on its own goroutine and is strictly sequential internally;
// the processor is the only writer of job state.
type Processor struct {
	host         interfaces.RepositoryHost
	agent        interfaces.ReasoningAgent
	audit        interfaces.AuditStorage
	workspaceDir string
	logger       arbor.ILogger
}

// NewProcessor creates a job processor. host may be nil when no
// source-control credentials are configured; jobs then fail immediately.
// audit may be nil when the audit store is disabled.
func NewProcessor(host interfaces.RepositoryHost, agent interfaces.ReasoningAgent, audit interfaces.AuditStorage, workspaceDir string, logger arbor.ILogger) *Processor {
	return &Processor{
		host:         host,
		agent:        agent,
		audit:        audit,
		workspaceDir: workspaceDir,
		logger:       logger,
	}
}

// Run drives one job from pending to a terminal state. It is meant to be
// launched on its own goroutine by the admission path and never returns
// an error; every failure ends up on the job itself.
func (p *Processor) Run(ctx context.Context, job *models.ResearchJob) {
	alert := job.Alert()

	if p.host == nil {
		p.logger.Warn().Str("job_id", job.ID()).Msg("No repository host configured, failing job")
		job.MarkFailed(hostUnavailableMessage)
		return
	}

	job.SetStatus(models.JobStatusAnalyzing)

	candidates := job.Candidates()
	if len(candidates) == 0 {
		job.MarkFailed("no relevant repositories found")
		return
	}

	limit := len(candidates)
	if limit > maxCandidatesProcessed {
		limit = maxCandidatesProcessed
	}

	problemReport := FormatProblemReport(alert)

	for i := 0; i < limit; i++ {
		candidate := candidates[i]
		repo := candidate.Repository

		p.logger.Info().
			Str("job_id", job.ID()).
			Str("repository", repo.FullName()).
			Float64("score", candidate.Score).
			Msg("Investigating candidate repository")

		if err := p.processCandidate(ctx, job, repo, problemReport); err != nil {
			p.logger.Warn().
				Str("job_id", job.ID()).
				Str("repository", repo.FullName()).
				Err(err).
				Msg("Candidate processing failed")
			job.RecordError(err.Error())
		}
	}

	if job.ChangeRequestCount() > 0 {
		job.MarkCompleted()
		p.logger.Info().
			Str("job_id", job.ID()).
			Int("change_requests", job.ChangeRequestCount()).
			Msg("Research job completed")
		return
	}

	// The generic message only applies when no candidate recorded a more
	// specific error.
	if job.Snapshot().ErrorMessage != "" {
		job.MarkFailed("")
	} else {
		job.MarkFailed(noChangeRequestsMessage)
	}
	p.logger.Warn().Str("job_id", job.ID()).Msg("Research job failed, no change requests created")
}

// processCandidate clones one repository into an ephemeral workspace,
// runs the reasoning agent over it, and submits any extracted fixes as a
// change request. Errors are returned for recording; they never abort
// the remaining candidates.
func (p *Processor) processCandidate(ctx context.Context, job *models.ResearchJob, repo *models.RepositoryProfile, problemReport string) error {
	workspace, err := os.MkdirTemp(p.workspaceDir, "medeor-workspace-")
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	defer func() {
		if removeErr := os.RemoveAll(workspace); removeErr != nil {
			p.logger.Warn().Str("workspace", workspace).Err(removeErr).Msg("Failed to remove workspace")
		}
	}()

	if err := p.host.Clone(ctx, repo, workspace); err != nil {
		return fmt.Errorf("failed to clone %s: %w", repo.FullName(), err)
	}

	analysisStart := time.Now()
	result, err := p.agent.Analyze(ctx, problemReport, workspace)
	p.logInvocation(ctx, job.ID(), repo.FullName(), time.Since(analysisStart), err)
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", repo.FullName(), err)
	}

	job.SetStatus(models.JobStatusGeneratingFixes)

	proposals := ExtractFixProposals(result)
	if len(proposals) == 0 {
		return fmt.Errorf("no fix proposals extracted for %s", repo.FullName())
	}

	job.SetStatus(models.JobStatusCreatingPRs)

	return p.submitChangeRequest(ctx, job, repo, result, proposals)
}

// logInvocation records one reasoning-agent invocation in the audit
// store. Audit failures are logged and otherwise ignored; they never
// affect the job.
func (p *Processor) logInvocation(ctx context.Context, jobID, repository string, duration time.Duration, analysisErr error) {
	if p.audit == nil {
		return
	}

	record := &models.AuditRecord{
		JobID:      jobID,
		Repository: repository,
		Model:      p.agent.Model(),
		Success:    analysisErr == nil,
		DurationMs: duration.Milliseconds(),
		Timestamp:  time.Now(),
	}
	if analysisErr != nil {
		record.Error = analysisErr.Error()
	}

	if err := p.audit.LogInvocation(ctx, record); err != nil {
		p.logger.Warn().Str("job_id", jobID).Err(err).Msg("Failed to write audit record")
	}
}

func (p *Processor) submitChangeRequest(ctx context.Context, job *models.ResearchJob, repo *models.RepositoryProfile, result *models.AgentResult, proposals []models.FixProposal) error {
	alert := job.Alert()
	now := time.Now()
	branchName := BranchName(alert, now)

	if err := p.host.CreateBranch(ctx, repo, branchName); err != nil {
		return fmt.Errorf("failed to create branch %s on %s: %w", branchName, repo.FullName(), err)
	}

	files := FileChangesFromProposals(proposals)
	files = append(files, models.FileChange{
		Path:          AnalysisFileName,
		Content:       FormatAnalysisFile(alert, result, proposals, now),
		CommitMessage: "Add automated alert analysis",
	})

	if err := p.host.CommitFiles(ctx, repo, branchName, files); err != nil {
		return fmt.Errorf("failed to commit files to %s: %w", repo.FullName(), err)
	}

	title := ChangeRequestTitle(alert)
	description := ChangeRequestDescription(alert, result, proposals)

	changeRequest, err := p.host.CreatePullRequest(ctx, repo, branchName, title, description)
	if err != nil {
		return fmt.Errorf("failed to create change request on %s: %w", repo.FullName(), err)
	}

	job.AddChangeRequest(changeRequest.URL)

	// Label failures are advisory; the change request already exists.
	if err := p.host.AddLabels(ctx, repo, changeRequest.Number, []string{"automated-fix", "needs-review", "medeor"}); err != nil {
		p.logger.Warn().
			Str("job_id", job.ID()).
			Str("repository", repo.FullName()).
			Err(err).
			Msg("Failed to label change request")
	}

	p.logger.Info().
		Str("job_id", job.ID()).
		Str("repository", repo.FullName()).
		Str("url", changeRequest.URL).
		Msg("Change request created")

	return nil
}
