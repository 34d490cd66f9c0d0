package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medeor/internal/models"
)

// fakeHost implements interfaces.RepositoryHost for testing
type fakeHost struct {
	cloneFunc    func(ctx context.Context, repo *models.RepositoryProfile, dir string) error
	branchFunc   func(ctx context.Context, repo *models.RepositoryProfile, branchName string) error
	commitFunc   func(ctx context.Context, repo *models.RepositoryProfile, branchName string, files []models.FileChange) error
	prFunc       func(ctx context.Context, repo *models.RepositoryProfile, branchName, title, description string) (*models.ChangeRequest, error)
	labelsFunc   func(ctx context.Context, repo *models.RepositoryProfile, number int, labels []string) error
	labelsCalled int
}

func (f *fakeHost) Clone(ctx context.Context, repo *models.RepositoryProfile, dir string) error {
	if f.cloneFunc != nil {
		return f.cloneFunc(ctx, repo, dir)
	}
	return nil
}

func (f *fakeHost) CreateBranch(ctx context.Context, repo *models.RepositoryProfile, branchName string) error {
	if f.branchFunc != nil {
		return f.branchFunc(ctx, repo, branchName)
	}
	return nil
}

func (f *fakeHost) CommitFiles(ctx context.Context, repo *models.RepositoryProfile, branchName string, files []models.FileChange) error {
	if f.commitFunc != nil {
		return f.commitFunc(ctx, repo, branchName, files)
	}
	return nil
}

func (f *fakeHost) CreatePullRequest(ctx context.Context, repo *models.RepositoryProfile, branchName, title, description string) (*models.ChangeRequest, error) {
	if f.prFunc != nil {
		return f.prFunc(ctx, repo, branchName, title, description)
	}
	return &models.ChangeRequest{URL: "https://github.com/" + repo.FullName() + "/pull/1", Number: 1}, nil
}

func (f *fakeHost) AddLabels(ctx context.Context, repo *models.RepositoryProfile, number int, labels []string) error {
	f.labelsCalled++
	if f.labelsFunc != nil {
		return f.labelsFunc(ctx, repo, number, labels)
	}
	return nil
}

// fakeAgent implements interfaces.ReasoningAgent for testing
type fakeAgent struct {
	analyzeFunc func(ctx context.Context, problemReport, workspacePath string) (*models.AgentResult, error)
}

func (f *fakeAgent) Analyze(ctx context.Context, problemReport, workspacePath string) (*models.AgentResult, error) {
	if f.analyzeFunc != nil {
		return f.analyzeFunc(ctx, problemReport, workspacePath)
	}
	return fixResult(workspacePath), nil
}

func (f *fakeAgent) Model() string {
	return "fake-model"
}

// fixResult builds an agent result carrying one structured fix proposal
func fixResult(workspacePath string) *models.AgentResult {
	return &models.AgentResult{
		Summary:          "found a nil pointer dereference",
		AnalysisComplete: true,
		WorkspacePath:    workspacePath,
		Messages: []models.AgentMessage{
			{
				Role:       "assistant",
				ToolName:   "propose_fix",
				ToolResult: `{"fix_needed": true, "analysis": "nil deref", "proposed_changes": [{"file_path": "main.go", "proposed_code": "fixed", "explanation": "add guard"}]}`,
			},
		},
	}
}

func testCandidates(n int) []models.RankedRepository {
	candidates := make([]models.RankedRepository, 0, n)
	names := []string{"svc-a", "svc-b", "svc-c"}
	for i := 0; i < n; i++ {
		repo := models.NewRepositoryProfile("acme", names[i%len(names)])
		candidates = append(candidates, models.RankedRepository{Repository: repo, Score: 0.9 - float64(i)*0.1})
	}
	return candidates
}

func testJob(candidates []models.RankedRepository) *models.ResearchJob {
	alert := &models.AlertRecord{Name: "HighErrorRate", State: "ALARM", Reason: "error rate exceeded"}
	return models.NewResearchJob("job_test", alert, candidates)
}

func TestRunWithoutHostFailsImmediately(t *testing.T) {
	processor := NewProcessor(nil, &fakeAgent{}, nil, t.TempDir(), arbor.NewLogger())
	job := testJob(testCandidates(1))

	processor.Run(context.Background(), job)

	snapshot := job.Snapshot()
	if snapshot.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", snapshot.Status)
	}
	if snapshot.ErrorMessage != "repository host not configured" {
		t.Errorf("unexpected error message: %q", snapshot.ErrorMessage)
	}
}

func TestRunWithZeroCandidatesFails(t *testing.T) {
	processor := NewProcessor(&fakeHost{}, &fakeAgent{}, nil, t.TempDir(), arbor.NewLogger())
	job := testJob(nil)

	processor.Run(context.Background(), job)

	snapshot := job.Snapshot()
	if snapshot.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", snapshot.Status)
	}
	if snapshot.ErrorMessage != "no relevant repositories found" {
		t.Errorf("unexpected error message: %q", snapshot.ErrorMessage)
	}
}

func TestRunPartialFailureStillCompletes(t *testing.T) {
	// Candidate 1 fails at clone; candidate 2 succeeds end to end. The
	// job must complete with one change request and the recorded error.
	host := &fakeHost{
		cloneFunc: func(ctx context.Context, repo *models.RepositoryProfile, dir string) error {
			if repo.Name == "svc-a" {
				return errors.New("connection refused")
			}
			return nil
		},
	}
	processor := NewProcessor(host, &fakeAgent{}, nil, t.TempDir(), arbor.NewLogger())
	job := testJob(testCandidates(2))

	processor.Run(context.Background(), job)

	snapshot := job.Snapshot()
	if snapshot.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %s (error: %s)", snapshot.Status, snapshot.ErrorMessage)
	}
	if len(snapshot.ChangeRequests) != 1 {
		t.Fatalf("expected exactly 1 change request, got %d", len(snapshot.ChangeRequests))
	}
	if !strings.Contains(snapshot.ErrorMessage, "connection refused") {
		t.Errorf("candidate 1's failure should remain recorded, got %q", snapshot.ErrorMessage)
	}
	if host.labelsCalled != 1 {
		t.Errorf("expected 1 label call, got %d", host.labelsCalled)
	}
}

func TestRunStatusNeverMovesBackwards(t *testing.T) {
	// Candidate 1 reaches creating_prs and fails at submission. Candidate
	// 2's flow then runs the earlier stages again, but the observable job
	// status must never regress to an earlier stage.
	job := testJob(testCandidates(2))

	stageRank := map[models.JobStatus]int{
		models.JobStatusPending:         0,
		models.JobStatusAnalyzing:       1,
		models.JobStatusGeneratingFixes: 2,
		models.JobStatusCreatingPRs:     3,
	}
	var observed []models.JobStatus
	observe := func() { observed = append(observed, job.Status()) }

	host := &fakeHost{
		cloneFunc: func(ctx context.Context, repo *models.RepositoryProfile, dir string) error {
			observe()
			return nil
		},
		commitFunc: func(ctx context.Context, repo *models.RepositoryProfile, branchName string, files []models.FileChange) error {
			observe()
			return nil
		},
		prFunc: func(ctx context.Context, repo *models.RepositoryProfile, branchName, title, description string) (*models.ChangeRequest, error) {
			observe()
			if repo.Name == "svc-a" {
				return nil, errors.New("pull request rejected")
			}
			return &models.ChangeRequest{URL: "https://github.com/" + repo.FullName() + "/pull/2", Number: 2}, nil
		},
	}
	agent := &fakeAgent{
		analyzeFunc: func(ctx context.Context, problemReport, workspacePath string) (*models.AgentResult, error) {
			observe()
			return fixResult(workspacePath), nil
		},
	}
	processor := NewProcessor(host, agent, nil, t.TempDir(), arbor.NewLogger())

	processor.Run(context.Background(), job)

	snapshot := job.Snapshot()
	if snapshot.Status != models.JobStatusCompleted {
		t.Fatalf("expected completed, got %s (error: %s)", snapshot.Status, snapshot.ErrorMessage)
	}
	if len(snapshot.ChangeRequests) != 1 {
		t.Fatalf("expected 1 change request from candidate 2, got %d", len(snapshot.ChangeRequests))
	}
	for i := 1; i < len(observed); i++ {
		if stageRank[observed[i]] < stageRank[observed[i-1]] {
			t.Fatalf("status moved backwards at step %d: %v", i, observed)
		}
	}
	// Candidate 2's analysis runs after candidate 1 already advanced the
	// job to creating_prs; that stage must stick.
	last := observed[len(observed)-1]
	if last != models.JobStatusCreatingPRs {
		t.Errorf("final observed stage should be creating_prs, got %s", last)
	}
}

func TestRunProcessesAtMostTwoCandidates(t *testing.T) {
	var cloned []string
	host := &fakeHost{
		cloneFunc: func(ctx context.Context, repo *models.RepositoryProfile, dir string) error {
			cloned = append(cloned, repo.Name)
			return errors.New("unreachable")
		},
	}
	processor := NewProcessor(host, &fakeAgent{}, nil, t.TempDir(), arbor.NewLogger())
	job := testJob(testCandidates(3))

	processor.Run(context.Background(), job)

	if len(cloned) != 2 {
		t.Fatalf("expected 2 candidates attempted, got %d: %v", len(cloned), cloned)
	}
	if cloned[0] != "svc-a" || cloned[1] != "svc-b" {
		t.Errorf("candidates must be attempted in rank order, got %v", cloned)
	}
}

func TestRunNoProposalsFailsWithDefaultMessage(t *testing.T) {
	agent := &fakeAgent{
		analyzeFunc: func(ctx context.Context, problemReport, workspacePath string) (*models.AgentResult, error) {
			return &models.AgentResult{Summary: "nothing to fix", AnalysisComplete: true}, nil
		},
	}
	processor := NewProcessor(&fakeHost{}, agent, nil, t.TempDir(), arbor.NewLogger())
	job := testJob(testCandidates(1))

	processor.Run(context.Background(), job)

	snapshot := job.Snapshot()
	if snapshot.Status != models.JobStatusFailed {
		t.Fatalf("expected failed, got %s", snapshot.Status)
	}
	if !strings.Contains(snapshot.ErrorMessage, "no fix proposals extracted") {
		t.Errorf("unexpected error message: %q", snapshot.ErrorMessage)
	}
}

func TestRunLabelFailureIsAdvisory(t *testing.T) {
	host := &fakeHost{
		labelsFunc: func(ctx context.Context, repo *models.RepositoryProfile, number int, labels []string) error {
			return errors.New("label API down")
		},
	}
	processor := NewProcessor(host, &fakeAgent{}, nil, t.TempDir(), arbor.NewLogger())
	job := testJob(testCandidates(1))

	processor.Run(context.Background(), job)

	snapshot := job.Snapshot()
	if snapshot.Status != models.JobStatusCompleted {
		t.Fatalf("label failure must not fail the job, got %s", snapshot.Status)
	}
	if len(snapshot.ChangeRequests) != 1 {
		t.Errorf("expected 1 change request, got %d", len(snapshot.ChangeRequests))
	}
}

func TestRunCommitsAnalysisFile(t *testing.T) {
	var committed []models.FileChange
	host := &fakeHost{
		commitFunc: func(ctx context.Context, repo *models.RepositoryProfile, branchName string, files []models.FileChange) error {
			committed = files
			return nil
		},
	}
	processor := NewProcessor(host, &fakeAgent{}, nil, t.TempDir(), arbor.NewLogger())
	job := testJob(testCandidates(1))

	processor.Run(context.Background(), job)

	if len(committed) != 2 {
		t.Fatalf("expected proposed change plus analysis file, got %d files", len(committed))
	}
	last := committed[len(committed)-1]
	if last.Path != AnalysisFileName {
		t.Errorf("analysis file must always be committed, got %q", last.Path)
	}
	if !strings.Contains(last.Content, "HighErrorRate") {
		t.Error("analysis file should describe the alert")
	}
}
