package models

import (
	"reflect"
	"testing"
)

func newTestJob() *ResearchJob {
	alert := &AlertRecord{Name: "TestAlarm", State: "ALARM"}
	repo := NewRepositoryProfile("acme", "svc")
	return NewResearchJob("job_test", alert, []RankedRepository{{Repository: repo, Score: 0.5}})
}

func TestJobStartsPending(t *testing.T) {
	job := newTestJob()
	if job.Status() != JobStatusPending {
		t.Errorf("new job should be pending, got %s", job.Status())
	}
	if job.IsTerminal() {
		t.Error("new job should not be terminal")
	}
	snapshot := job.Snapshot()
	if snapshot.CompletedAt != nil {
		t.Error("CompletedAt should be unset before the terminal transition")
	}
}

func TestSetStatusIgnoresBackwardTransitions(t *testing.T) {
	job := newTestJob()
	job.SetStatus(JobStatusAnalyzing)
	job.SetStatus(JobStatusGeneratingFixes)
	job.SetStatus(JobStatusCreatingPRs)

	job.SetStatus(JobStatusGeneratingFixes)
	if got := job.Status(); got != JobStatusCreatingPRs {
		t.Errorf("creating_prs must not regress to generating_fixes, got %s", got)
	}

	job.SetStatus(JobStatusAnalyzing)
	if got := job.Status(); got != JobStatusCreatingPRs {
		t.Errorf("creating_prs must not regress to analyzing, got %s", got)
	}

	job.SetStatus(JobStatusCreatingPRs)
	if got := job.Status(); got != JobStatusCreatingPRs {
		t.Errorf("same-stage transition should hold the stage, got %s", got)
	}
}

func TestTerminalIdempotence(t *testing.T) {
	job := newTestJob()
	job.SetStatus(JobStatusAnalyzing)
	job.AddChangeRequest("https://example.com/pr/1")
	job.MarkCompleted()

	first := job.Snapshot()

	// None of these may mutate a terminal job.
	job.SetStatus(JobStatusAnalyzing)
	job.MarkFailed("late failure")
	job.RecordError("late error")
	job.AddChangeRequest("https://example.com/pr/2")
	job.MarkCompleted()

	second := job.Snapshot()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("terminal job mutated:\nbefore: %+v\nafter:  %+v", first, second)
	}
	if second.Status != JobStatusCompleted {
		t.Errorf("expected completed, got %s", second.Status)
	}
	if len(second.ChangeRequests) != 1 {
		t.Errorf("expected 1 change request, got %d", len(second.ChangeRequests))
	}
}

func TestMarkFailedPreservesRecordedError(t *testing.T) {
	job := newTestJob()
	job.RecordError("clone failed: connection refused")
	job.MarkFailed("")

	snapshot := job.Snapshot()
	if snapshot.Status != JobStatusFailed {
		t.Fatalf("expected failed, got %s", snapshot.Status)
	}
	if snapshot.ErrorMessage != "clone failed: connection refused" {
		t.Errorf("empty MarkFailed message should keep the recorded error, got %q", snapshot.ErrorMessage)
	}
	if snapshot.CompletedAt == nil {
		t.Error("CompletedAt must be set at the terminal transition")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	job := newTestJob()
	job.AddChangeRequest("https://example.com/pr/1")

	snapshot := job.Snapshot()
	snapshot.ChangeRequests[0] = "mutated"
	snapshot.CandidateRepos[0].Score = 99

	fresh := job.Snapshot()
	if fresh.ChangeRequests[0] != "https://example.com/pr/1" {
		t.Error("mutating a snapshot's change requests leaked into the job")
	}
	if fresh.CandidateRepos[0].Score != 0.5 {
		t.Error("mutating a snapshot's candidates leaked into the job")
	}
}
