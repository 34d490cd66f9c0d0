package registry

import (
	"strings"
	"sync"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medeor/internal/models"
)

func testAlert(name string) *models.AlertRecord {
	return &models.AlertRecord{Name: name, State: "ALARM"}
}

func TestCreateAssignsUniqueIDs(t *testing.T) {
	reg := NewRegistry(arbor.NewLogger())

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		job := reg.Create(testAlert("A"), nil)
		if !strings.HasPrefix(job.ID(), "job_") {
			t.Fatalf("job id missing prefix: %q", job.ID())
		}
		if seen[job.ID()] {
			t.Fatalf("duplicate job id: %q", job.ID())
		}
		seen[job.ID()] = true
	}
}

func TestGetReturnsSnapshot(t *testing.T) {
	reg := NewRegistry(arbor.NewLogger())
	job := reg.Create(testAlert("A"), nil)

	snapshot, found := reg.Get(job.ID())
	if !found {
		t.Fatal("created job not found")
	}
	if snapshot.ID != job.ID() {
		t.Errorf("snapshot id = %q, want %q", snapshot.ID, job.ID())
	}
	if snapshot.Status != models.JobStatusPending {
		t.Errorf("new job snapshot should be pending, got %s", snapshot.Status)
	}

	if _, found := reg.Get("job_unknown"); found {
		t.Error("unknown id should not be found")
	}
}

func TestConcurrentCreateAndRead(t *testing.T) {
	reg := NewRegistry(arbor.NewLogger())

	const workers = 20
	const perWorker = 25

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				job := reg.Create(testAlert("A"), nil)
				if _, found := reg.Get(job.ID()); !found {
					t.Errorf("job %s not visible after create", job.ID())
				}
				reg.List()
				reg.ActiveCount()
			}
		}()
	}
	wg.Wait()

	if got := len(reg.List()); got != workers*perWorker {
		t.Errorf("expected %d jobs, got %d", workers*perWorker, got)
	}
}

func TestActiveCountExcludesTerminal(t *testing.T) {
	reg := NewRegistry(arbor.NewLogger())

	running := reg.Create(testAlert("A"), nil)
	done := reg.Create(testAlert("B"), nil)
	failed := reg.Create(testAlert("C"), nil)

	done.MarkCompleted()
	failed.MarkFailed("boom")

	if got := reg.ActiveCount(); got != 1 {
		t.Errorf("active count = %d, want 1", got)
	}

	counts := reg.CountByStatus()
	if counts[models.JobStatusPending] != 1 || counts[models.JobStatusCompleted] != 1 || counts[models.JobStatusFailed] != 1 {
		t.Errorf("unexpected status counts: %v", counts)
	}

	_ = running
}
