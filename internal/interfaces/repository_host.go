package interfaces

import (
	"context"

	"github.com/ternarybob/medeor/internal/models"
)

// RepositoryHost provides source-control hosting operations for candidate
// repositories. Implementations are external collaborators; the job
// processor only depends on this narrow surface.
type RepositoryHost interface {
	// Clone performs a shallow checkout of the repository's configured
	// branch into dir. The workspace path is always threaded explicitly;
	// nothing reads it from ambient process state.
	Clone(ctx context.Context, repo *models.RepositoryProfile, dir string) error

	// CreateBranch creates a new branch from the repository's configured
	// base branch.
	CreateBranch(ctx context.Context, repo *models.RepositoryProfile, branchName string) error

	// CommitFiles creates or updates the given files on the branch, one
	// commit per file.
	CommitFiles(ctx context.Context, repo *models.RepositoryProfile, branchName string, files []models.FileChange) error

	// CreatePullRequest opens a change request from branchName onto the
	// repository's base branch.
	CreatePullRequest(ctx context.Context, repo *models.RepositoryProfile, branchName, title, description string) (*models.ChangeRequest, error)

	// AddLabels tags an existing change request. Label failures are
	// advisory; callers treat them as warnings.
	AddLabels(ctx context.Context, repo *models.RepositoryProfile, number int, labels []string) error
}
