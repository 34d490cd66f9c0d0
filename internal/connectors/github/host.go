// -----------------------------------------------------------------------
// GitHub Host - Repository host backed by the GitHub API and git CLI
// -----------------------------------------------------------------------

package github

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"

	"github.com/ternarybob/medeor/internal/common"
	"github.com/ternarybob/medeor/internal/models"
)

// Host implements the repository host against GitHub. Clones go through
// the git CLI (shallow, single branch); branch, commit, change-request,
// and label operations go through the REST API.
type Host struct {
	client       *github.Client
	token        string
	gitPath      string
	cloneTimeout time.Duration
	logger       arbor.ILogger
}

// NewHost creates a GitHub host from the configuration. Returns an error
// when no token is configured; callers treat a nil host as "submission
// unavailable".
func NewHost(config *common.GitHubConfig, logger arbor.ILogger) (*Host, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("GitHub token is required (set GITHUB_TOKEN, MEDEOR_GITHUB_TOKEN, or github.token in config)")
	}

	gitPath := config.GitPath
	if gitPath == "" {
		gitPath = "git"
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token})
	tc := oauth2.NewClient(context.Background(), ts)

	return &Host{
		client:       github.NewClient(tc),
		token:        config.Token,
		gitPath:      gitPath,
		cloneTimeout: config.CloneTimeoutDuration(),
		logger:       logger,
	}, nil
}

// Clone performs a shallow single-branch checkout of the repository into
// dir via the git CLI.
func (h *Host) Clone(ctx context.Context, repo *models.RepositoryProfile, dir string) error {
	ctx, cancel := context.WithTimeout(ctx, h.cloneTimeout)
	defer cancel()

	repoURL := fmt.Sprintf("https://oauth2:%s@github.com/%s/%s.git", h.token, repo.Owner, repo.Name)

	h.logger.Info().
		Str("repository", repo.FullName()).
		Str("branch", repo.Branch).
		Str("clone_dir", dir).
		Msg("Cloning repository via git command")

	cmd := exec.CommandContext(ctx, h.gitPath, "clone",
		"--depth", "1",
		"--branch", repo.Branch,
		"--single-branch",
		repoURL,
		dir,
	)

	// Suppress output to avoid leaking token
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to clone repository: %w (ensure git is installed and token has access)", err)
	}

	return nil
}

// CreateBranch creates branchName from the head of the repository's base
// branch.
func (h *Host) CreateBranch(ctx context.Context, repo *models.RepositoryProfile, branchName string) error {
	baseRef, _, err := h.client.Git.GetRef(ctx, repo.Owner, repo.Name, "refs/heads/"+repo.Branch)
	if err != nil {
		return fmt.Errorf("failed to resolve base branch %s: %w", repo.Branch, err)
	}

	newRef := &github.Reference{
		Ref:    github.String("refs/heads/" + branchName),
		Object: &github.GitObject{SHA: baseRef.Object.SHA},
	}
	if _, _, err := h.client.Git.CreateRef(ctx, repo.Owner, repo.Name, newRef); err != nil {
		return fmt.Errorf("failed to create branch %s: %w", branchName, err)
	}

	h.logger.Debug().
		Str("repository", repo.FullName()).
		Str("branch", branchName).
		Msg("Branch created")

	return nil
}

// CommitFiles creates or updates each file on the branch, one commit per
// file.
func (h *Host) CommitFiles(ctx context.Context, repo *models.RepositoryProfile, branchName string, files []models.FileChange) error {
	for _, file := range files {
		opts := &github.RepositoryContentFileOptions{
			Message: github.String(file.CommitMessage),
			Content: []byte(file.Content),
			Branch:  github.String(branchName),
		}

		// An existing file needs its blob SHA for the update call.
		existing, _, _, err := h.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, file.Path,
			&github.RepositoryContentGetOptions{Ref: branchName})
		if err == nil && existing != nil {
			opts.SHA = existing.SHA
			if _, _, err := h.client.Repositories.UpdateFile(ctx, repo.Owner, repo.Name, file.Path, opts); err != nil {
				return fmt.Errorf("failed to update %s: %w", file.Path, err)
			}
		} else {
			if _, _, err := h.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, file.Path, opts); err != nil {
				return fmt.Errorf("failed to create %s: %w", file.Path, err)
			}
		}

		h.logger.Debug().
			Str("repository", repo.FullName()).
			Str("path", file.Path).
			Str("branch", branchName).
			Msg("File committed")
	}

	return nil
}

// CreatePullRequest opens a change request from branchName onto the
// repository's base branch.
func (h *Host) CreatePullRequest(ctx context.Context, repo *models.RepositoryProfile, branchName, title, description string) (*models.ChangeRequest, error) {
	pr, _, err := h.client.PullRequests.Create(ctx, repo.Owner, repo.Name, &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(branchName),
		Base:  github.String(repo.Branch),
		Body:  github.String(description),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}

	h.logger.Info().
		Str("repository", repo.FullName()).
		Str("url", pr.GetHTMLURL()).
		Int("number", pr.GetNumber()).
		Msg("Pull request created")

	return &models.ChangeRequest{
		URL:    pr.GetHTMLURL(),
		Number: pr.GetNumber(),
	}, nil
}

// AddLabels tags an existing pull request
func (h *Host) AddLabels(ctx context.Context, repo *models.RepositoryProfile, number int, labels []string) error {
	if _, _, err := h.client.Issues.AddLabelsToIssue(ctx, repo.Owner, repo.Name, number, labels); err != nil {
		return fmt.Errorf("failed to add labels to #%d: %w", number, err)
	}
	return nil
}
