package interfaces

import (
	"context"

	"github.com/ternarybob/medeor/internal/models"
)

// ReasoningAgent runs an external analysis/synthesis session over a
// cloned repository workspace. The caller passes a free-text problem
// report and the workspace path, and receives an opaque structured
// result; the agent's internal tool-calling loop is out of scope here.
type ReasoningAgent interface {
	// Analyze investigates the problem report against the repository
	// checked out at workspacePath. The result is either a completed
	// analysis payload or an error; the caller never interprets the
	// agent's reasoning beyond scanning for fix proposals.
	Analyze(ctx context.Context, problemReport, workspacePath string) (*models.AgentResult, error)

	// Model identifies the underlying model for audit records
	Model() string
}
