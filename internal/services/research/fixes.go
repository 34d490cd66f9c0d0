// -----------------------------------------------------------------------
// Fix Extraction - Pull structured fix proposals out of agent output
// -----------------------------------------------------------------------

package research

import (
	"encoding/json"
	"strings"

	"github.com/ternarybob/medeor/internal/models"
)

// ExtractFixProposals scans the agent conversation for tool results that
// look like fix proposals. A tool result counts when it is a JSON object
// carrying proposed_changes, patches, or fix_needed=true. Tool results
// that are not JSON but mention a fix are kept as raw text_fix proposals
// so a reviewer still sees them.
func ExtractFixProposals(result *models.AgentResult) []models.FixProposal {
	if result == nil {
		return nil
	}

	var proposals []models.FixProposal
	for _, msg := range result.Messages {
		if msg.ToolResult == "" {
			continue
		}

		if isJSONObject(msg.ToolResult) {
			// JSON tool results are either qualifying proposals or
			// ordinary structured output; they never fall through to
			// the text heuristic.
			if proposal, ok := parseStructuredFix(msg.ToolResult); ok {
				proposals = append(proposals, proposal)
			}
			continue
		}

		if looksLikeTextFix(msg.ToolResult) {
			proposals = append(proposals, models.FixProposal{
				Type:    "text_fix",
				Content: msg.ToolResult,
			})
		}
	}
	return proposals
}

func isJSONObject(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return false
	}
	var probe map[string]interface{}
	return json.Unmarshal([]byte(trimmed), &probe) == nil
}

func parseStructuredFix(raw string) (models.FixProposal, bool) {
	trimmed := strings.TrimSpace(raw)

	var payload struct {
		Type            string                  `json:"type"`
		Analysis        string                  `json:"analysis"`
		FixNeeded       bool                    `json:"fix_needed"`
		Confidence      float64                 `json:"confidence"`
		Explanation     string                  `json:"explanation"`
		ProposedChanges []models.ProposedChange `json:"proposed_changes"`
		Patches         []models.ProposedChange `json:"patches"`
	}
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return models.FixProposal{}, false
	}

	changes := payload.ProposedChanges
	if len(changes) == 0 {
		changes = payload.Patches
	}
	if len(changes) == 0 && !payload.FixNeeded {
		return models.FixProposal{}, false
	}

	fixType := payload.Type
	if fixType == "" {
		fixType = "structured_fix"
	}

	return models.FixProposal{
		Type:            fixType,
		Analysis:        payload.Analysis,
		FixNeeded:       payload.FixNeeded,
		Confidence:      payload.Confidence,
		Explanation:     payload.Explanation,
		ProposedChanges: changes,
	}, true
}

var textFixMarkers = []string{"fix", "patch", "change"}

func looksLikeTextFix(raw string) bool {
	lowered := strings.ToLower(raw)
	for _, marker := range textFixMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// FileChangesFromProposals flattens concrete file changes out of the
// extracted proposals. Text-only proposals produce no file changes; they
// surface in the analysis file instead.
func FileChangesFromProposals(proposals []models.FixProposal) []models.FileChange {
	var files []models.FileChange
	for _, p := range proposals {
		for _, c := range p.ProposedChanges {
			if c.FilePath == "" || c.ProposedCode == "" {
				continue
			}
			message := c.Explanation
			if message == "" {
				message = "Apply automated fix to " + c.FilePath
			}
			files = append(files, models.FileChange{
				Path:          c.FilePath,
				Content:       c.ProposedCode,
				CommitMessage: message,
			})
		}
	}
	return files
}
