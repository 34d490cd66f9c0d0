package models

// AgentMessage is one entry in a reasoning agent's conversation trace.
// The core never interprets the agent's reasoning; it only scans tool
// results for fix-proposal-shaped payloads.
type AgentMessage struct {
	Role       string `json:"role"`
	Text       string `json:"text,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`
	ToolResult string `json:"tool_result,omitempty"`
}

// AgentResult is the opaque structured output of one reasoning-agent
// session over a cloned workspace.
type AgentResult struct {
	Summary          string         `json:"summary"`
	Messages         []AgentMessage `json:"messages"`
	AnalysisComplete bool           `json:"analysis_complete"`
	WorkspacePath    string         `json:"workspace_path"`
}

// ProposedChange is one file-level change inside a fix proposal
type ProposedChange struct {
	FilePath     string `json:"file_path"`
	ProposedCode string `json:"proposed_code"`
	Explanation  string `json:"explanation"`
}

// FixProposal is a structured fix extracted from an agent's tool results
type FixProposal struct {
	Type            string           `json:"type,omitempty"`
	Analysis        string           `json:"analysis,omitempty"`
	FixNeeded       bool             `json:"fix_needed,omitempty"`
	Confidence      float64          `json:"confidence,omitempty"`
	Explanation     string           `json:"explanation,omitempty"`
	ProposedChanges []ProposedChange `json:"proposed_changes,omitempty"`
	Content         string           `json:"content,omitempty"` // Raw text for text_fix proposals
}

// FileChange is one file to commit when submitting a change request
type FileChange struct {
	Path          string
	Content       string
	CommitMessage string
}

// ChangeRequest identifies a submitted change request on the repository host
type ChangeRequest struct {
	URL    string `json:"url"`
	Number int    `json:"number"`
}
