package models

import "strings"

// RepositoryPriority weights a repository during relevance ranking
type RepositoryPriority string

const (
	PriorityLow    RepositoryPriority = "low"
	PriorityMedium RepositoryPriority = "medium"
	PriorityHigh   RepositoryPriority = "high"
)

// DefaultFilePatterns covers common source extensions when a repository
// does not configure its own patterns
var DefaultFilePatterns = []string{"**/*.py", "**/*.js", "**/*.java", "**/*.go"}

// RepositoryProfile describes one candidate repository for investigation.
// FullName() uniquely identifies a repository within one configuration.
type RepositoryProfile struct {
	Owner        string             `json:"owner"`
	Name         string             `json:"name"`
	Branch       string             `json:"branch"`
	FilePatterns []string           `json:"file_patterns"`
	Keywords     []string           `json:"keywords"`
	Priority     RepositoryPriority `json:"priority"`
}

// NewRepositoryProfile creates a profile with defaults applied: branch
// "main", medium priority, common source file patterns, and keywords
// normalized to lower case.
func NewRepositoryProfile(owner, name string) *RepositoryProfile {
	return &RepositoryProfile{
		Owner:        owner,
		Name:         name,
		Branch:       "main",
		FilePatterns: DefaultFilePatterns,
		Keywords:     []string{},
		Priority:     PriorityMedium,
	}
}

// FullName returns the "owner/name" identifier
func (r *RepositoryProfile) FullName() string {
	return r.Owner + "/" + r.Name
}

// NormalizedKeywords returns the operator-supplied keywords lower-cased
// and de-duplicated, preserving first-seen order. Keywords form a set;
// a keyword listed twice must not count twice in overlap scoring.
func (r *RepositoryProfile) NormalizedKeywords() []string {
	seen := make(map[string]bool, len(r.Keywords))
	keywords := make([]string, 0, len(r.Keywords))
	for _, kw := range r.Keywords {
		normalized := strings.ToLower(kw)
		if seen[normalized] {
			continue
		}
		seen[normalized] = true
		keywords = append(keywords, normalized)
	}
	return keywords
}

// PriorityBoost returns the ranking boost for this repository's priority
func (r *RepositoryProfile) PriorityBoost() float64 {
	switch r.Priority {
	case PriorityHigh:
		return 0.2
	case PriorityMedium:
		return 0.1
	default:
		return 0.0
	}
}

// RankedRepository pairs a repository profile with its relevance score
type RankedRepository struct {
	Repository *RepositoryProfile `json:"repository"`
	Score      float64            `json:"score"`
}
