// -----------------------------------------------------------------------
// Relevance Ranker - Scores candidate repositories against an alert
// -----------------------------------------------------------------------

package ranking

import (
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/medeor/internal/models"
)

// Scoring constants. These weights have no documented derivation but are
// preserved exactly: changing them silently changes which repositories
// get investigated.
const (
	keywordOverlapWeight = 0.8
	noKeywordBaseline    = 0.3
	nameOverlapWeight    = 0.3
	relevanceThreshold   = 0.1
	maxRankedRepos       = 3
)

// technicalTerms are matched as substrings against words in the alert
// reason text
var technicalTerms = []string{"error", "exception", "timeout", "fail", "high", "low"}

// Ranker maps alerts to the candidate repositories worth investigating
type Ranker struct {
	logger arbor.ILogger
}

// NewRanker creates a relevance ranker
func NewRanker(logger arbor.ILogger) *Ranker {
	return &Ranker{logger: logger}
}

// ExtractKeywords derives the deduplicated keyword set for an alert.
// Name, namespace, and metric name are tokenized on non-alphanumeric
// separators with short tokens dropped; the reason text additionally
// contributes words containing a technical term.
func ExtractKeywords(alert *models.AlertRecord) map[string]bool {
	keywords := make(map[string]bool)

	for _, token := range tokenize(alert.Name) {
		keywords[token] = true
	}
	for _, token := range tokenize(alert.Namespace) {
		keywords[token] = true
	}
	for _, token := range tokenize(alert.MetricName) {
		keywords[token] = true
	}

	for _, word := range strings.Fields(strings.ToLower(alert.Reason)) {
		for _, term := range technicalTerms {
			if strings.Contains(word, term) {
				keywords[word] = true
				break
			}
		}
	}

	return keywords
}

// Score computes the relevance of one repository for a keyword set.
// Deterministic and order-independent; result is always in [0, 1].
func Score(alertKeywords map[string]bool, repo *models.RepositoryProfile) float64 {
	if len(alertKeywords) == 0 {
		return 0.0
	}

	score := 0.0

	// Keyword overlap against operator-supplied hints; repositories
	// without hints still get minimal consideration rather than being
	// excluded outright.
	repoKeywords := repo.NormalizedKeywords()
	if len(repoKeywords) > 0 {
		overlap := 0
		for _, kw := range repoKeywords {
			if alertKeywords[kw] {
				overlap++
			}
		}
		score += float64(overlap) / float64(len(alertKeywords)) * keywordOverlapWeight
	} else {
		score = noKeywordBaseline
	}

	score += repo.PriorityBoost()

	// Boost when alert keywords match the repository name itself
	nameOverlap := 0
	for _, token := range tokenize(repo.Name) {
		if alertKeywords[token] {
			nameOverlap++
		}
	}
	score += float64(nameOverlap) / float64(len(alertKeywords)) * nameOverlapWeight

	if score > 1.0 {
		score = 1.0
	}

	return score
}

// Rank scores every repository against the alert and returns at most
// three above the relevance threshold, highest score first. Ties keep
// their original configuration order (stable sort) for reproducibility.
// An empty result is not an error.
func (r *Ranker) Rank(alert *models.AlertRecord, repos []*models.RepositoryProfile) []models.RankedRepository {
	alertKeywords := ExtractKeywords(alert)

	if r.logger != nil {
		r.logger.Debug().
			Str("alert", alert.Name).
			Int("keyword_count", len(alertKeywords)).
			Int("repository_count", len(repos)).
			Msg("Ranking candidate repositories")
	}

	ranked := make([]models.RankedRepository, 0, len(repos))
	for _, repo := range repos {
		score := Score(alertKeywords, repo)
		if score > relevanceThreshold {
			ranked = append(ranked, models.RankedRepository{Repository: repo, Score: score})

			if r.logger != nil {
				r.logger.Debug().
					Str("repository", repo.FullName()).
					Float64("score", score).
					Msg("Repository cleared relevance threshold")
			}
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > maxRankedRepos {
		ranked = ranked[:maxRankedRepos]
	}

	return ranked
}

// tokenize splits text on non-alphanumeric separators, lower-cases, and
// drops tokens of length <= 2
func tokenize(text string) []string {
	lowered := strings.ToLower(text)

	fields := strings.FieldsFunc(lowered, func(r rune) bool {
		return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
	})

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		if len(field) > 2 {
			tokens = append(tokens, field)
		}
	}

	return tokens
}
