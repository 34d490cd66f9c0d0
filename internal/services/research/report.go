// -----------------------------------------------------------------------
// Report Formatting - Problem reports, analysis files, change requests
// -----------------------------------------------------------------------

package research

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/medeor/internal/models"
)

// FormatProblemReport renders an alert as the free-text problem report
// handed to the reasoning agent.
func FormatProblemReport(alert *models.AlertRecord) string {
	var b strings.Builder

	b.WriteString("Production Alert Report\n")
	b.WriteString("=======================\n\n")
	writeReportField(&b, "Alert", alert.Name)
	writeReportField(&b, "Description", alert.Description)
	writeReportField(&b, "Metric", alert.MetricName)
	writeReportField(&b, "Namespace", alert.Namespace)
	writeReportField(&b, "State", alert.State)
	writeReportField(&b, "Reason", alert.Reason)
	writeReportField(&b, "Timestamp", alert.Timestamp)
	writeReportField(&b, "Region", alert.Region)
	writeReportField(&b, "Account", alert.AccountID)

	b.WriteString("\nInvestigate the repository for the root cause of this alert ")
	b.WriteString("and propose a concrete code fix where one exists.\n")

	return b.String()
}

func writeReportField(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}

// BranchName derives a fix branch name from the alert. Slug characters
// are restricted to what git accepts without quoting.
func BranchName(alert *models.AlertRecord, now time.Time) string {
	slug := strings.ToLower(alert.Name)
	slug = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, slug)
	slug = strings.Trim(slug, "-")
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	if slug == "" {
		slug = "alert"
	}
	if len(slug) > 40 {
		slug = strings.Trim(slug[:40], "-")
	}
	return fmt.Sprintf("auto-fix/%s-%d", slug, now.Unix())
}

// ChangeRequestTitle builds the title for a submitted change request
func ChangeRequestTitle(alert *models.AlertRecord) string {
	return fmt.Sprintf("Automated fix: %s", alert.Name)
}

// ChangeRequestDescription builds the change request body from the alert,
// the agent's analysis summary, and the extracted fix proposals.
func ChangeRequestDescription(alert *models.AlertRecord, result *models.AgentResult, proposals []models.FixProposal) string {
	var b strings.Builder

	b.WriteString("## Automated Alert Investigation\n\n")
	b.WriteString("This change request was generated automatically in response to a production alert.\n\n")

	b.WriteString("### Alert\n\n")
	fmt.Fprintf(&b, "- **Name:** %s\n", alert.Name)
	if alert.MetricName != "" {
		fmt.Fprintf(&b, "- **Metric:** %s\n", alert.MetricName)
	}
	if alert.Namespace != "" {
		fmt.Fprintf(&b, "- **Namespace:** %s\n", alert.Namespace)
	}
	if alert.Reason != "" {
		fmt.Fprintf(&b, "- **Reason:** %s\n", alert.Reason)
	}
	if alert.Timestamp != "" {
		fmt.Fprintf(&b, "- **Fired at:** %s\n", alert.Timestamp)
	}

	if result != nil && result.Summary != "" {
		b.WriteString("\n### Analysis\n\n")
		b.WriteString(result.Summary)
		b.WriteString("\n")
	}

	structured := 0
	for _, p := range proposals {
		if len(p.ProposedChanges) > 0 {
			structured++
		}
	}
	fmt.Fprintf(&b, "\n### Proposed Fixes\n\n%d fix proposal(s) extracted, %d with concrete file changes.\n", len(proposals), structured)

	b.WriteString("\n---\n*Review carefully before merging; this fix was proposed without human supervision.*\n")

	return b.String()
}

// AnalysisFileName is the markdown analysis artifact committed alongside
// any proposed code changes.
const AnalysisFileName = "ALERT_ANALYSIS.md"

// FormatAnalysisFile renders the full investigation record committed to
// the fix branch.
func FormatAnalysisFile(alert *models.AlertRecord, result *models.AgentResult, proposals []models.FixProposal, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Alert Analysis: %s\n\n", alert.Name)
	fmt.Fprintf(&b, "Generated: %s\n\n", now.UTC().Format(time.RFC3339))

	b.WriteString("## Alert Details\n\n")
	fmt.Fprintf(&b, "| Field | Value |\n|---|---|\n")
	writeAnalysisRow(&b, "Name", alert.Name)
	writeAnalysisRow(&b, "Description", alert.Description)
	writeAnalysisRow(&b, "Metric", alert.MetricName)
	writeAnalysisRow(&b, "Namespace", alert.Namespace)
	writeAnalysisRow(&b, "State", alert.State)
	writeAnalysisRow(&b, "Reason", alert.Reason)
	writeAnalysisRow(&b, "Region", alert.Region)

	if result != nil && result.Summary != "" {
		b.WriteString("\n## Investigation Summary\n\n")
		b.WriteString(result.Summary)
		b.WriteString("\n")
	}

	for i, p := range proposals {
		fmt.Fprintf(&b, "\n## Fix Proposal %d\n\n", i+1)
		if p.Analysis != "" {
			b.WriteString(p.Analysis)
			b.WriteString("\n")
		}
		if p.Explanation != "" {
			b.WriteString(p.Explanation)
			b.WriteString("\n")
		}
		if p.Confidence > 0 {
			fmt.Fprintf(&b, "\nConfidence: %.2f\n", p.Confidence)
		}
		for _, c := range p.ProposedChanges {
			fmt.Fprintf(&b, "\n### `%s`\n\n", c.FilePath)
			if c.Explanation != "" {
				b.WriteString(c.Explanation)
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "\n```\n%s\n```\n", c.ProposedCode)
		}
		if p.Content != "" {
			fmt.Fprintf(&b, "\n```\n%s\n```\n", p.Content)
		}
	}

	return b.String()
}

func writeAnalysisRow(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	value = strings.ReplaceAll(value, "|", "\\|")
	value = strings.ReplaceAll(value, "\n", " ")
	fmt.Fprintf(b, "| %s | %s |\n", label, value)
}
