package research

import (
	"strings"
	"testing"
	"time"

	"github.com/ternarybob/medeor/internal/models"
)

func TestBranchName(t *testing.T) {
	now := time.Unix(1757000000, 0)

	tests := []struct {
		alarmName string
		wantSlug  string
	}{
		{"HighErrorRate-Lambda", "higherrorrate-lambda"},
		{"API 5xx!! (prod)", "api-5xx-prod"},
		{"---", "alert"},
		{"", "alert"},
	}

	for _, tt := range tests {
		alert := &models.AlertRecord{Name: tt.alarmName}
		got := BranchName(alert, now)
		want := "auto-fix/" + tt.wantSlug + "-1757000000"
		if got != want {
			t.Errorf("BranchName(%q) = %q, want %q", tt.alarmName, got, want)
		}
	}
}

func TestBranchNameTruncatesLongSlugs(t *testing.T) {
	alert := &models.AlertRecord{Name: strings.Repeat("VeryLongAlarmName", 10)}
	got := BranchName(alert, time.Unix(1, 0))

	slug := strings.TrimPrefix(got, "auto-fix/")
	slug = slug[:strings.LastIndex(slug, "-")]
	if len(slug) > 40 {
		t.Errorf("slug too long (%d): %q", len(slug), slug)
	}
}

func TestFormatProblemReportIncludesAlertFields(t *testing.T) {
	alert := &models.AlertRecord{
		Name:       "HighErrorRate",
		MetricName: "ErrorRate",
		Namespace:  "AWS/Lambda",
		State:      "ALARM",
		Reason:     "threshold crossed",
	}

	report := FormatProblemReport(alert)
	for _, want := range []string{"HighErrorRate", "ErrorRate", "AWS/Lambda", "ALARM", "threshold crossed"} {
		if !strings.Contains(report, want) {
			t.Errorf("problem report missing %q:\n%s", want, report)
		}
	}
	if strings.Contains(report, "Region:") {
		t.Error("empty fields should be omitted")
	}
}

func TestChangeRequestDescription(t *testing.T) {
	alert := &models.AlertRecord{Name: "HighErrorRate", MetricName: "ErrorRate"}
	result := &models.AgentResult{Summary: "nil pointer in request handler"}
	proposals := []models.FixProposal{
		{ProposedChanges: []models.ProposedChange{{FilePath: "a.go", ProposedCode: "x"}}},
		{Type: "text_fix", Content: "bump pool size"},
	}

	desc := ChangeRequestDescription(alert, result, proposals)
	if !strings.Contains(desc, "HighErrorRate") {
		t.Error("description missing alert name")
	}
	if !strings.Contains(desc, "nil pointer in request handler") {
		t.Error("description missing agent summary")
	}
	if !strings.Contains(desc, "2 fix proposal(s) extracted, 1 with concrete file changes") {
		t.Errorf("description missing proposal counts:\n%s", desc)
	}
}

func TestFormatAnalysisFile(t *testing.T) {
	alert := &models.AlertRecord{Name: "HighErrorRate", Reason: "rate | exceeded"}
	result := &models.AgentResult{Summary: "summary text"}
	proposals := []models.FixProposal{
		{
			Analysis:   "root cause",
			Confidence: 0.75,
			ProposedChanges: []models.ProposedChange{
				{FilePath: "a.go", ProposedCode: "new code", Explanation: "guard"},
			},
		},
	}

	content := FormatAnalysisFile(alert, result, proposals, time.Unix(1757000000, 0))
	for _, want := range []string{"# Alert Analysis: HighErrorRate", "summary text", "root cause", "`a.go`", "new code"} {
		if !strings.Contains(content, want) {
			t.Errorf("analysis file missing %q", want)
		}
	}
	if !strings.Contains(content, `rate \| exceeded`) {
		t.Error("pipe characters in table cells must be escaped")
	}
}
