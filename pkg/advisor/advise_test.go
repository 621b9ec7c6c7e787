package advisor

import (
	"context"
	"strings"
	"testing"

	"github.com/praetor-sec/praetor/pkg/finding"
)

func TestAdviseWithoutFindingsSkipsProvider(t *testing.T) {
	// A nil provider would panic if Advise called it.
	out, err := Advise(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("advise failed: %v", err)
	}
	if out == "" {
		t.Error("expected a canned no-findings message")
	}
}

func TestBuildPrompt(t *testing.T) {
	findings := []finding.Finding{
		{
			Title:    "SQL query built from user input",
			Severity: finding.SeverityCritical,
			Scanner:  "semgrep",
			Location: finding.Location{File: "app/db.py", StartLine: 42, EndLine: 44},
			CWEID:    "CWE-89",
		},
	}

	prompt := buildPrompt(findings)
	for _, want := range []string{"app/db.py:42-44", "CWE-89", "critical", "semgrep"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptCapsFindings(t *testing.T) {
	findings := make([]finding.Finding, maxAdviseFindings+5)
	for i := range findings {
		findings[i] = finding.Finding{
			Title:    "finding",
			Severity: finding.SeverityHigh,
			Location: finding.Location{File: "a.go", StartLine: i + 1, EndLine: i + 1},
		}
	}
	prompt := buildPrompt(findings)
	if !strings.Contains(prompt, "5 further findings omitted") {
		t.Errorf("prompt must note the omitted findings:\n%s", prompt)
	}
}
