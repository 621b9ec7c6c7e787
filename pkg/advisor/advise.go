package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/praetor-sec/praetor/pkg/finding"
)

// maxAdviseFindings caps how many findings go into one prompt so the
// request stays within typical context limits.
const maxAdviseFindings = 10

// Advise asks the provider for remediation guidance on the given findings,
// most important first. Callers typically pass the gate's blocking set.
func Advise(ctx context.Context, p Provider, findings []finding.Finding) (string, error) {
	if len(findings) == 0 {
		return "No blocking findings to advise on.", nil
	}
	return p.Generate(ctx, buildPrompt(findings))
}

func buildPrompt(findings []finding.Finding) string {
	var sb strings.Builder
	sb.WriteString("You are a security engineer. For each finding below, give a short, concrete remediation: what to change, in which file, and why it fixes the weakness. Be specific to the code location given; do not restate the finding.\n\n")

	n := len(findings)
	if n > maxAdviseFindings {
		n = maxAdviseFindings
	}
	for i := 0; i < n; i++ {
		f := findings[i]
		fmt.Fprintf(&sb, "Finding %d: %s\n", i+1, f.Title)
		fmt.Fprintf(&sb, "  Severity: %s  Scanner: %s\n", f.Severity, f.Scanner)
		fmt.Fprintf(&sb, "  Location: %s:%d-%d\n", f.Location.File, f.Location.StartLine, f.Location.EndLine)
		if f.CWEID != "" {
			fmt.Fprintf(&sb, "  CWE: %s\n", f.CWEID)
		}
		if f.Description != "" {
			fmt.Fprintf(&sb, "  Detail: %s\n", f.Description)
		}
		sb.WriteString("\n")
	}
	if len(findings) > n {
		fmt.Fprintf(&sb, "(%d further findings omitted.)\n", len(findings)-n)
	}
	return sb.String()
}
