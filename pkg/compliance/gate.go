package compliance

import (
	"fmt"

	"github.com/praetor-sec/praetor/pkg/finding"
)

// GateResult is the structured verdict a CI integration consumes to pass or
// fail a build. Creating remediation tickets from BlockingFindings is the
// consumer's job, not ours.
type GateResult struct {
	Passed           bool              `json:"passed"`
	FindingsCount    int               `json:"findings_count"`
	CriticalCount    int               `json:"critical_count"`
	HighCount        int               `json:"high_count"`
	BlockingFindings []finding.Finding `json:"blocking_findings"`
	Message          string            `json:"message"`
}

// RunGate partitions findings into blocking and non-blocking by severity.
// failOn defaults to critical only. The gate passes exactly when no finding
// is at a blocking severity.
func RunGate(findings []finding.Finding, failOn []finding.Severity) GateResult {
	if len(failOn) == 0 {
		failOn = []finding.Severity{finding.SeverityCritical}
	}
	blocking := make(map[finding.Severity]bool, len(failOn))
	for _, sev := range failOn {
		blocking[sev] = true
	}

	res := GateResult{
		FindingsCount:    len(findings),
		BlockingFindings: []finding.Finding{},
	}
	for i := range findings {
		switch findings[i].Severity {
		case finding.SeverityCritical:
			res.CriticalCount++
		case finding.SeverityHigh:
			res.HighCount++
		}
		if blocking[findings[i].Severity] {
			res.BlockingFindings = append(res.BlockingFindings, findings[i])
		}
	}

	res.Passed = len(res.BlockingFindings) == 0
	if res.Passed {
		res.Message = fmt.Sprintf("security gate passed: %d finding(s), none blocking", res.FindingsCount)
	} else {
		res.Message = fmt.Sprintf("security gate failed: %d blocking finding(s) out of %d", len(res.BlockingFindings), res.FindingsCount)
	}
	return res
}
