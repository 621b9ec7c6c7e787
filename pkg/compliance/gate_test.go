package compliance

import (
	"testing"

	"github.com/praetor-sec/praetor/pkg/finding"
)

func TestRunGateDefaultsToCritical(t *testing.T) {
	findings := []finding.Finding{
		withCWE(finding.SeverityCritical, "CWE-89", 1),
		withCWE(finding.SeverityHigh, "CWE-79", 2),
		withCWE(finding.SeverityLow, "", 3),
	}

	res := RunGate(findings, nil)
	if res.Passed {
		t.Error("gate with a critical finding must fail")
	}
	if res.FindingsCount != 3 || res.CriticalCount != 1 || res.HighCount != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/1/1", res.FindingsCount, res.CriticalCount, res.HighCount)
	}
	if len(res.BlockingFindings) != 1 || res.BlockingFindings[0].Severity != finding.SeverityCritical {
		t.Errorf("blocking = %+v, want just the critical", res.BlockingFindings)
	}
	if res.Message == "" {
		t.Error("gate result must carry a message")
	}
}

func TestRunGatePassesWithoutBlocking(t *testing.T) {
	findings := []finding.Finding{
		withCWE(finding.SeverityHigh, "CWE-79", 2),
		withCWE(finding.SeverityMedium, "CWE-22", 5),
	}

	res := RunGate(findings, nil)
	if !res.Passed {
		t.Error("gate without criticals must pass under the default policy")
	}
	if len(res.BlockingFindings) != 0 {
		t.Errorf("blocking = %+v, want empty", res.BlockingFindings)
	}
}

func TestRunGateCustomFailOn(t *testing.T) {
	findings := []finding.Finding{
		withCWE(finding.SeverityHigh, "CWE-79", 2),
	}

	res := RunGate(findings, []finding.Severity{finding.SeverityCritical, finding.SeverityHigh})
	if res.Passed {
		t.Error("gate failing on high must block a high finding")
	}
	if len(res.BlockingFindings) != 1 {
		t.Errorf("blocking count = %d, want 1", len(res.BlockingFindings))
	}
}

func TestRunGateEmpty(t *testing.T) {
	res := RunGate(nil, nil)
	if !res.Passed || res.FindingsCount != 0 {
		t.Errorf("empty scan must pass: %+v", res)
	}
}
