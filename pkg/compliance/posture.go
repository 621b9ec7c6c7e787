package compliance

import (
	"github.com/praetor-sec/praetor/pkg/finding"
)

// Status is the compliance verdict for one category.
type Status string

const (
	// StatusCompliant means no non-excluded finding maps to the category.
	StatusCompliant Status = "compliant"
	// StatusPartial means findings map to the category but none is critical.
	StatusPartial Status = "partial"
	// StatusNonCompliant means at least one critical finding maps to the
	// category.
	StatusNonCompliant Status = "non_compliant"
)

// Posture is the overall verdict for a scan, ordered worst to best as
// at_risk > conditional > secure.
type Posture string

const (
	PostureSecure      Posture = "secure"
	PostureConditional Posture = "conditional"
	PostureAtRisk      Posture = "at_risk"
)

// Classification is a triage disposition attached to a finding.
type Classification string

const (
	ClassificationFalsePositive Classification = "false_positive"
	ClassificationConfirmed     Classification = "confirmed"
	ClassificationAccepted      Classification = "accepted_risk"
)

// Triage maps finding fingerprints to their triage classification. Findings
// marked false positive are excluded from compliance counting.
type Triage map[string]Classification

// FilterTriaged returns the findings that are not triaged as false
// positives. Order is preserved.
func FilterTriaged(findings []finding.Finding, triage Triage) []finding.Finding {
	if len(triage) == 0 {
		return findings
	}
	kept := make([]finding.Finding, 0, len(findings))
	for i := range findings {
		if triage[findings[i].Fingerprint()] == ClassificationFalsePositive {
			continue
		}
		kept = append(kept, findings[i])
	}
	return kept
}

// CategoryResult is one row of the compliance table.
type CategoryResult struct {
	Category      Category `json:"category"`
	Status        Status   `json:"status"`
	FindingCount  int      `json:"finding_count"`
	CriticalCount int      `json:"critical_count"`
}

// CheckCompliance evaluates every reference category against the findings,
// excluding triaged false positives, and returns the category-by-category
// compliance table in table order.
func CheckCompliance(findings []finding.Finding, triage Triage) []CategoryResult {
	active := FilterTriaged(findings, triage)

	results := make([]CategoryResult, 0, len(top10))
	for _, cat := range top10 {
		r := CategoryResult{Category: cat, Status: StatusCompliant}
		for i := range active {
			if active[i].CWEID == "" || !cat.Owns(active[i].CWEID) {
				continue
			}
			r.FindingCount++
			if active[i].Severity == finding.SeverityCritical {
				r.CriticalCount++
			}
		}
		switch {
		case r.CriticalCount > 0:
			r.Status = StatusNonCompliant
		case r.FindingCount > 0:
			r.Status = StatusPartial
		}
		results = append(results, r)
	}
	return results
}

// DeterminePosture rolls the compliance table and finding list up into one
// posture verdict. at_risk short-circuits: any critical finding, or three or
// more non-compliant categories. Otherwise the posture is conditional when
// any category fell short of compliant or any high-severity finding exists;
// a high can never leave the posture secure even when its CWE maps to no
// category. secure is the default when neither rule fires.
func DeterminePosture(results []CategoryResult, findings []finding.Finding) Posture {
	nonCompliant := 0
	degraded := false
	for _, r := range results {
		if r.Status == StatusNonCompliant {
			nonCompliant++
		}
		if r.Status != StatusCompliant {
			degraded = true
		}
	}

	anyCritical := false
	anyHigh := false
	for i := range findings {
		switch findings[i].Severity {
		case finding.SeverityCritical:
			anyCritical = true
		case finding.SeverityHigh:
			anyHigh = true
		}
	}

	if anyCritical || nonCompliant >= 3 {
		return PostureAtRisk
	}
	if degraded || anyHigh {
		return PostureConditional
	}
	return PostureSecure
}
