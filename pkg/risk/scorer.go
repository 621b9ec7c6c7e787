// Package risk turns findings into a composite risk score built from three
// axes: impact, exploitability, and how long the vulnerable code has been
// live in the repository. The score is a relative ranking signal for
// prioritization, not a normalized probability.
package risk

import (
	"math"
	"sort"

	"github.com/praetor-sec/praetor/pkg/finding"
)

// DefaultDetectionDays is assumed when repository history cannot answer how
// old a finding's line is.
const DefaultDetectionDays = 30

// Components are the per-finding scoring inputs.
type Components struct {
	Impact         float64 `json:"impact"`
	Exploitability float64 `json:"exploitability"`
	DetectionDays  int     `json:"detection_days"`
}

// Score combines the components: impact times exploitability, divided by the
// exposure age in days, rounded to two decimals. Fresh findings score higher
// than ones that sat unnoticed for months.
func (c Components) Score() float64 {
	days := c.DetectionDays
	if days < 1 {
		days = 1
	}
	return math.Round(c.Impact*c.Exploitability/float64(days)*100) / 100
}

// HistoryProvider answers how many days ago a file's line was last
// introduced or changed. Implementations report an error when the question
// cannot be answered; the scorer degrades to DefaultDetectionDays.
type HistoryProvider interface {
	AgeDays(file string, line int) (int, error)
}

// severityImpact maps severity to impact when no CVSS score is attached.
var severityImpact = map[finding.Severity]float64{
	finding.SeverityCritical: 9.5,
	finding.SeverityHigh:     7.5,
	finding.SeverityMedium:   5.0,
	finding.SeverityLow:      2.5,
	finding.SeverityInfo:     0.5,
}

// cweExploitability fixes exploitability for weakness classes that are
// trivially exploitable in practice, regardless of reported severity.
var cweExploitability = map[string]float64{
	"CWE-78":  9.0, // OS command injection
	"CWE-798": 9.0, // hardcoded credentials
	"CWE-89":  8.5, // SQL injection
	"CWE-79":  8.0, // cross-site scripting
	"CWE-22":  7.0, // path traversal
	"CWE-918": 6.5, // SSRF
}

// severityExploitability is the fallback for other or missing CWEs. It is a
// separate table from severityImpact: impact and exploitability are
// independent axes even when both derive from the same severity tier.
var severityExploitability = map[finding.Severity]float64{
	finding.SeverityCritical: 8.0,
	finding.SeverityHigh:     6.5,
	finding.SeverityMedium:   4.5,
	finding.SeverityLow:      2.5,
	finding.SeverityInfo:     1.0,
}

// Scorer computes risk components for findings, consulting history for
// exposure age when available.
type Scorer struct {
	history HistoryProvider
}

// NewScorer returns a scorer. history may be nil, in which case every
// finding gets DefaultDetectionDays.
func NewScorer(history HistoryProvider) *Scorer {
	return &Scorer{history: history}
}

// Score derives the risk components for one finding.
func (s *Scorer) Score(f *finding.Finding) Components {
	return Components{
		Impact:         s.impact(f),
		Exploitability: s.exploitability(f),
		DetectionDays:  s.detectionDays(f),
	}
}

// impact prefers an attached CVSS score; a tool that measured the issue
// overrides the severity-derived default.
func (s *Scorer) impact(f *finding.Finding) float64 {
	if f.CVSSScore > 0 {
		return f.CVSSScore
	}
	if v, ok := f.Metadata["cvss_score"].(float64); ok && v > 0 {
		return v
	}
	return severityImpact[f.Severity]
}

func (s *Scorer) exploitability(f *finding.Finding) float64 {
	if v, ok := cweExploitability[f.CWEID]; ok {
		return v
	}
	return severityExploitability[f.Severity]
}

// detectionDays resolves the exposure age of the finding's start line.
// History failures degrade silently to the default: age is an enrichment
// signal, never a reason to fail scoring.
func (s *Scorer) detectionDays(f *finding.Finding) int {
	if s.history == nil || f.Location.File == "" || f.Location.StartLine <= 0 {
		return DefaultDetectionDays
	}
	days, err := s.history.AgeDays(f.Location.File, f.Location.StartLine)
	if err != nil {
		return DefaultDetectionDays
	}
	if days < 1 {
		days = 1
	}
	return days
}

// ScoredFinding pairs a finding with its risk components and composite.
type ScoredFinding struct {
	Finding   finding.Finding `json:"finding"`
	Risk      Components      `json:"risk"`
	Composite float64         `json:"composite"`
}

// Rank scores every finding and returns them ordered most-risky first.
// Ties break on severity rank, then file and line, then fingerprint, so the
// ordering is deterministic across runs.
func (s *Scorer) Rank(findings []finding.Finding) []ScoredFinding {
	scored := make([]ScoredFinding, 0, len(findings))
	for i := range findings {
		c := s.Score(&findings[i])
		scored = append(scored, ScoredFinding{
			Finding:   findings[i],
			Risk:      c,
			Composite: c.Score(),
		})
	}
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Composite != b.Composite {
			return a.Composite > b.Composite
		}
		if a.Finding.Severity.Rank() != b.Finding.Severity.Rank() {
			return a.Finding.Severity.Rank() > b.Finding.Severity.Rank()
		}
		if a.Finding.Location.File != b.Finding.Location.File {
			return a.Finding.Location.File < b.Finding.Location.File
		}
		if a.Finding.Location.StartLine != b.Finding.Location.StartLine {
			return a.Finding.Location.StartLine < b.Finding.Location.StartLine
		}
		return a.Finding.Fingerprint() < b.Finding.Fingerprint()
	})
	return scored
}
