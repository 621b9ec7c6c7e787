package finding

// Severity classifies how bad a finding is, ordered from most to least
// severe. The string values are the wire format used in JSON output and
// compliance reporting.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

var severityRank = map[Severity]int{
	SeverityCritical: 5,
	SeverityHigh:     4,
	SeverityMedium:   3,
	SeverityLow:      2,
	SeverityInfo:     1,
}

// Rank returns the numeric ordering of the severity, higher is worse.
// Unknown severities rank below info.
func (s Severity) Rank() int {
	return severityRank[s]
}

// IsValid reports whether s is one of the five known levels.
func (s Severity) IsValid() bool {
	_, ok := severityRank[s]
	return ok
}

// MaxSeverity returns the worse of the two severities.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// SARIFLevel maps the severity onto the SARIF result level vocabulary:
// critical/high become "error", medium "warning", low/info "note".
func (s Severity) SARIFLevel() string {
	switch s {
	case SeverityCritical, SeverityHigh:
		return "error"
	case SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// Confidence expresses how certain the reporting scanner is that the finding
// is a true positive, ordered high > medium > low.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

var confidenceRank = map[Confidence]int{
	ConfidenceHigh:   3,
	ConfidenceMedium: 2,
	ConfidenceLow:    1,
}

// Rank returns the numeric ordering of the confidence, higher is more certain.
func (c Confidence) Rank() int {
	return confidenceRank[c]
}

// MaxConfidence returns the higher of the two confidences.
func MaxConfidence(a, b Confidence) Confidence {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
