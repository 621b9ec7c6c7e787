package finding

// SARIF conversion for the code-scanning upload boundary. Field names follow
// the SARIF 2.1.0 result object; consumers treat them as a fixed contract.

type SARIFMessage struct {
	Text string `json:"text"`
}

type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

type SARIFRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           SARIFRegion           `json:"region"`
}

type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

type SARIFProperties struct {
	Scanner string  `json:"scanner"`
	CVSS    float64 `json:"cvss"`
}

// SARIFResult is one SARIF result record.
type SARIFResult struct {
	RuleID     string          `json:"ruleId"`
	Level      string          `json:"level"`
	Message    SARIFMessage    `json:"message"`
	Locations  []SARIFLocation `json:"locations"`
	Properties SARIFProperties `json:"properties"`
}

// SARIFRun groups results under a named tool driver.
type SARIFRun struct {
	Tool struct {
		Driver struct {
			Name string `json:"name"`
		} `json:"driver"`
	} `json:"tool"`
	Results []SARIFResult `json:"results"`
}

// SARIFLog is the top-level SARIF document.
type SARIFLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []SARIFRun `json:"runs"`
}

// ToSARIF converts the finding into a SARIF result. The rule ID is the CWE
// when assigned, otherwise the producer ID; the severity-to-level mapping is
// the one in Severity.SARIFLevel.
func (f *Finding) ToSARIF() SARIFResult {
	ruleID := f.CWEID
	if ruleID == "" {
		ruleID = f.ID
	}
	return SARIFResult{
		RuleID:  ruleID,
		Level:   f.Severity.SARIFLevel(),
		Message: SARIFMessage{Text: f.Title},
		Locations: []SARIFLocation{{
			PhysicalLocation: SARIFPhysicalLocation{
				ArtifactLocation: SARIFArtifactLocation{URI: f.Location.File},
				Region: SARIFRegion{
					StartLine: f.Location.StartLine,
					EndLine:   f.Location.EndLine,
				},
			},
		}},
		Properties: SARIFProperties{Scanner: f.Scanner, CVSS: f.CVSSScore},
	}
}

// NewSARIFLog wraps results from a full scan into a single-run SARIF
// document attributed to the given driver name.
func NewSARIFLog(driver string, results []SARIFResult) SARIFLog {
	var run SARIFRun
	run.Tool.Driver.Name = driver
	run.Results = results
	return SARIFLog{
		Version: "2.1.0",
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Runs:    []SARIFRun{run},
	}
}
