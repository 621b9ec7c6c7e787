package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/praetor-sec/praetor/pkg/finding"
)

// SemgrepAdapter runs semgrep in JSON mode and normalizes its results.
type SemgrepAdapter struct{}

func NewSemgrepAdapter() *SemgrepAdapter {
	return &SemgrepAdapter{}
}

func (s *SemgrepAdapter) Name() string {
	return "semgrep"
}

func (s *SemgrepAdapter) IsAvailable() bool {
	_, ok := LookupTool("semgrep")
	return ok
}

func (s *SemgrepAdapter) Version() string {
	return ToolVersion("semgrep", "--version")
}

func (s *SemgrepAdapter) InstallInstructions() string {
	return "Install semgrep with 'pip install semgrep' or 'brew install semgrep'. See https://semgrep.dev/docs/getting-started/."
}

func (s *SemgrepAdapter) Scan(ctx context.Context, target string, config map[string]any) ([]finding.Finding, error) {
	if !s.IsAvailable() {
		return nil, fmt.Errorf("%w: semgrep binary not on PATH", ErrNotAvailable)
	}
	if _, err := os.Stat(target); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}

	rules := "auto"
	if r, ok := config["rules"].(string); ok && r != "" {
		rules = r
	}

	ctx, cancel := context.WithTimeout(ctx, ConfigTimeout(config))
	defer cancel()

	cmd := exec.CommandContext(ctx, "semgrep", "scan", "--json", "--quiet", "--config", rules, target)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w: semgrep exceeded %s", ErrTimeout, ConfigTimeout(config))
	}
	if err != nil {
		// Exit code 1 means findings when --error is set; anything else is a
		// real failure.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, fmt.Errorf("%w: semgrep: %v: %s", ErrScanFailed, err, firstLine(stderr.String()))
		}
	}

	findings, err := parseSemgrepOutput(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputParseError, err)
	}
	return findings, nil
}

type semgrepOutput struct {
	Results []semgrepResult `json:"results"`
}

type semgrepResult struct {
	CheckID string `json:"check_id"`
	Path    string `json:"path"`
	Start   struct {
		Line int `json:"line"`
		Col  int `json:"col"`
	} `json:"start"`
	End struct {
		Line int `json:"line"`
		Col  int `json:"col"`
	} `json:"end"`
	Extra struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
		Lines    string `json:"lines"`
		Metadata struct {
			CWE        any      `json:"cwe"`
			Confidence string   `json:"confidence"`
			References []string `json:"references"`
		} `json:"metadata"`
	} `json:"extra"`
}

func parseSemgrepOutput(data []byte) ([]finding.Finding, error) {
	var out semgrepOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	var findings []finding.Finding
	for _, r := range out.Results {
		f := finding.Finding{
			ID:          fmt.Sprintf("semgrep-%s-%d", shortCheckID(r.CheckID), r.Start.Line),
			Scanner:     "semgrep",
			Severity:    semgrepSeverity(r.Extra.Severity),
			Confidence:  semgrepConfidence(r.Extra.Metadata.Confidence),
			Title:       r.Extra.Message,
			Description: fmt.Sprintf("Rule %s matched.", r.CheckID),
			Location: finding.Location{
				File:        r.Path,
				StartLine:   r.Start.Line,
				EndLine:     r.End.Line,
				StartColumn: r.Start.Col,
				EndColumn:   r.End.Col,
				Snippet:     strings.TrimRight(r.Extra.Lines, "\n"),
			},
			CWEID:      semgrepCWE(r.Extra.Metadata.CWE),
			References: r.Extra.Metadata.References,
			RawData:    r,
		}
		findings = append(findings, f)
	}
	return findings, nil
}

func semgrepSeverity(s string) finding.Severity {
	switch strings.ToUpper(s) {
	case "ERROR":
		return finding.SeverityHigh
	case "WARNING":
		return finding.SeverityMedium
	default:
		return finding.SeverityInfo
	}
}

func semgrepConfidence(c string) finding.Confidence {
	switch strings.ToUpper(c) {
	case "HIGH":
		return finding.ConfidenceHigh
	case "LOW":
		return finding.ConfidenceLow
	default:
		return finding.ConfidenceMedium
	}
}

// semgrepCWE extracts a bare CWE identifier from rule metadata, which may be
// a string like "CWE-89: SQL Injection" or a list of such strings.
func semgrepCWE(raw any) string {
	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case []any:
		if len(v) > 0 {
			s, _ = v[0].(string)
		}
	}
	if s == "" {
		return ""
	}
	id, _, _ := strings.Cut(s, ":")
	id = strings.TrimSpace(id)
	if !strings.HasPrefix(id, "CWE-") {
		return ""
	}
	return id
}

// shortCheckID keeps only the final segment of a dotted semgrep rule path.
func shortCheckID(checkID string) string {
	if i := strings.LastIndex(checkID, "."); i >= 0 {
		return checkID[i+1:]
	}
	return checkID
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}
