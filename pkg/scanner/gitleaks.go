package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/praetor-sec/praetor/pkg/finding"
)

// GitleaksAdapter runs gitleaks against a source tree and normalizes every
// leak into a hardcoded-credential finding (CWE-798).
type GitleaksAdapter struct{}

func NewGitleaksAdapter() *GitleaksAdapter {
	return &GitleaksAdapter{}
}

func (g *GitleaksAdapter) Name() string {
	return "gitleaks"
}

func (g *GitleaksAdapter) IsAvailable() bool {
	_, ok := LookupTool("gitleaks")
	return ok
}

func (g *GitleaksAdapter) Version() string {
	return ToolVersion("gitleaks", "version")
}

func (g *GitleaksAdapter) InstallInstructions() string {
	return "Install gitleaks with 'brew install gitleaks' or download a release from https://github.com/gitleaks/gitleaks/releases."
}

func (g *GitleaksAdapter) Scan(ctx context.Context, target string, config map[string]any) ([]finding.Finding, error) {
	if !g.IsAvailable() {
		return nil, fmt.Errorf("%w: gitleaks binary not on PATH", ErrNotAvailable)
	}
	if _, err := os.Stat(target); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTargetNotFound, target)
	}

	report, err := os.CreateTemp("", "gitleaks-report-*.json")
	if err != nil {
		return nil, fmt.Errorf("%w: creating report file: %v", ErrScanFailed, err)
	}
	reportPath := report.Name()
	report.Close()
	defer os.Remove(reportPath)

	ctx, cancel := context.WithTimeout(ctx, ConfigTimeout(config))
	defer cancel()

	cmd := exec.CommandContext(ctx, "gitleaks", "detect",
		"--source", target,
		"--report-path", reportPath,
		"--no-banner", "--exit-code", "1")
	var combined bytes.Buffer
	cmd.Stdout = &combined
	cmd.Stderr = &combined

	err = cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("%w: gitleaks exceeded %s", ErrTimeout, ConfigTimeout(config))
	}
	if err != nil {
		// Exit code 1 means leaks were found; the report file has them.
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) || exitErr.ExitCode() != 1 {
			return nil, fmt.Errorf("%w: gitleaks: %v: %s", ErrScanFailed, err, firstLine(combined.String()))
		}
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading report: %v", ErrOutputParseError, err)
	}
	findings, err := parseGitleaksReport(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutputParseError, err)
	}
	return findings, nil
}

type gitleaksLeak struct {
	Description string `json:"Description"`
	File        string `json:"File"`
	StartLine   int    `json:"StartLine"`
	EndLine     int    `json:"EndLine"`
	RuleID      string `json:"RuleID"`
}

func parseGitleaksReport(data []byte) ([]finding.Finding, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var leaks []gitleaksLeak
	if err := json.Unmarshal(data, &leaks); err != nil {
		return nil, err
	}

	var findings []finding.Finding
	for _, leak := range leaks {
		endLine := leak.EndLine
		if endLine == 0 {
			endLine = leak.StartLine
		}
		f := finding.Finding{
			ID:          fmt.Sprintf("gitleaks-%s-%d", leak.RuleID, leak.StartLine),
			Scanner:     "gitleaks",
			Severity:    finding.SeverityCritical,
			Confidence:  finding.ConfidenceHigh,
			Title:       fmt.Sprintf("Hardcoded secret: %s", leak.Description),
			Description: fmt.Sprintf("Rule %s matched a credential committed to the codebase.", leak.RuleID),
			Location: finding.Location{
				File:      leak.File,
				StartLine: leak.StartLine,
				EndLine:   endLine,
			},
			CWEID:       "CWE-798",
			Remediation: "Revoke the secret immediately and remove it from history.",
			Metadata:    map[string]any{"rule_id": leak.RuleID},
			// The matched secret itself is deliberately not carried into
			// Snippet or RawData.
			RawData: gitleaksLeak{
				Description: leak.Description,
				File:        leak.File,
				StartLine:   leak.StartLine,
				EndLine:     leak.EndLine,
				RuleID:      leak.RuleID,
			},
		}
		findings = append(findings, f)
	}
	return findings, nil
}
