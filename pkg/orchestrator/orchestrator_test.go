package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/praetor-sec/praetor/pkg/finding"
	"github.com/praetor-sec/praetor/pkg/scanner"
)

type fakeAdapter struct {
	name      string
	available bool
	findings  []finding.Finding
	err       error
}

func (f *fakeAdapter) Name() string                { return f.name }
func (f *fakeAdapter) IsAvailable() bool           { return f.available }
func (f *fakeAdapter) Version() string             { return "1.0.0" }
func (f *fakeAdapter) InstallInstructions() string { return "install " + f.name }

func (f *fakeAdapter) Scan(ctx context.Context, target string, config map[string]any) ([]finding.Finding, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.findings, nil
}

func quietOrchestrator() *Orchestrator {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log)
}

func mkFinding(scannerName, file string, line int, cwe string, sev finding.Severity) finding.Finding {
	return finding.Finding{
		ID:       fmt.Sprintf("%s-%s-%d", scannerName, file, line),
		Scanner:  scannerName,
		Severity: sev,
		Title:    "finding in " + file,
		Location: finding.Location{File: file, StartLine: line, EndLine: line},
		CWEID:    cwe,
	}
}

func TestRegisterRejectsCollision(t *testing.T) {
	o := quietOrchestrator()
	if err := o.Register(&fakeAdapter{name: "semgrep", available: true}); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	err := o.Register(&fakeAdapter{name: "semgrep", available: true})
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("expected ErrAlreadyRegistered, got %v", err)
	}
}

func TestScanPreconditions(t *testing.T) {
	o := quietOrchestrator()

	_, err := o.Scan(context.Background(), "/definitely/not/here", DefaultOptions())
	if !errors.Is(err, scanner.ErrTargetNotFound) {
		t.Errorf("missing target: expected ErrTargetNotFound, got %v", err)
	}

	_, err = o.Scan(context.Background(), t.TempDir(), DefaultOptions())
	if !errors.Is(err, ErrNoAdaptersRegistered) {
		t.Errorf("empty registry: expected ErrNoAdaptersRegistered, got %v", err)
	}
}

func TestScanUnknownScanner(t *testing.T) {
	o := quietOrchestrator()
	_ = o.Register(&fakeAdapter{name: "semgrep", available: true})

	opts := DefaultOptions()
	opts.Scanners = []string{"nope"}
	_, err := o.Scan(context.Background(), t.TempDir(), opts)
	if !errors.Is(err, ErrUnknownScanner) {
		t.Errorf("expected ErrUnknownScanner, got %v", err)
	}
}

func TestScanExplicitUnavailableIsHardStop(t *testing.T) {
	o := quietOrchestrator()
	_ = o.Register(&fakeAdapter{name: "semgrep", available: false})

	opts := DefaultOptions()
	opts.Scanners = []string{"semgrep"}
	_, err := o.Scan(context.Background(), t.TempDir(), opts)
	if !errors.Is(err, ErrScannerUnavailable) {
		t.Errorf("expected ErrScannerUnavailable, got %v", err)
	}
}

func TestScanImplicitSkipsUnavailable(t *testing.T) {
	o := quietOrchestrator()
	_ = o.Register(&fakeAdapter{name: "down", available: false})
	_ = o.Register(&fakeAdapter{name: "up", available: true, findings: []finding.Finding{
		mkFinding("up", "a.go", 1, "CWE-79", finding.SeverityMedium),
	}})

	res, err := o.Scan(context.Background(), t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(res.Findings) != 1 {
		t.Errorf("got %d findings, want 1 from the available scanner", len(res.Findings))
	}
	if len(res.ScannersRun) != 1 || res.ScannersRun[0] != "up" {
		t.Errorf("scanners run = %v, want [up]", res.ScannersRun)
	}
}

func TestScanGracefulDegradation(t *testing.T) {
	o := quietOrchestrator()
	_ = o.Register(&fakeAdapter{name: "broken", available: true, err: fmt.Errorf("%w: boom", scanner.ErrScanFailed)})
	_ = o.Register(&fakeAdapter{name: "fine", available: true, findings: []finding.Finding{
		mkFinding("fine", "a.go", 3, "CWE-89", finding.SeverityHigh),
	}})

	res, err := o.Scan(context.Background(), t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("one bad scanner must not abort the run: %v", err)
	}
	if len(res.Findings) != 1 {
		t.Fatalf("got %d findings, want exactly the one from the healthy scanner", len(res.Findings))
	}
	if len(res.Failures) != 1 || res.Failures[0].Scanner != "broken" {
		t.Fatalf("failures = %+v, want one entry for 'broken'", res.Failures)
	}
	if !errors.Is(res.Failures[0].Err, scanner.ErrScanFailed) {
		t.Errorf("failure must preserve the adapter error kind, got %v", res.Failures[0].Err)
	}
}

func TestScanParallelAndSequentialAgree(t *testing.T) {
	build := func() *Orchestrator {
		o := quietOrchestrator()
		_ = o.Register(&fakeAdapter{name: "one", available: true, findings: []finding.Finding{
			mkFinding("one", "a.go", 1, "CWE-79", finding.SeverityMedium),
			mkFinding("one", "b.go", 9, "CWE-89", finding.SeverityHigh),
		}})
		_ = o.Register(&fakeAdapter{name: "two", available: true, findings: []finding.Finding{
			mkFinding("two", "a.go", 1, "CWE-79", finding.SeverityLow),
			mkFinding("two", "c.go", 2, "", finding.SeverityInfo),
		}})
		return o
	}

	fingerprints := func(res *Result) []string {
		var fps []string
		for i := range res.Findings {
			fps = append(fps, res.Findings[i].Fingerprint())
		}
		sort.Strings(fps)
		return fps
	}

	target := t.TempDir()

	par, err := build().Scan(context.Background(), target, DefaultOptions())
	if err != nil {
		t.Fatalf("parallel scan failed: %v", err)
	}
	seqOpts := DefaultOptions()
	seqOpts.Parallel = false
	seq, err := build().Scan(context.Background(), target, seqOpts)
	if err != nil {
		t.Fatalf("sequential scan failed: %v", err)
	}

	pf, sf := fingerprints(par), fingerprints(seq)
	if len(pf) != len(sf) {
		t.Fatalf("parallel found %d unique findings, sequential %d", len(pf), len(sf))
	}
	for i := range pf {
		if pf[i] != sf[i] {
			t.Errorf("finding sets differ: %v vs %v", pf, sf)
			break
		}
	}
}

func TestDeduplicateMergesByFingerprint(t *testing.T) {
	a := mkFinding("semgrep", "a.go", 10, "CWE-89", finding.SeverityMedium)
	b := mkFinding("gitleaks", "a.go", 10, "CWE-89", finding.SeverityCritical)
	c := mkFinding("semgrep", "b.go", 5, "CWE-79", finding.SeverityLow)

	out := Deduplicate([]finding.Finding{a, b, c})
	if len(out) != 2 {
		t.Fatalf("got %d findings after dedup, want 2", len(out))
	}

	// First-seen wins as the merge base.
	if out[0].Scanner != "semgrep" || out[0].ID != a.ID {
		t.Errorf("survivor = %s/%s, want the first-encountered finding", out[0].Scanner, out[0].ID)
	}
	if out[0].Severity != finding.SeverityCritical {
		t.Errorf("merged severity = %s, want critical", out[0].Severity)
	}
	merged, _ := out[0].Metadata[finding.MergedScannersKey].([]string)
	if len(merged) != 2 || merged[0] != "semgrep" || merged[1] != "gitleaks" {
		t.Errorf("merged_scanners = %v", merged)
	}
}

func TestDeduplicateCountLaw(t *testing.T) {
	unique := []finding.Finding{
		mkFinding("s", "a.go", 1, "CWE-79", finding.SeverityLow),
		mkFinding("s", "a.go", 2, "CWE-79", finding.SeverityLow),
		mkFinding("s", "b.go", 1, "CWE-89", finding.SeverityLow),
	}
	if got := Deduplicate(unique); len(got) != len(unique) {
		t.Errorf("all-unique input must keep its count: got %d, want %d", len(got), len(unique))
	}

	dup := append(unique, unique...)
	if got := Deduplicate(dup); len(got) != len(unique) {
		t.Errorf("duplicated input must shrink to the unique count: got %d, want %d", len(got), len(unique))
	}
}

func TestAdapterLookupIsAQuery(t *testing.T) {
	o := quietOrchestrator()
	if a := o.Adapter("missing"); a != nil {
		t.Errorf("missing adapter lookup must return nil, got %v", a)
	}
}
