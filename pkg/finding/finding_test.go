package finding

import (
	"errors"
	"reflect"
	"testing"
)

func sqlInjection(scanner string) *Finding {
	return &Finding{
		ID:          scanner + "-001",
		Scanner:     scanner,
		Severity:    SeverityHigh,
		Confidence:  ConfidenceMedium,
		Title:       "SQL query built from user input",
		Description: "User-controlled data reaches a SQL query without parameterization.",
		Location:    Location{File: "app/db.py", StartLine: 42, EndLine: 44},
		CWEID:       "CWE-89",
		References:  []string{"https://cwe.mitre.org/data/definitions/89.html"},
	}
}

func TestFingerprintIgnoresProducerFields(t *testing.T) {
	a := sqlInjection("semgrep")
	b := sqlInjection("gitleaks")
	b.ID = "gitleaks-999"
	b.Severity = SeverityCritical
	b.Confidence = ConfidenceLow
	b.Title = "completely different title"

	if a.Fingerprint() != b.Fingerprint() {
		t.Errorf("same file/lines/CWE must fingerprint equal: %s != %s", a.Fingerprint(), b.Fingerprint())
	}
	if len(a.Fingerprint()) != 16 {
		t.Errorf("fingerprint length = %d, want 16", len(a.Fingerprint()))
	}
}

func TestFingerprintTitleFallback(t *testing.T) {
	a := sqlInjection("semgrep")
	b := sqlInjection("semgrep")
	a.CWEID, b.CWEID = "", ""

	if a.Fingerprint() != b.Fingerprint() {
		t.Error("identical title and location without CWE must fingerprint equal")
	}

	b.Title = "something else"
	if a.Fingerprint() == b.Fingerprint() {
		t.Error("differing titles without CWE must fingerprint differently")
	}
}

func TestFingerprintChangesWithLocation(t *testing.T) {
	a := sqlInjection("semgrep")
	b := sqlInjection("semgrep")
	b.Location.StartLine = 43

	if a.Fingerprint() == b.Fingerprint() {
		t.Error("different start line must change the fingerprint")
	}
}

func TestMergeRejectsIdentityMismatch(t *testing.T) {
	a := sqlInjection("semgrep")
	b := sqlInjection("semgrep")
	b.Location.File = "app/other.py"

	err := a.Merge(b)
	if !errors.Is(err, ErrIdentityMismatch) {
		t.Fatalf("expected ErrIdentityMismatch, got %v", err)
	}
}

func TestMergeTakesMaxSeverity(t *testing.T) {
	a := sqlInjection("semgrep")
	b := sqlInjection("gitleaks")
	a.Severity = SeverityMedium
	b.Severity = SeverityCritical

	if err := a.Merge(b); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if a.Severity != SeverityCritical {
		t.Errorf("severity after merge = %s, want critical", a.Severity)
	}

	// Call order must not matter for the severity law.
	c := sqlInjection("semgrep")
	d := sqlInjection("gitleaks")
	c.Severity = SeverityCritical
	d.Severity = SeverityMedium
	if err := c.Merge(d); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if c.Severity != SeverityCritical {
		t.Errorf("severity after reversed merge = %s, want critical", c.Severity)
	}
}

func TestMergeEscalatesConfidenceOnAgreement(t *testing.T) {
	a := sqlInjection("semgrep")
	b := sqlInjection("gitleaks")
	a.Confidence = ConfidenceMedium
	b.Confidence = ConfidenceMedium

	if err := a.Merge(b); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if a.Confidence != ConfidenceHigh {
		t.Errorf("agreeing confidences must escalate to high, got %s", a.Confidence)
	}
}

func TestMergeTakesHigherConfidenceOnDisagreement(t *testing.T) {
	a := sqlInjection("semgrep")
	b := sqlInjection("gitleaks")
	a.Confidence = ConfidenceLow
	b.Confidence = ConfidenceMedium

	if err := a.Merge(b); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if a.Confidence != ConfidenceMedium {
		t.Errorf("confidence after merge = %s, want medium", a.Confidence)
	}
}

func TestMergeUnionsReferencesPreservingOrder(t *testing.T) {
	a := sqlInjection("semgrep")
	b := sqlInjection("gitleaks")
	b.References = []string{
		"https://cwe.mitre.org/data/definitions/89.html", // duplicate
		"https://owasp.org/Top10/A03_2021-Injection/",
	}

	if err := a.Merge(b); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	want := []string{
		"https://cwe.mitre.org/data/definitions/89.html",
		"https://owasp.org/Top10/A03_2021-Injection/",
	}
	if !reflect.DeepEqual(a.References, want) {
		t.Errorf("references = %v, want %v", a.References, want)
	}
}

func TestMergeRecordsScannerProvenance(t *testing.T) {
	a := sqlInjection("semgrep")
	b := sqlInjection("bandit")
	c := sqlInjection("bandit")

	if err := a.Merge(b); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if err := a.Merge(c); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	merged, ok := a.Metadata[MergedScannersKey].([]string)
	if !ok {
		t.Fatalf("merged_scanners metadata missing or wrong type: %v", a.Metadata[MergedScannersKey])
	}
	want := []string{"semgrep", "bandit"}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("merged_scanners = %v, want %v", merged, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig := sqlInjection("semgrep")
	orig.CVSSScore = 8.6
	orig.Remediation = "Use parameterized queries."
	orig.Location.StartColumn = 5
	orig.Location.EndColumn = 38
	orig.Location.Snippet = `cur.execute("SELECT * FROM users WHERE id = " + uid)`

	data, err := orig.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	got, err := FromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON failed: %v", err)
	}
	if !reflect.DeepEqual(orig, got) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, orig)
	}
}

func TestLocationSamePlace(t *testing.T) {
	a := Location{File: "a.go", StartLine: 10, EndLine: 12}
	b := Location{File: "a.go", StartLine: 12, EndLine: 15}
	c := Location{File: "a.go", StartLine: 13, EndLine: 15}
	d := Location{File: "b.go", StartLine: 10, EndLine: 12}

	if !a.SamePlace(b) {
		t.Error("overlapping ranges in the same file must be the same place")
	}
	if a.SamePlace(c) {
		t.Error("disjoint ranges are not the same place")
	}
	if a.SamePlace(d) {
		t.Error("different files are never the same place")
	}
}
