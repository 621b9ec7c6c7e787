// Package finding defines the normalized security finding model shared by
// every scanner adapter and consumed by the orchestrator, risk scorer, and
// compliance engine. A Finding carries a deterministic fingerprint so that
// the same underlying issue reported by different tools can be recognized
// and merged.
package finding

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrIdentityMismatch is returned by Merge when the two findings do not share
// a fingerprint. It indicates a caller bug, not a recoverable condition.
var ErrIdentityMismatch = errors.New("finding identity mismatch")

// MergedScannersKey is the metadata key under which Merge records the names
// of every scanner that corroborated the finding.
const MergedScannersKey = "merged_scanners"

// Location pinpoints where a finding was detected within a source file.
type Location struct {
	File        string `json:"file"`
	StartLine   int    `json:"line_start"`
	EndLine     int    `json:"line_end"`
	StartColumn int    `json:"column_start,omitempty"`
	EndColumn   int    `json:"column_end,omitempty"`
	Snippet     string `json:"snippet,omitempty"`
}

// SamePlace reports whether two locations point at the same spot: the same
// file with equal or overlapping line ranges.
func (l Location) SamePlace(other Location) bool {
	if l.File != other.File {
		return false
	}
	return l.StartLine <= other.EndLine && other.StartLine <= l.EndLine
}

// Finding is one normalized security issue reported by a scanner. Producers
// assign scanner-prefixed IDs; identity for deduplication comes from
// Fingerprint, never from ID.
type Finding struct {
	ID          string         `json:"id"`
	Scanner     string         `json:"scanner"`
	Severity    Severity       `json:"severity"`
	Confidence  Confidence     `json:"confidence"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Location    Location       `json:"location"`
	CWEID       string         `json:"cwe_id,omitempty"`
	CVSSScore   float64        `json:"cvss_score,omitempty"`
	Remediation string         `json:"remediation,omitempty"`
	References  []string       `json:"references,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	RawData     any            `json:"raw_data,omitempty"`
}

// Fingerprint computes the finding's deterministic identity: a 16-character
// hex string derived from file, line range, and CWE (title when no CWE is
// assigned). Two findings for the same weakness at the same place fingerprint
// identically regardless of which scanner reported them.
func (f *Finding) Fingerprint() string {
	kind := f.CWEID
	if kind == "" {
		kind = f.Title
	}
	key := fmt.Sprintf("%s|%d|%d|%s", f.Location.File, f.Location.StartLine, f.Location.EndLine, kind)
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// Merge folds other into f. Both findings must share a fingerprint or Merge
// fails with ErrIdentityMismatch. Severity becomes the worse of the two,
// confidence escalates to high when independent tools agree (otherwise the
// higher of the two wins), references are unioned preserving f's order, and
// the metadata merged_scanners list accumulates provenance.
func (f *Finding) Merge(other *Finding) error {
	fp, ofp := f.Fingerprint(), other.Fingerprint()
	if fp != ofp {
		return fmt.Errorf("%w: %s != %s", ErrIdentityMismatch, fp, ofp)
	}

	f.Severity = MaxSeverity(f.Severity, other.Severity)

	if f.Confidence == other.Confidence {
		// Independent corroboration of the same call increases certainty.
		f.Confidence = ConfidenceHigh
	} else {
		f.Confidence = MaxConfidence(f.Confidence, other.Confidence)
	}

	seen := make(map[string]struct{}, len(f.References))
	for _, r := range f.References {
		seen[r] = struct{}{}
	}
	for _, r := range other.References {
		if _, dup := seen[r]; !dup {
			f.References = append(f.References, r)
			seen[r] = struct{}{}
		}
	}

	if f.Metadata == nil {
		f.Metadata = make(map[string]any)
	}
	merged, _ := f.Metadata[MergedScannersKey].([]string)
	if len(merged) == 0 {
		merged = []string{f.Scanner}
	}
	if !containsString(merged, other.Scanner) {
		merged = append(merged, other.Scanner)
	}
	f.Metadata[MergedScannersKey] = merged

	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ToJSON serializes the finding to its plain-mapping form. Severity and
// confidence become their string tags and Location.File stays a plain path.
func (f *Finding) ToJSON() ([]byte, error) {
	return json.Marshal(f)
}

// FromJSON decodes a finding previously produced by ToJSON. The round trip
// is exact for every field including the nested location.
func FromJSON(data []byte) (*Finding, error) {
	var f Finding
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decoding finding: %w", err)
	}
	return &f, nil
}
