// Package scanner defines the adapter contract every scanner implementation
// must satisfy, the error taxonomy the orchestrator relies on to tell "tool
// is down" apart from "tool ran and something else broke", and adapters for
// the tools shipped with the CLI.
package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/praetor-sec/praetor/pkg/finding"
)

// Adapter errors. Each kind is distinct so callers can match with errors.Is.
var (
	// ErrNotAvailable means the tool cannot run right now (missing binary,
	// misconfiguration). It is not a scan failure.
	ErrNotAvailable = errors.New("scanner not available")

	// ErrTargetNotFound means the scan target path does not exist.
	ErrTargetNotFound = errors.New("target not found")

	// ErrScanFailed means the tool ran but exited abnormally.
	ErrScanFailed = errors.New("scan failed")

	// ErrTimeout means the tool exceeded its allotted run time.
	ErrTimeout = errors.New("scan timed out")

	// ErrOutputParseError means the tool produced output we could not decode.
	ErrOutputParseError = errors.New("cannot parse scanner output")
)

// DefaultTimeout bounds a single tool invocation unless the per-adapter
// config overrides it.
const DefaultTimeout = 5 * time.Minute

// Adapter is the capability every scanner implementation exposes. Concrete
// adapters own the conversion of their tool's raw output into normalized
// findings; the core never inspects tool-specific shapes.
type Adapter interface {
	// Name returns the stable identifier used for registration and
	// deduplication provenance.
	Name() string

	// IsAvailable reports whether the tool can run right now. It never
	// returns an error; false means "cannot run", not "something broke".
	IsAvailable() bool

	// Version returns the installed tool version, or empty when unknown.
	Version() string

	// Scan runs the tool against target and returns normalized findings.
	// Errors are always one of ErrNotAvailable, ErrTargetNotFound,
	// ErrScanFailed, ErrTimeout, or ErrOutputParseError.
	Scan(ctx context.Context, target string, config map[string]any) ([]finding.Finding, error)

	// InstallInstructions returns a human-readable hint for installing the
	// tool. No side effects.
	InstallInstructions() string
}

// ConfigTimeout reads the per-adapter "timeout" config value (seconds) and
// falls back to DefaultTimeout.
func ConfigTimeout(config map[string]any) time.Duration {
	if config == nil {
		return DefaultTimeout
	}
	switch v := config["timeout"].(type) {
	case int:
		if v > 0 {
			return time.Duration(v) * time.Second
		}
	case float64:
		if v > 0 {
			return time.Duration(v * float64(time.Second))
		}
	case time.Duration:
		if v > 0 {
			return v
		}
	}
	return DefaultTimeout
}
