// Package orchestrator drives registered scanner adapters against a target,
// collects their findings, and deduplicates cross-tool duplicates by
// fingerprint. One failing scanner never aborts the run: a partial scan that
// says which tools failed beats no scan at all.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/praetor-sec/praetor/pkg/finding"
	"github.com/praetor-sec/praetor/pkg/scanner"
)

// Orchestrator-level errors. These indicate caller misuse and always
// propagate; they are never downgraded to warnings.
var (
	ErrNoAdaptersRegistered = errors.New("no scanner adapters registered")
	ErrAlreadyRegistered    = errors.New("scanner already registered")
	ErrUnknownScanner       = errors.New("unknown scanner")
	ErrScannerUnavailable   = errors.New("requested scanner unavailable")
)

// Options controls one orchestrated scan. Use DefaultOptions as the base:
// parallel execution and deduplication are both on unless turned off.
type Options struct {
	// Scanners restricts the run to an explicit set of adapter names. When
	// empty every registered adapter that reports available is run.
	Scanners []string

	// Config holds per-adapter configuration keyed by adapter name.
	Config map[string]map[string]any

	Parallel    bool
	Deduplicate bool
}

// DefaultOptions returns the standard scan options.
func DefaultOptions() Options {
	return Options{Parallel: true, Deduplicate: true}
}

// Failure records one adapter that errored during a run.
type Failure struct {
	Scanner string `json:"scanner"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Result is the outcome of one orchestrated scan.
type Result struct {
	ID          string            `json:"id"`
	Target      string            `json:"target"`
	Findings    []finding.Finding `json:"findings"`
	Failures    []Failure         `json:"failures,omitempty"`
	ScannersRun []string          `json:"scanners_run"`
	StartedAt   time.Time         `json:"started_at"`
	Duration    time.Duration     `json:"duration"`
}

// Orchestrator holds the adapter registry. Registration happens at setup
// time; once scanning starts the registry is read-only, so concurrent Scan
// calls are safe as long as no Register call races with them.
type Orchestrator struct {
	names    []string
	adapters map[string]scanner.Adapter
	log      *logrus.Logger
}

// New returns an empty orchestrator logging through log (logrus standard
// logger when nil).
func New(log *logrus.Logger) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Orchestrator{
		adapters: make(map[string]scanner.Adapter),
		log:      log,
	}
}

// Register adds an adapter to the registry. A name collision fails with
// ErrAlreadyRegistered rather than silently shadowing the earlier adapter.
func (o *Orchestrator) Register(a scanner.Adapter) error {
	name := a.Name()
	if _, exists := o.adapters[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	o.adapters[name] = a
	o.names = append(o.names, name)
	return nil
}

// ListScanners returns the registered adapter names in registration order.
func (o *Orchestrator) ListScanners() []string {
	out := make([]string, len(o.names))
	copy(out, o.names)
	return out
}

// Adapter looks up a registered adapter by name. Absence is not an error;
// the lookup simply returns nil.
func (o *Orchestrator) Adapter(name string) scanner.Adapter {
	return o.adapters[name]
}

// Scan runs the selected adapters against target and returns the combined,
// optionally deduplicated findings. Adapter errors are recovered per adapter
// and reported in Result.Failures; orchestrator-level precondition failures
// stop the run before any adapter is invoked.
func (o *Orchestrator) Scan(ctx context.Context, target string, opts Options) (*Result, error) {
	start := time.Now()

	if _, err := os.Stat(target); err != nil {
		return nil, fmt.Errorf("%w: %s", scanner.ErrTargetNotFound, target)
	}
	if len(o.names) == 0 && len(opts.Scanners) == 0 {
		return nil, ErrNoAdaptersRegistered
	}

	selected, err := o.resolve(opts.Scanners)
	if err != nil {
		return nil, err
	}

	perAdapter := make([][]finding.Finding, len(selected))
	failures := make([]*Failure, len(selected))

	run := func(i int) {
		a := selected[i]
		findings, err := a.Scan(ctx, target, opts.Config[a.Name()])
		if err != nil {
			o.log.WithField("scanner", a.Name()).Warnf("scan failed, continuing without it: %v", err)
			failures[i] = &Failure{Scanner: a.Name(), Message: err.Error(), Err: err}
			return
		}
		perAdapter[i] = findings
	}

	if opts.Parallel {
		var wg sync.WaitGroup
		for i := range selected {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				run(i)
			}(i)
		}
		wg.Wait()
	} else {
		for i := range selected {
			run(i)
		}
	}

	res := &Result{
		ID:        uuid.NewString(),
		Target:    target,
		StartedAt: start,
	}
	for i, a := range selected {
		res.ScannersRun = append(res.ScannersRun, a.Name())
		res.Findings = append(res.Findings, perAdapter[i]...)
		if failures[i] != nil {
			res.Failures = append(res.Failures, *failures[i])
		}
	}
	if opts.Deduplicate {
		res.Findings = Deduplicate(res.Findings)
	}
	res.Duration = time.Since(start)
	return res, nil
}

// resolve picks the working set of adapters. An explicit request is strict:
// unknown names and unavailable scanners are hard errors. The implicit
// run-everything default silently skips whatever cannot run right now.
func (o *Orchestrator) resolve(requested []string) ([]scanner.Adapter, error) {
	if len(requested) > 0 {
		selected := make([]scanner.Adapter, 0, len(requested))
		for _, name := range requested {
			a, ok := o.adapters[name]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownScanner, name)
			}
			if !a.IsAvailable() {
				return nil, fmt.Errorf("%w: %s (%s)", ErrScannerUnavailable, name, a.InstallInstructions())
			}
			selected = append(selected, a)
		}
		return selected, nil
	}

	var selected []scanner.Adapter
	for _, name := range o.names {
		a := o.adapters[name]
		if !a.IsAvailable() {
			o.log.WithField("scanner", name).Debug("skipping unavailable scanner")
			continue
		}
		selected = append(selected, a)
	}
	return selected, nil
}

// Deduplicate groups findings by fingerprint and folds every group into its
// first-encountered member, in encounter order. The input order therefore
// decides who survives as the merge base; callers feed findings in adapter
// registration order, then per-adapter result order.
func Deduplicate(findings []finding.Finding) []finding.Finding {
	out := make([]finding.Finding, 0, len(findings))
	index := make(map[string]int, len(findings))

	for i := range findings {
		f := findings[i]
		fp := f.Fingerprint()
		at, seen := index[fp]
		if !seen {
			index[fp] = len(out)
			out = append(out, f)
			continue
		}
		if err := out[at].Merge(&f); err != nil {
			// Cannot happen for same-fingerprint groups; a failure here is a
			// bug in the fingerprint or merge law.
			logrus.WithField("fingerprint", fp).Errorf("merge during dedup failed: %v", err)
		}
	}
	return out
}
