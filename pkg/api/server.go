// Package api exposes scan orchestration over HTTP for CI systems that call
// a long-lived service instead of running the CLI per build. Findings are
// never persisted; every response is computed from a fresh scan.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"

	"github.com/praetor-sec/praetor/pkg/compliance"
	"github.com/praetor-sec/praetor/pkg/finding"
	"github.com/praetor-sec/praetor/pkg/orchestrator"
	"github.com/praetor-sec/praetor/pkg/risk"
	"github.com/praetor-sec/praetor/pkg/scanner"
)

// Server wires the orchestrator, scorer, and posture engine behind a chi
// router.
type Server struct {
	orch   *orchestrator.Orchestrator
	scorer *risk.Scorer
	log    *logrus.Logger
}

// NewServer builds a server. log falls back to the logrus standard logger.
func NewServer(orch *orchestrator.Orchestrator, scorer *risk.Scorer, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{orch: orch, scorer: scorer, log: log}
}

// Router returns the HTTP handler for the API surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/scanners", s.handleScanners)
		r.Post("/scan", s.handleScan)
	})
	return r
}

// ListenAndServe runs the API on addr until the server errors out.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Minute,
	}
	s.log.WithField("addr", addr).Info("scan API listening")
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

type scannerInfo struct {
	Name                string `json:"name"`
	Available           bool   `json:"available"`
	Version             string `json:"version,omitempty"`
	InstallInstructions string `json:"install_instructions,omitempty"`
}

func (s *Server) handleScanners(w http.ResponseWriter, r *http.Request) {
	var out []scannerInfo
	for _, name := range s.orch.ListScanners() {
		a := s.orch.Adapter(name)
		info := scannerInfo{Name: name, Available: a.IsAvailable()}
		if info.Available {
			info.Version = a.Version()
		} else {
			info.InstallInstructions = a.InstallInstructions()
		}
		out = append(out, info)
	}
	render.JSON(w, r, map[string]any{"scanners": out})
}

type scanRequest struct {
	Target      string   `json:"target"`
	Scanners    []string `json:"scanners,omitempty"`
	FailOn      []string `json:"fail_on,omitempty"`
	Parallel    *bool    `json:"parallel,omitempty"`
	Deduplicate *bool    `json:"deduplicate,omitempty"`
}

type scanResponse struct {
	ID          string                      `json:"id"`
	Target      string                      `json:"target"`
	ScannersRun []string                    `json:"scanners_run"`
	Failures    []orchestrator.Failure      `json:"failures,omitempty"`
	Findings    []risk.ScoredFinding        `json:"findings"`
	Compliance  []compliance.CategoryResult `json:"compliance"`
	Posture     compliance.Posture          `json:"posture"`
	Gate        compliance.GateResult       `json:"gate"`
	DurationMS  int64                       `json:"duration_ms"`
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid json"})
		return
	}
	if req.Target == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "target is required"})
		return
	}

	failOn, err := parseSeverities(req.FailOn)
	if err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	opts := orchestrator.DefaultOptions()
	opts.Scanners = req.Scanners
	if req.Parallel != nil {
		opts.Parallel = *req.Parallel
	}
	if req.Deduplicate != nil {
		opts.Deduplicate = *req.Deduplicate
	}

	res, err := s.orch.Scan(r.Context(), req.Target, opts)
	if err != nil {
		status := http.StatusInternalServerError
		if isPreconditionError(err) {
			status = http.StatusBadRequest
		}
		s.log.WithField("target", req.Target).Warnf("scan rejected: %v", err)
		render.Status(r, status)
		render.JSON(w, r, map[string]string{"error": err.Error()})
		return
	}

	table := compliance.CheckCompliance(res.Findings, nil)
	resp := scanResponse{
		ID:          res.ID,
		Target:      res.Target,
		ScannersRun: res.ScannersRun,
		Failures:    res.Failures,
		Findings:    s.scorer.Rank(res.Findings),
		Compliance:  table,
		Posture:     compliance.DeterminePosture(table, res.Findings),
		Gate:        compliance.RunGate(res.Findings, failOn),
		DurationMS:  res.Duration.Milliseconds(),
	}
	render.JSON(w, r, resp)
}

// isPreconditionError matches the orchestrator-level misuse errors that are
// the caller's fault rather than ours.
func isPreconditionError(err error) bool {
	return errors.Is(err, scanner.ErrTargetNotFound) ||
		errors.Is(err, orchestrator.ErrNoAdaptersRegistered) ||
		errors.Is(err, orchestrator.ErrUnknownScanner) ||
		errors.Is(err, orchestrator.ErrScannerUnavailable)
}

func parseSeverities(names []string) ([]finding.Severity, error) {
	var out []finding.Severity
	for _, n := range names {
		sev := finding.Severity(n)
		if !sev.IsValid() {
			return nil, errors.New("invalid severity: " + n)
		}
		out = append(out, sev)
	}
	return out, nil
}
