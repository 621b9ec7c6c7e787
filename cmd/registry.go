package cmd

import (
	"github.com/sirupsen/logrus"

	"github.com/praetor-sec/praetor/pkg/orchestrator"
	"github.com/praetor-sec/praetor/pkg/scanner"
)

// newOrchestrator builds the orchestrator with every adapter this build
// ships. Registration happens once, before any scan runs.
func newOrchestrator() *orchestrator.Orchestrator {
	o := orchestrator.New(logrus.StandardLogger())
	mustRegister(o, scanner.NewSemgrepAdapter())
	mustRegister(o, scanner.NewGitleaksAdapter())
	return o
}

func mustRegister(o *orchestrator.Orchestrator, a scanner.Adapter) {
	if err := o.Register(a); err != nil {
		logrus.Fatalf("adapter registration failed: %v", err)
	}
}
