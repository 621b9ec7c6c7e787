package scanner

import (
	"context"
	"os/exec"
	"strings"
	"time"
)

// LookupTool resolves a tool binary on PATH. The boolean mirrors
// Adapter.IsAvailable: false means "not installed here", never an error.
func LookupTool(binary string) (string, bool) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", false
	}
	return path, true
}

// ToolVersion probes a tool's version by running it with the given args and
// returning the first output line. Empty on any failure; version reporting
// is informational only.
func ToolVersion(binary string, args ...string) string {
	if _, ok := LookupTool(binary); !ok {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, args...).Output()
	if err != nil {
		return ""
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return strings.TrimSpace(line)
}
