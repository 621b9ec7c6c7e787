package risk

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// GitHistory answers exposure-age questions from git blame. Lookups are
// bounded by Timeout; any failure surfaces as an error and the scorer falls
// back to its default.
type GitHistory struct {
	Timeout time.Duration

	now func() time.Time
}

// NewGitHistory returns a git-backed history provider with a 10 second
// per-lookup timeout.
func NewGitHistory() *GitHistory {
	return &GitHistory{Timeout: 10 * time.Second, now: time.Now}
}

// AgeDays returns how many days ago the given line of file was last
// changed, per git blame committer time, clamped to at least 1 day.
func (g *GitHistory) AgeDays(file string, line int) (int, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(abs); err != nil {
		return 0, fmt.Errorf("file not found: %s", file)
	}
	root, err := repoRoot(filepath.Dir(abs))
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), g.Timeout)
	defer cancel()

	lineRange := fmt.Sprintf("%d,%d", line, line)
	cmd := exec.CommandContext(ctx, "git", "-C", root, "blame", "--porcelain", "-L", lineRange, "--", abs)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("git blame %s:%d: %w", file, line, err)
	}

	committed, err := committerTime(out)
	if err != nil {
		return 0, err
	}

	clock := g.now
	if clock == nil {
		clock = time.Now
	}
	days := int(clock().Sub(committed).Hours() / 24)
	if days < 1 {
		days = 1
	}
	return days, nil
}

// repoRoot walks upward from dir looking for a .git entry.
func repoRoot(dir string) (string, error) {
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no git repository above %s", dir)
		}
		dir = parent
	}
}

// committerTime extracts the committer-time header from porcelain blame
// output.
func committerTime(blame []byte) (time.Time, error) {
	sc := bufio.NewScanner(bytes.NewReader(blame))
	for sc.Scan() {
		line := sc.Text()
		if rest, ok := strings.CutPrefix(line, "committer-time "); ok {
			unix, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
			if err != nil {
				return time.Time{}, fmt.Errorf("bad committer-time %q: %w", rest, err)
			}
			return time.Unix(unix, 0), nil
		}
	}
	return time.Time{}, fmt.Errorf("no committer-time in blame output")
}
