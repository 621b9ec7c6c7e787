package scanner

import (
	"testing"
	"time"
)

func TestConfigTimeout(t *testing.T) {
	if got := ConfigTimeout(nil); got != DefaultTimeout {
		t.Errorf("nil config timeout = %s, want default", got)
	}
	if got := ConfigTimeout(map[string]any{"timeout": 90}); got != 90*time.Second {
		t.Errorf("int timeout = %s, want 90s", got)
	}
	if got := ConfigTimeout(map[string]any{"timeout": 2.5}); got != 2500*time.Millisecond {
		t.Errorf("float timeout = %s, want 2.5s", got)
	}
	if got := ConfigTimeout(map[string]any{"timeout": -1}); got != DefaultTimeout {
		t.Errorf("negative timeout must fall back to default, got %s", got)
	}
}

func TestSemgrepCWEExtraction(t *testing.T) {
	cases := []struct {
		raw  any
		want string
	}{
		{"CWE-89: SQL Injection", "CWE-89"},
		{[]any{"CWE-78: OS Command Injection", "CWE-88"}, "CWE-78"},
		{"not a cwe", ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := semgrepCWE(tc.raw); got != tc.want {
			t.Errorf("semgrepCWE(%v) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
