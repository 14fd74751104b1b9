package cli

import (
	"testing"

	"github.com/loupedev/loupe/internal/review"
)

func TestStatusExitCode(t *testing.T) {
	tests := []struct {
		status review.RunStatus
		want   int
	}{
		{review.StatusComplete, ExitSuccess},
		{review.StatusNothingToReview, ExitSuccess},
		{review.StatusPartialFailure, ExitPartial},
		{review.StatusAborted, ExitRuntimeError},
	}
	for _, tt := range tests {
		if got := statusExitCode(tt.status); got != tt.want {
			t.Errorf("statusExitCode(%s) = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestBuildOverrides(t *testing.T) {
	defer func() {
		flagModels = ""
		flagMaxRetries = 0
		flagOversizePolicy = ""
		flagLogLevel = ""
	}()

	flagModels = "openai:gpt-4o"
	flagMaxRetries = 3
	flagOversizePolicy = "reject"
	flagLogLevel = "debug"

	m := buildOverrides()
	want := map[string]string{
		"models":         "openai:gpt-4o",
		"maxRetries":     "3",
		"oversizePolicy": "reject",
		"logLevel":       "debug",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("overrides[%q] = %q, want %q", k, m[k], v)
		}
	}
	// Unset flags stay out of the map so they do not mask lower layers.
	if _, ok := m["concurrency"]; ok {
		t.Error("zero-valued flag leaked into overrides")
	}
}

func TestResolvePRNumber(t *testing.T) {
	if n, err := resolvePRNumber([]string{"17"}); err != nil || n != 17 {
		t.Errorf("resolvePRNumber([17]) = %d, %v", n, err)
	}
	if _, err := resolvePRNumber([]string{"zero"}); err == nil {
		t.Error("non-numeric argument should fail")
	}
	if _, err := resolvePRNumber([]string{"-4"}); err == nil {
		t.Error("negative PR number should fail")
	}

	t.Setenv("GITHUB_REF", "refs/pull/88/merge")
	if n, err := resolvePRNumber(nil); err != nil || n != 88 {
		t.Errorf("resolvePRNumber from GITHUB_REF = %d, %v", n, err)
	}

	t.Setenv("GITHUB_REF", "")
	if _, err := resolvePRNumber(nil); err == nil {
		t.Error("missing argument and GITHUB_REF should fail")
	}
}
