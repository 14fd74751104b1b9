package review

import (
	"context"
	"strings"
	"testing"
)

func TestMerge_SingleChunkIdentity(t *testing.T) {
	body := "## Review\n\nLooks fine.\n"
	got := Merge([]Result{{ChunkIndex: 0, Status: ResultOk, Body: body}})
	if got != body {
		t.Errorf("single-chunk merge altered the body:\n%q", got)
	}
	if strings.Contains(got, "Part 1 of") {
		t.Error("single-chunk merge must not add part headers")
	}
}

func TestMerge_MultiChunkOrderedByIndex(t *testing.T) {
	// Completion order is scrambled; output must follow chunk index.
	results := []Result{
		{ChunkIndex: 2, Status: ResultOk, Body: "third", Files: []string{"c.go"}},
		{ChunkIndex: 0, Status: ResultOk, Body: "first", Files: []string{"a.go"}},
		{ChunkIndex: 1, Status: ResultOk, Body: "second", Files: []string{"b.go"}},
	}
	doc := Merge(results)

	i1 := strings.Index(doc, "## Part 1 of 3")
	i2 := strings.Index(doc, "## Part 2 of 3")
	i3 := strings.Index(doc, "## Part 3 of 3")
	if i1 < 0 || i2 < 0 || i3 < 0 {
		t.Fatalf("missing part headers:\n%s", doc)
	}
	if !(i1 < i2 && i2 < i3) {
		t.Error("parts are out of order")
	}
	if strings.Index(doc, "first") > strings.Index(doc, "second") {
		t.Error("bodies are out of chunk-index order")
	}
	if !strings.Contains(doc, "**Files:** a.go") {
		t.Error("part sections should name their files")
	}
	if !strings.Contains(doc, "reviewed in 3 parts") {
		t.Error("missing the multi-part banner")
	}
}

func TestMerge_FailedChunkGetsPlaceholder(t *testing.T) {
	results := []Result{
		{ChunkIndex: 0, Status: ResultOk, Body: "ok one", Files: []string{"a.go"}},
		{ChunkIndex: 1, Status: ResultFailed, Err: &ExhaustedError{Candidates: 2}, Files: []string{"b.go"}},
		{ChunkIndex: 2, Status: ResultOk, Body: "ok three", Files: []string{"c.go"}},
	}
	doc := Merge(results)

	if !strings.Contains(doc, "ok one") || !strings.Contains(doc, "ok three") {
		t.Error("successful parts were dropped alongside the failed one")
	}
	if !strings.Contains(doc, "could not be reviewed") {
		t.Error("failed part has no visible placeholder")
	}
	if !strings.Contains(doc, "## Part 2 of 3") {
		t.Error("failed part lost its section header")
	}
}

func TestMerge_SingleFailedChunk(t *testing.T) {
	doc := Merge([]Result{{ChunkIndex: 0, Status: ResultFailed, Err: &ExhaustedError{Candidates: 1}}})
	if !strings.Contains(doc, "could not be reviewed") {
		t.Errorf("got %q, want a failure placeholder", doc)
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil); got != "" {
		t.Errorf("Merge(nil) = %q, want empty", got)
	}
}

func TestStatusOf(t *testing.T) {
	ok := Result{Status: ResultOk}
	failed := Result{Status: ResultFailed}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		results []Result
		ctxErr  error
		want    RunStatus
	}{
		{"all ok", []Result{ok, ok}, nil, StatusComplete},
		{"one failed", []Result{ok, failed}, nil, StatusPartialFailure},
		{"all failed", []Result{failed}, nil, StatusPartialFailure},
		{"no results", nil, nil, StatusNothingToReview},
		{"cancelled with results", []Result{ok}, cancelled.Err(), StatusAborted},
	}
	for _, tt := range tests {
		if got := StatusOf(tt.results, tt.ctxErr); got != tt.want {
			t.Errorf("%s: StatusOf = %s, want %s", tt.name, got, tt.want)
		}
	}
}
