package review

import (
	"fmt"
	"time"

	"github.com/loupedev/loupe/internal/config"
	"github.com/loupedev/loupe/internal/diff"
)

// Chunk is a group of file segments sent together in one model request.
type Chunk struct {
	Index      int
	Segments   []diff.FileSegment
	TotalChars int

	// Text is the payload actually sent. It equals the concatenated
	// segment text unless the chunk was truncated at the per-call
	// ceiling, in which case Truncated is set and a marker is appended.
	Text      string
	Truncated bool
}

// Files lists the paths covered by the chunk, in segment order.
func (c Chunk) Files() []string {
	paths := make([]string, len(c.Segments))
	for i, s := range c.Segments {
		paths[i] = s.Path
	}
	return paths
}

// AttemptOutcome classifies one call attempt.
type AttemptOutcome string

const (
	OutcomeSuccess   AttemptOutcome = "success"
	OutcomeRetryable AttemptOutcome = "retryable"
	OutcomeFatal     AttemptOutcome = "fatal"
)

// CallAttempt records one attempt against one fallback candidate.
type CallAttempt struct {
	Attempt   int
	Candidate config.ModelCandidate
	Outcome   AttemptOutcome
	Delay     time.Duration
	Err       error
}

// ResultStatus marks a per-chunk outcome.
type ResultStatus string

const (
	ResultOk     ResultStatus = "ok"
	ResultFailed ResultStatus = "failed"
)

// Result is the outcome of reviewing one chunk.
type Result struct {
	ChunkIndex int
	Files      []string
	Body       string
	Status     ResultStatus
	Attempts   []CallAttempt
	Err        error
}

// RunStatus is the run-level outcome reported to the caller.
type RunStatus string

const (
	StatusComplete        RunStatus = "complete"
	StatusPartialFailure  RunStatus = "partial_failure"
	StatusNothingToReview RunStatus = "nothing_to_review"
	StatusAborted         RunStatus = "aborted"
)

// Outcome is what a run returns: the merged document plus enough metadata
// for the caller to decide what to post and how to exit.
type Outcome struct {
	RunID    string
	Status   RunStatus
	Reason   string
	Document string
	Results  []Result
	Chunks   int
	Elapsed  time.Duration
}

// PlanError reports a diff that cannot be planned under the current
// config, e.g. an oversized file under the reject policy. It aborts the
// run before any network call.
type PlanError struct {
	Path string
	Size int
	Max  int
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("diff for %s is %d chars, above the %d per-call ceiling (oversizePolicy=reject)",
		e.Path, e.Size, e.Max)
}

// ExhaustedError means every candidate in the fallback chain failed for
// one chunk. It is absorbed into that chunk's Result and never aborts
// sibling chunks.
type ExhaustedError struct {
	Candidates int
	LastErr    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d model candidates failed: %v", e.Candidates, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }
