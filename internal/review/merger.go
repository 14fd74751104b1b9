package review

import (
	"fmt"
	"sort"
	"strings"
)

// Merge assembles per-chunk results into one markdown document. Results
// are emitted in chunk-index order regardless of completion order. With
// exactly one chunk the body is returned unchanged; with several, each is
// wrapped in a "Part i of N" section naming the files it covers. A failed
// chunk contributes a visible placeholder instead of suppressing its
// siblings.
func Merge(results []Result) string {
	if len(results) == 0 {
		return ""
	}

	ordered := make([]Result, len(results))
	copy(ordered, results)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ChunkIndex < ordered[j].ChunkIndex
	})

	if len(ordered) == 1 {
		r := ordered[0]
		if r.Status == ResultOk {
			return r.Body
		}
		return failurePlaceholder(r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "_This change set was reviewed in %d parts due to its size._\n\n", len(ordered))

	for _, r := range ordered {
		fmt.Fprintf(&b, "## Part %d of %d\n\n", r.ChunkIndex+1, len(ordered))
		if len(r.Files) > 0 {
			fmt.Fprintf(&b, "**Files:** %s\n\n", strings.Join(r.Files, ", "))
		}
		if r.Status == ResultOk {
			b.WriteString(strings.TrimRight(r.Body, "\n"))
		} else {
			b.WriteString(failurePlaceholder(r))
		}
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func failurePlaceholder(r Result) string {
	reason := "review generation failed"
	if r.Err != nil {
		reason = r.Err.Error()
	}
	return fmt.Sprintf("> :warning: This part could not be reviewed: %s", reason)
}

// StatusOf derives the run-level status from per-chunk results. ctxErr is
// the run context's error, if any; a cancelled run reports aborted even
// when some chunks finished.
func StatusOf(results []Result, ctxErr error) RunStatus {
	if ctxErr != nil {
		return StatusAborted
	}
	if len(results) == 0 {
		return StatusNothingToReview
	}
	for _, r := range results {
		if r.Status != ResultOk {
			return StatusPartialFailure
		}
	}
	return StatusComplete
}
