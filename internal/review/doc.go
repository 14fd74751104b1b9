// Package review contains the core pipeline for chunked LLM code review.
//
// Plan (planner.go) partitions per-file diff segments into chunks: small
// change sets go through in one pass, large ones are packed greedily in
// original order under per-chunk character and file caps, and a lone file
// above the per-call ceiling is truncated at a hunk boundary (or rejected,
// by policy). The partition never loses, duplicates, or reorders a file.
//
// Caller (caller.go) drives one request per chunk through the ordered
// provider:model fallback chain: retryable failures back off exponentially
// with jitter up to a cap, fatal failures skip straight to the next
// candidate, and exhaustion surfaces as a per-chunk error only.
//
// Merge (merger.go) reassembles results in chunk-index order into one
// markdown document, substituting visible placeholders for failed chunks.
//
// Engine (engine.go) ties these together and reports a run-level status:
// complete, partial failure, nothing to review, or aborted.
package review
