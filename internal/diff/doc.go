// Package diff parses raw unified diff text into ordered per-file segments.
//
// A segment is one file's complete change block: the "diff --git" header
// lines plus every hunk. Segments are the atomic unit of chunk planning and
// are never split mid-file; [TruncateAtHunk] provides the one sanctioned way
// to shorten an oversized segment, cutting only at hunk boundaries.
package diff
