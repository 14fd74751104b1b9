package review

import (
	"strings"

	"github.com/loupedev/loupe/internal/config"
	"github.com/loupedev/loupe/internal/diff"
)

// TruncationMarker is appended to a chunk whose payload was cut at the
// per-call ceiling.
const TruncationMarker = "\n[... diff truncated: remaining hunks omitted to fit the review size limit ...]\n"

// NeedsChunking reports whether the diff is large enough to be split.
// Both trigger thresholds must be exceeded: small file counts and short
// diffs are reviewed in a single pass even when the other dimension is
// large.
func NeedsChunking(segments []diff.FileSegment, cfg config.Config) bool {
	return len(segments) > cfg.ChunkTriggerFiles && totalLength(segments) > cfg.ChunkTriggerChars
}

// Plan partitions segments into ordered chunks. Every segment lands in
// exactly one chunk, in original order; a chunk only exceeds MaxChunkChars
// when it holds a single file too large to split further. Identical input
// and config always produce an identical plan.
func Plan(segments []diff.FileSegment, cfg config.Config) ([]Chunk, error) {
	if len(segments) == 0 {
		return nil, nil
	}

	if !NeedsChunking(segments, cfg) {
		chunk, err := seal(Chunk{Index: 0, Segments: segments, TotalChars: totalLength(segments)}, cfg)
		if err != nil {
			return nil, err
		}
		return []Chunk{chunk}, nil
	}

	var chunks []Chunk
	current := Chunk{Index: 0}

	flush := func() error {
		if len(current.Segments) == 0 {
			return nil
		}
		sealed, err := seal(current, cfg)
		if err != nil {
			return err
		}
		chunks = append(chunks, sealed)
		current = Chunk{Index: sealed.Index + 1}
		return nil
	}

	for _, seg := range segments {
		overChars := len(current.Segments) > 0 && current.TotalChars+seg.Length > cfg.MaxChunkChars
		overFiles := len(current.Segments) >= cfg.MaxChunkFiles
		if overChars || overFiles {
			if err := flush(); err != nil {
				return nil, err
			}
		}

		current.Segments = append(current.Segments, seg)
		current.TotalChars += seg.Length

		// An oversized file forms its own single-file chunk.
		if seg.Length > cfg.MaxChunkChars && len(current.Segments) == 1 {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}

	return chunks, nil
}

// seal finalizes a chunk's payload, enforcing the hard per-call ceiling.
func seal(c Chunk, cfg config.Config) (Chunk, error) {
	var b strings.Builder
	for _, seg := range c.Segments {
		b.WriteString(seg.Text())
	}
	c.Text = b.String()

	if len(c.Text) <= cfg.MaxCallChars {
		return c, nil
	}

	if cfg.OversizePolicy == config.OversizeReject {
		path := c.Segments[0].Path
		if len(c.Segments) > 1 {
			path = strings.Join(c.Files(), ", ")
		}
		return Chunk{}, &PlanError{Path: path, Size: len(c.Text), Max: cfg.MaxCallChars}
	}

	cut, truncated := diff.TruncateAtHunk(c.Text, cfg.MaxCallChars)
	if truncated {
		c.Text = cut + TruncationMarker
		c.Truncated = true
	}
	return c, nil
}

func totalLength(segments []diff.FileSegment) int {
	total := 0
	for _, s := range segments {
		total += s.Length
	}
	return total
}
