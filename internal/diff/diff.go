package diff

import (
	"strings"
)

// FileSegment is one file's complete change block within a diff: the file
// header lines plus every hunk. Segments are atomic; they are never split
// across chunks.
type FileSegment struct {
	Path   string
	Header string
	Body   string
	Length int
}

// Text returns the segment as it appeared in the original diff.
func (s FileSegment) Text() string {
	return s.Header + s.Body
}

// Parse splits raw diff text into ordered per-file segments. Each block
// starting at a "diff --git" line becomes one segment; the header is
// everything up to the first hunk, the body is the hunks themselves.
// Empty or whitespace-only input yields no segments and is not an error.
func Parse(raw string) []FileSegment {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var segments []FileSegment
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		text := current.String()
		if strings.TrimSpace(text) != "" {
			segments = append(segments, newSegment(text))
		}
		current.Reset()
	}

	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			flush()
		}
		current.WriteString(line)
		current.WriteString("\n")
	}
	flush()

	return segments
}

func newSegment(text string) FileSegment {
	header, body := splitHeader(text)
	return FileSegment{
		Path:   pathFromHeader(header),
		Header: header,
		Body:   body,
		Length: len(text),
	}
}

// splitHeader separates the file metadata lines from the hunks. The header
// runs up to (not including) the first "@@" line.
func splitHeader(text string) (header, body string) {
	offset := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "@@") {
			return text[:offset], text[offset:]
		}
		offset += len(line) + 1
	}
	return text, ""
}

// pathFromHeader extracts the post-image file path. Prefers the "+++ b/"
// line; falls back to the "diff --git a/x b/y" line for deleted or binary
// files, then to "unknown".
func pathFromHeader(header string) string {
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			return strings.TrimPrefix(line, "+++ b/")
		}
	}
	for _, line := range strings.Split(header, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			parts := strings.Split(line, " ")
			if len(parts) >= 4 {
				return strings.TrimPrefix(parts[3], "b/")
			}
		}
	}
	return "unknown"
}

// TruncateAtHunk cuts text to at most limit characters, breaking at the
// start of the hunk that crosses the limit so no hunk is ever left
// incomplete. If not even the first hunk fits, the cut falls back to the
// last full line under the limit. Returns the (possibly shortened) text and
// whether truncation happened.
func TruncateAtHunk(text string, limit int) (string, bool) {
	if limit <= 0 || len(text) <= limit {
		return text, false
	}

	cut := 0
	offset := 0
	lastLine := 0
	for _, line := range strings.Split(text, "\n") {
		if offset > limit {
			break
		}
		if strings.HasPrefix(line, "@@") && offset > 0 {
			cut = offset
		}
		lastLine = offset
		offset += len(line) + 1
	}

	if cut == 0 {
		cut = lastLine
	}
	if cut == 0 || cut > limit {
		// Degenerate input with a single enormous line.
		cut = limit
		if nl := strings.LastIndexByte(text[:limit], '\n'); nl > 0 {
			cut = nl + 1
		}
	}
	return text[:cut], true
}
