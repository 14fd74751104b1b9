package review

import (
	"fmt"
	"strings"
)

// SystemPrompt returns the standing instructions sent with every chunk.
func SystemPrompt() string {
	return strings.TrimSpace(`
You are an experienced software engineer performing a code review on a pull request diff.
Give a short, high-level review in markdown: summarize what the change does, then list
concrete issues (bugs, security problems, risky patterns) ordered by importance, each with
the file and an explanation. Be specific and brief. If the change looks fine, say so in
one or two sentences. Do not restate the diff.
`)
}

// UserPrompt builds the per-chunk prompt. For multi-part reviews the model
// is told it sees only a slice of the change set so it does not guess about
// missing context.
func UserPrompt(c Chunk, totalChunks int) string {
	var b strings.Builder

	if totalChunks > 1 {
		fmt.Fprintf(&b, "This is part %d of %d of a larger change set; only the files below are visible here.\n",
			c.Index+1, totalChunks)
		fmt.Fprintf(&b, "Files in this part: %s\n\n", strings.Join(c.Files(), ", "))
	}
	if c.Truncated {
		b.WriteString("Note: the diff below was truncated to fit the request size limit.\n\n")
	}

	b.WriteString("Review the following diff:\n\n```diff\n")
	b.WriteString(strings.TrimRight(c.Text, "\n"))
	b.WriteString("\n```\n")

	return b.String()
}
