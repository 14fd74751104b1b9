// Package gitctx collects local diffs from git for the review commands
// that run outside a pull request context.
package gitctx
