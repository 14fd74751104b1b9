// Package cli implements the loupe command tree: review (pr, unstaged,
// staged, range), models, config, and version.
package cli
