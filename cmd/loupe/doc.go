// Loupe reviews code change sets with LLM providers and posts one
// consolidated markdown comment per pull request.
//
// Large diffs are split into file-bounded chunks, each reviewed in its own
// model call with retry, backoff, and provider fallback; results are merged
// back in order, tolerating partial failures.
//
// Usage:
//
//	loupe review pr 123               # review a PR and post the comment
//	loupe review pr --post=false 123  # print instead of posting
//	loupe review unstaged             # review working tree changes
//	loupe review staged               # review staged changes
//	loupe review range main..HEAD     # review a revision range
//	loupe models list                 # list known provider models
//
// In GitHub Actions the PR number is taken from GITHUB_REF and the
// repository from GITHUB_REPOSITORY.
package main
