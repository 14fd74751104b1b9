// Package github is the external collaborator boundary for pull request
// I/O: it fetches the raw PR diff and posts the single consolidated review
// comment, updating an earlier marker comment in place when one exists.
//
// The review pipeline itself never talks to GitHub; it consumes the diff
// string and produces the comment body.
package github
