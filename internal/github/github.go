package github

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gh "github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// commentMarker identifies the consolidated review comment so repeated
// runs update it in place instead of stacking duplicates.
const commentMarker = "<!-- loupe-review -->"

// commentHeader opens every posted comment.
const commentHeader = "## :mag: Loupe Code Review\n\n"

// MaxCommentChars stays under GitHub's 65,536-char comment limit with
// headroom for the header and truncation notice.
const MaxCommentChars = 60000

// Client wraps the GitHub API operations loupe needs: fetching a PR diff
// and posting one consolidated comment.
type Client struct {
	gh    *gh.Client
	owner string
	repo  string
}

// NewClient creates an authenticated client for owner/repo.
func NewClient(ctx context.Context, token, owner, repo string) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is not set")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	return &Client{gh: gh.NewClient(tc), owner: owner, repo: repo}, nil
}

// newWithClient wires an existing go-github client, for tests.
func newWithClient(c *gh.Client, owner, repo string) *Client {
	return &Client{gh: c, owner: owner, repo: repo}
}

// FetchDiff downloads the raw unified diff for a pull request.
func (c *Client) FetchDiff(ctx context.Context, prNumber int) (string, error) {
	raw, resp, err := c.gh.PullRequests.GetRaw(ctx, c.owner, c.repo, prNumber,
		gh.RawOptions{Type: gh.Diff})
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return "", fmt.Errorf("PR #%d not found in %s/%s", prNumber, c.owner, c.repo)
		}
		return "", fmt.Errorf("fetching PR diff: %w", err)
	}
	return raw, nil
}

// PostComment posts the review document as one consolidated comment,
// updating the previous loupe comment if one exists. Bodies above
// MaxCommentChars are truncated with a visible notice.
func (c *Client) PostComment(ctx context.Context, prNumber int, document string) error {
	body := commentHeader + commentMarker + "\n\n" + document
	body = TruncateComment(body)

	existing, err := c.findMarkerComment(ctx, prNumber)
	if err != nil {
		return err
	}

	if existing != 0 {
		_, _, err = c.gh.Issues.EditComment(ctx, c.owner, c.repo, existing,
			&gh.IssueComment{Body: &body})
		if err != nil {
			return fmt.Errorf("updating review comment: %w", err)
		}
		return nil
	}

	_, _, err = c.gh.Issues.CreateComment(ctx, c.owner, c.repo, prNumber,
		&gh.IssueComment{Body: &body})
	if err != nil {
		return fmt.Errorf("posting review comment: %w", err)
	}
	return nil
}

// findMarkerComment returns the ID of an earlier loupe comment on the PR,
// or 0 if none exists.
func (c *Client) findMarkerComment(ctx context.Context, prNumber int) (int64, error) {
	opts := &gh.IssueListCommentsOptions{ListOptions: gh.ListOptions{PerPage: 100}}
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, prNumber, opts)
		if err != nil {
			return 0, fmt.Errorf("listing PR comments: %w", err)
		}
		for _, comment := range comments {
			if strings.Contains(comment.GetBody(), commentMarker) {
				return comment.GetID(), nil
			}
		}
		if resp.NextPage == 0 {
			return 0, nil
		}
		opts.Page = resp.NextPage
	}
}

// TruncateComment caps body at MaxCommentChars, cutting at a line boundary
// and appending a notice when content was dropped.
func TruncateComment(body string) string {
	if len(body) <= MaxCommentChars {
		return body
	}
	notice := "\n\n_...comment truncated: review exceeded GitHub's size limit._"
	cut := MaxCommentChars - len(notice)
	if nl := strings.LastIndexByte(body[:cut], '\n'); nl > 0 {
		cut = nl
	}
	return body[:cut] + notice
}

// PRNumberFromRef extracts the pull request number from a GitHub Actions
// ref such as "refs/pull/123/merge" or "refs/pull/123/head".
func PRNumberFromRef(ref string) (int, error) {
	parts := strings.Split(ref, "/")
	if len(parts) >= 3 && parts[0] == "refs" && parts[1] == "pull" {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid PR number in ref %q", ref)
		}
		return n, nil
	}
	return 0, fmt.Errorf("cannot determine PR number from ref %q (want refs/pull/<N>/merge or /head)", ref)
}

// SplitRepo parses an "owner/repo" string as provided by
// GITHUB_REPOSITORY.
func SplitRepo(full string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(full, "/")
	if !ok || owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository %q (want owner/repo)", full)
	}
	return owner, repo, nil
}
