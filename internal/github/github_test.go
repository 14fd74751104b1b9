package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	gh "github.com/google/go-github/v68/github"
)

func TestPRNumberFromRef(t *testing.T) {
	tests := []struct {
		ref     string
		want    int
		wantErr bool
	}{
		{"refs/pull/123/merge", 123, false},
		{"refs/pull/7/head", 7, false},
		{"refs/heads/main", 0, true},
		{"refs/pull/abc/merge", 0, true},
		{"refs/pull/0/merge", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := PRNumberFromRef(tt.ref)
		if tt.wantErr {
			if err == nil {
				t.Errorf("PRNumberFromRef(%q) succeeded with %d, want error", tt.ref, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("PRNumberFromRef(%q) = %d, %v; want %d", tt.ref, got, err, tt.want)
		}
	}
}

func TestSplitRepo(t *testing.T) {
	owner, repo, err := SplitRepo("loupedev/loupe")
	if err != nil || owner != "loupedev" || repo != "loupe" {
		t.Errorf("SplitRepo = %q, %q, %v", owner, repo, err)
	}
	for _, bad := range []string{"", "noslash", "/repo", "owner/"} {
		if _, _, err := SplitRepo(bad); err == nil {
			t.Errorf("SplitRepo(%q) should fail", bad)
		}
	}
}

func TestTruncateComment(t *testing.T) {
	short := "a short comment"
	if got := TruncateComment(short); got != short {
		t.Errorf("short comment altered: %q", got)
	}

	long := strings.Repeat("review line\n", MaxCommentChars/10)
	got := TruncateComment(long)
	if len(got) > MaxCommentChars {
		t.Errorf("truncated comment is %d chars, above cap %d", len(got), MaxCommentChars)
	}
	if !strings.Contains(got, "comment truncated") {
		t.Error("missing truncation notice")
	}
	// Cut lands on a line boundary, right before the notice.
	body := got[:strings.Index(got, "\n\n_...")]
	if !strings.HasSuffix(body, "review line") {
		t.Error("cut fell mid-line")
	}
}

// testClient points a go-github client at a local test server.
func testClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	ghc := gh.NewClient(nil)
	base, _ := url.Parse(server.URL + "/")
	ghc.BaseURL = base
	return newWithClient(ghc, "octo", "demo")
}

func TestFetchDiff(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/demo/pulls/42", func(w http.ResponseWriter, r *http.Request) {
		if accept := r.Header.Get("Accept"); !strings.Contains(accept, "diff") {
			t.Errorf("Accept = %q, want a diff media type", accept)
		}
		fmt.Fprint(w, "diff --git a/x.go b/x.go\n")
	})

	c := testClient(t, mux)
	diff, err := c.FetchDiff(context.Background(), 42)
	if err != nil {
		t.Fatalf("FetchDiff: %v", err)
	}
	if !strings.HasPrefix(diff, "diff --git") {
		t.Errorf("diff = %q", diff)
	}
}

func TestFetchDiff_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/demo/pulls/999", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	c := testClient(t, mux)
	_, err := c.FetchDiff(context.Background(), 999)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("got %v, want a not-found error", err)
	}
}

func TestPostComment_CreatesWhenNoMarker(t *testing.T) {
	var created gh.IssueComment
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/demo/issues/5/comments", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `[{"id": 1, "body": "unrelated comment"}]`)
		case http.MethodPost:
			if err := json.NewDecoder(r.Body).Decode(&created); err != nil {
				t.Fatal(err)
			}
			fmt.Fprint(w, `{"id": 2}`)
		}
	})

	c := testClient(t, mux)
	if err := c.PostComment(context.Background(), 5, "the review"); err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	body := created.GetBody()
	if !strings.Contains(body, commentMarker) {
		t.Error("posted comment is missing the marker")
	}
	if !strings.Contains(body, "the review") {
		t.Error("posted comment is missing the document")
	}
}

func TestPostComment_UpdatesExistingMarker(t *testing.T) {
	edited := false
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/demo/issues/5/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			t.Error("should edit the existing comment, not create a new one")
		}
		fmt.Fprintf(w, `[{"id": 11, "body": "old %s body"}]`, commentMarker)
	})
	mux.HandleFunc("/repos/octo/demo/issues/comments/11", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s, want PATCH", r.Method)
		}
		edited = true
		fmt.Fprint(w, `{"id": 11}`)
	})

	c := testClient(t, mux)
	if err := c.PostComment(context.Background(), 5, "fresh review"); err != nil {
		t.Fatalf("PostComment: %v", err)
	}
	if !edited {
		t.Error("existing marker comment was not updated")
	}
}
