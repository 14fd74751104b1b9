package gitctx

import "testing"

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		url     string
		owner   string
		repo    string
		wantErr bool
	}{
		{"https://github.com/loupedev/loupe.git", "loupedev", "loupe", false},
		{"https://github.com/loupedev/loupe", "loupedev", "loupe", false},
		{"git@github.com:loupedev/loupe.git", "loupedev", "loupe", false},
		{"ssh://user@host", "", "", true},
		{"not a url", "", "", true},
		{"", "", "", true},
	}
	for _, tt := range tests {
		owner, repo, err := ParseRemoteURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseRemoteURL(%q) = %q/%q, want error", tt.url, owner, repo)
			}
			continue
		}
		if err != nil || owner != tt.owner || repo != tt.repo {
			t.Errorf("ParseRemoteURL(%q) = %q, %q, %v; want %q/%q",
				tt.url, owner, repo, err, tt.owner, tt.repo)
		}
	}
}
