package naming

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeSessionName(t *testing.T) {
	cases := []struct {
		name    string
		project string
		repo    string
		branch  string
		want    string
	}{
		{"no project", "", "My Repo", "feature/Add API", "my-repo-feature-add-api"},
		{"with project", "Acme", "my.repo", "feat/x", "acme-my-repo-feat-x"},
		{"empty segments fall back", "", "", "", "repo-branch"},
		{"collapses runs", "", "a___b", "c---d", "a-b-c-d"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SanitizeSessionName(tc.project, tc.repo, tc.branch)
			if got != tc.want {
				t.Fatalf("SanitizeSessionName(%q, %q, %q) = %q, want %q", tc.project, tc.repo, tc.branch, got, tc.want)
			}
		})
	}
}

func TestNextAvailableSessionName_PrefersExisting(t *testing.T) {
	exists := func(string) bool { return false }
	got := NextAvailableSessionName("my-old-name", "", "repo", "branch", exists)
	if got != "my-old-name" {
		t.Fatalf("expected existing name to be reused, got %q", got)
	}
}

func TestNextAvailableSessionName_FallsBackWhenExistingTaken(t *testing.T) {
	taken := map[string]bool{"my-old-name": true, "repo-branch": true}
	exists := func(name string) bool { return taken[name] }
	got := NextAvailableSessionName("my-old-name", "", "repo", "branch", exists)
	if got != "repo-branch-2" {
		t.Fatalf("expected first free collision suffix, got %q", got)
	}
}

func TestNextAvailableSessionName_WalksCollisionSuffixes(t *testing.T) {
	taken := map[string]bool{"repo-branch": true, "repo-branch-2": true, "repo-branch-3": true}
	exists := func(name string) bool { return taken[name] }
	got := NextAvailableSessionName("", "", "repo", "branch", exists)
	if got != "repo-branch-4" {
		t.Fatalf("expected repo-branch-4, got %q", got)
	}
}

func TestNextAvailableSessionName_ReturnsBaseAtCeiling(t *testing.T) {
	exists := func(name string) bool { return true }
	got := NextAvailableSessionName("", "", "repo", "branch", exists)
	if got != "repo-branch" {
		t.Fatalf("expected degenerate base name at ceiling, got %q", got)
	}
}

func TestDeriveWorktreePath_SlugAndCollision(t *testing.T) {
	base := t.TempDir()
	repoPath := filepath.Join(base, "my.repo name")
	if err := os.MkdirAll(repoPath, 0o755); err != nil {
		t.Fatalf("mkdir repo path: %v", err)
	}

	p1 := DeriveWorktreePath(base, repoPath, "feature/add api")
	if filepath.Base(filepath.Dir(p1)) != "my-repo-name" || filepath.Base(p1) != "feature-add-api" {
		t.Fatalf("unexpected first candidate: %q", p1)
	}

	if err := os.MkdirAll(p1, 0o755); err != nil {
		t.Fatalf("mkdir first worktree: %v", err)
	}

	p2 := DeriveWorktreePath(base, repoPath, "feature/add api")
	if filepath.Base(p2) != "feature-add-api-2" {
		t.Fatalf("expected collision suffix -2, got %q", p2)
	}
}

func TestDeriveWorktreePath_NoCollisionBetweenRepos(t *testing.T) {
	base := t.TempDir()
	repoOne := filepath.Join(base, "repo-one")
	repoTwo := filepath.Join(base, "repo_two")
	if err := os.MkdirAll(repoOne, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(repoTwo, 0o755); err != nil {
		t.Fatal(err)
	}

	pathOne := DeriveWorktreePath(base, repoOne, "feature/shared")
	pathTwo := DeriveWorktreePath(base, repoTwo, "feature/shared")
	if pathOne == pathTwo {
		t.Fatalf("expected distinct paths for distinct repos, got %q for both", pathOne)
	}
}

func TestGenerateBranchSlug_Shape(t *testing.T) {
	branch := GenerateBranchSlug()
	if len(branch) < len("feature/a-b-000") {
		t.Fatalf("branch slug too short: %q", branch)
	}
	if branch[:8] != "feature/" {
		t.Fatalf("expected feature/ prefix, got %q", branch)
	}
}
