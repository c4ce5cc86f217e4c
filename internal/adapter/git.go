package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Git shells out to the git binary for everything the create/attach/delete
// pipelines need: validity checks, branch resolution, worktree
// materialization and teardown. Every call is bounded by Timeout so a wedged
// subprocess cannot hang the main loop.
type Git struct {
	Timeout time.Duration
}

// NewGit returns a Git adapter with a sane default timeout.
func NewGit() *Git {
	return &Git{Timeout: 15 * time.Second}
}

func (g *Git) run(dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: %v", ErrGitNotFound, err)
		}
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s timed out after %s", strings.Join(args, " "), g.timeout())
		}
		return strings.TrimSpace(string(out)), fmt.Errorf("git %s: %w (%s)", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

func (g *Git) timeout() time.Duration {
	if g.Timeout <= 0 {
		return 15 * time.Second
	}
	return g.Timeout
}

// IsValidRepo reports whether path is a usable git checkout.
func (g *Git) IsValidRepo(path string) bool {
	_, err := g.run(path, "rev-parse", "--git-dir")
	return err == nil
}

// RepoRoot returns the top-level directory of the checkout containing dir.
func (g *Git) RepoRoot(dir string) (string, error) {
	out, err := g.run(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotAGitRepo, dir)
	}
	return out, nil
}

// CurrentBranch returns the checked-out branch name in dir, or
// ErrDetachedHead if HEAD is not attached to a branch.
func (g *Git) CurrentBranch(dir string) (string, error) {
	out, err := g.run(dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	if out == "HEAD" {
		return "", ErrDetachedHead
	}
	return out, nil
}

// DetectDefaultBranch determines a repo's default base ref: the remote
// HEAD symref, then a local main/master, then the first local branch,
// falling back to "main".
func (g *Git) DetectDefaultBranch(repoPath string) string {
	if out, err := g.run(repoPath, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		return strings.TrimPrefix(out, "refs/remotes/origin/")
	}
	for _, candidate := range []string{"main", "master"} {
		if _, err := g.run(repoPath, "show-ref", "--verify", "--quiet", "refs/heads/"+candidate); err == nil {
			return candidate
		}
	}
	if out, err := g.run(repoPath, "branch", "--format=%(refname:short)"); err == nil {
		if lines := strings.Split(out, "\n"); len(lines) > 0 && lines[0] != "" {
			return lines[0]
		}
	}
	return "main"
}

// GetRemoteURL returns the origin remote URL, or "" if none is configured.
func (g *Git) GetRemoteURL(repoPath string) string {
	out, err := g.run(repoPath, "remote", "get-url", "origin")
	if err != nil {
		return ""
	}
	return out
}

// Fetch runs "git fetch origin" in repoPath. Failures here are meant to be
// treated by callers as a warning, not an abort (create pipeline step 5).
func (g *Git) Fetch(repoPath string) error {
	_, err := g.run(repoPath, "fetch", "origin")
	return err
}

// ValidateBranchName checks name against git's ref-format rules without
// needing a git_create_worktree attempt.
func (g *Git) ValidateBranchName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: empty", ErrInvalidBranchName)
	}
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout())
	defer cancel()
	cmd := exec.CommandContext(ctx, "git", "check-ref-format", "--branch", name)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidBranchName, name)
	}
	return nil
}

// BranchExists reports whether name exists as a local or remote-tracking
// branch in repoPath.
func (g *Git) BranchExists(repoPath, name string) bool {
	if _, err := g.run(repoPath, "show-ref", "--verify", "--quiet", "refs/heads/"+name); err == nil {
		return true
	}
	_, err := g.run(repoPath, "show-ref", "--verify", "--quiet", "refs/remotes/origin/"+name)
	return err == nil
}

// CheckBranchUpToDate verifies the local baseRef's commit matches
// origin/baseRef, returning ErrBranchNotUpToDate otherwise. A repo with no
// matching remote ref is treated as up to date (nothing to compare against).
func (g *Git) CheckBranchUpToDate(repoPath, baseRef string) error {
	localSHA, err := g.run(repoPath, "rev-parse", baseRef)
	if err != nil {
		return fmt.Errorf("resolve local %s: %w", baseRef, err)
	}
	remoteSHA, err := g.run(repoPath, "rev-parse", "origin/"+baseRef)
	if err != nil {
		return nil
	}
	if localSHA != remoteSHA {
		return fmt.Errorf("%w: %s is at %s, origin/%s is at %s", ErrBranchNotUpToDate, baseRef, localSHA, baseRef, remoteSHA)
	}
	return nil
}

// CreateWorktree creates a new worktree at wtPath checked out to a new
// branch newBranch based on baseRef. Intermediate directories are created
// first since git worktree add does not do so itself.
func (g *Git) CreateWorktree(repoPath, wtPath, newBranch, baseRef string) error {
	if _, err := os.Stat(wtPath); err == nil {
		return fmt.Errorf("%w: %s", ErrWorktreePathExists, wtPath)
	}
	if err := os.MkdirAll(filepath.Dir(wtPath), 0o755); err != nil {
		return fmt.Errorf("adapter: create worktree parent dir: %w", err)
	}
	_, err := g.run(repoPath, "worktree", "add", "-b", newBranch, wtPath, baseRef)
	if err != nil {
		return fmt.Errorf("adapter: create worktree: %w", err)
	}
	return nil
}

// RemoveWorktree force-removes a worktree. Already-gone is not an error.
func (g *Git) RemoveWorktree(repoPath, wtPath string) error {
	if _, err := os.Stat(wtPath); err != nil {
		return nil
	}
	_, err := g.run(repoPath, "worktree", "remove", "--force", wtPath)
	if err != nil {
		_ = os.RemoveAll(wtPath)
	}
	return nil
}

// DeleteBranch deletes a local branch. Already-gone is not an error.
func (g *Git) DeleteBranch(repoPath, name string) error {
	if !g.BranchExists(repoPath, name) {
		return nil
	}
	_, err := g.run(repoPath, "branch", "-D", name)
	return err
}

// DiffSummary returns a one-line "N files changed, +A, -D" style summary of
// a worktree's uncommitted-plus-committed divergence from baseRef, for the
// background change-summary dispatcher (§5). An empty result means no
// divergence, not an error.
func (g *Git) DiffSummary(worktreePath, baseRef string) (string, error) {
	out, err := g.run(worktreePath, "diff", "--shortstat", baseRef)
	if err != nil {
		return "", fmt.Errorf("adapter: diff summary: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// ListBranches returns local branch names.
func (g *Git) ListBranches(repoPath string) ([]string, error) {
	out, err := g.run(repoPath, "branch", "--format=%(refname:short)")
	if err != nil {
		return nil, err
	}
	return splitNonEmpty(out), nil
}

// ListTags returns tag names.
func (g *Git) ListTags(repoPath string) ([]string, error) {
	out, err := g.run(repoPath, "tag", "-l")
	if err != nil {
		return nil, err
	}
	return splitNonEmpty(out), nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
