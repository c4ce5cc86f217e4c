// Package naming implements the pure, deterministic derivation rules for
// multiplexer session names and worktree filesystem paths. Nothing here
// writes to the filesystem or shells out: NextAvailableSessionName takes a
// caller-supplied existence check, and DeriveWorktreePath only stats
// candidate paths on disk.
package naming

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxCollisionSuffix bounds the search for a free session name or worktree
// path. 9999 matches the ceiling the naming contract guarantees.
const maxCollisionSuffix = 9999

// SanitizeSessionName composes a multiplexer session name from an optional
// project slug, a repo name, and a branch name. Each segment is lower-cased,
// ASCII-alnum-preserving; any run of other characters collapses to a single
// "-"; leading/trailing "-" are trimmed. An empty segment falls back to its
// placeholder ("repo" / "branch") so the composed name is never degenerate.
func SanitizeSessionName(project, repo, branch string) string {
	repoSlug := slugify(repo, "repo")
	branchSlug := slugify(branch, "branch")

	if projectSlug := slugify(project, ""); projectSlug != "" {
		return fmt.Sprintf("%s-%s-%s", projectSlug, repoSlug, branchSlug)
	}
	return fmt.Sprintf("%s-%s", repoSlug, branchSlug)
}

// NextAvailableSessionName returns a free session name. If existing is
// non-empty and exists(existing) is false, existing is returned unchanged
// (reattaching to a task's own prior name takes priority over renaming it).
// Otherwise it sanitizes project/repo/branch into a base name and appends
// "-2", "-3", ... up to maxCollisionSuffix until exists reports false. If the
// ceiling is reached it returns the bare base name; callers must treat that
// as a degenerate result and surface an error rather than create a session.
func NextAvailableSessionName(existing, project, repo, branch string, exists func(name string) bool) string {
	if existing != "" && !exists(existing) {
		return existing
	}

	base := SanitizeSessionName(project, repo, branch)
	if !exists(base) {
		return base
	}

	for n := 2; n <= maxCollisionSuffix; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		if !exists(candidate) {
			return candidate
		}
	}
	return base
}

// DeriveWorktreePath computes the filesystem path a newly materialized
// worktree should occupy: root/repo-slug/branch-slug, with a "-2", "-3", ...
// suffix appended to the branch segment until the candidate does not already
// exist on disk. Two distinct repos sharing a branch name never collide,
// because the repo slug partitions the namespace.
func DeriveWorktreePath(root, repoPath, branch string) string {
	repoName := filepath.Base(repoPath)
	repoSlug := slugify(repoName, "repo")
	branchSlug := slugify(branch, "branch")

	repoDir := filepath.Join(root, repoSlug)
	candidate := filepath.Join(repoDir, branchSlug)
	if !pathExists(candidate) {
		return candidate
	}

	for n := 2; n <= maxCollisionSuffix; n++ {
		withSuffix := filepath.Join(repoDir, fmt.Sprintf("%s-%d", branchSlug, n))
		if !pathExists(withSuffix) {
			return withSuffix
		}
	}
	return candidate
}

var branchAdjectives = []string{
	"amber", "brisk", "calm", "daring", "eager", "frost", "golden", "honest", "ivory", "jolly",
	"kind", "lunar", "mellow", "nimble", "opal", "proud", "quiet", "rapid", "solar", "tidy",
	"urban", "vivid", "wise", "young", "zesty",
}

var branchNouns = []string{
	"badger", "beacon", "cedar", "drift", "ember", "falcon", "garden", "harbor", "island",
	"jungle", "kernel", "lagoon", "meadow", "nebula", "otter", "prairie", "quartz", "rocket",
	"summit", "thunder", "uplink", "voyage", "willow", "yonder", "zephyr",
}

// GenerateBranchSlug produces a human-readable "feature/<adjective>-<noun>-NNN"
// branch name for the case where the create pipeline has a title but no
// branch input. The NNN suffix is a zero-padded 3-digit number so the result
// sorts and displays consistently.
func GenerateBranchSlug() string {
	var buf [4]byte
	_, _ = rand.Read(buf[:])
	adjective := branchAdjectives[int(buf[0])%len(branchAdjectives)]
	noun := branchNouns[int(buf[1])%len(branchNouns)]
	suffix := binary.BigEndian.Uint16(buf[2:4]) % 1000
	return fmt.Sprintf("feature/%s-%s-%03d", adjective, noun, suffix)
}

func slugify(input, fallback string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r - 'A' + 'a')
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return fallback
	}
	return slug
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
