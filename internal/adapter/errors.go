package adapter

import "errors"

// Sentinel errors for the adapter package. Using sentinels instead of
// ad-hoc fmt.Errorf lets pipelines classify failures with errors.Is.
var (
	// ErrGitNotFound is returned when the git binary is not on PATH.
	ErrGitNotFound = errors.New("adapter: git binary not found on PATH")

	// ErrTmuxNotFound is returned when the tmux binary is not on PATH.
	ErrTmuxNotFound = errors.New("adapter: tmux binary not found on PATH")

	// ErrAgentNotFound describes a configured agent binary that is not
	// runnable. No function in this package returns it.
	ErrAgentNotFound = errors.New("adapter: agent binary not found or not runnable")

	// ErrInvalidBranchName is returned by ValidateBranchName when the name
	// fails git's ref-format rules.
	ErrInvalidBranchName = errors.New("adapter: invalid branch name")

	// ErrBranchNotUpToDate is returned by CheckBranchUpToDate when the local
	// base ref has diverged from its remote counterpart.
	ErrBranchNotUpToDate = errors.New("adapter: base branch is not up to date with origin")

	// ErrWorktreePathExists is returned by CreateWorktree when the target
	// path is already occupied.
	ErrWorktreePathExists = errors.New("adapter: worktree path already exists")

	// ErrNotAGitRepo is returned when a path is not a git checkout.
	ErrNotAGitRepo = errors.New("adapter: not a git repository")

	// ErrDetachedHead is returned when a directory's current branch cannot
	// be determined because HEAD is detached.
	ErrDetachedHead = errors.New("adapter: repository is in detached HEAD state")
)
