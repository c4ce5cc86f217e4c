// Package pipeline implements the create, attach, delete, and reorder
// operations that compose the store, naming, and runtime adapters into the
// user-facing task lifecycle actions. Every pipeline accepts its runtime
// capability as an interface so tests substitute a recording fake while
// production wires *adapter.Runtime.
package pipeline

import "errors"

var (
	// ErrBranchAndTitleEmpty is returned by Create when both branch and
	// title are empty: there is nothing to derive a branch name from.
	ErrBranchAndTitleEmpty = errors.New("pipeline: branch and title cannot both be empty")

	// ErrRepoSelectorEmpty is returned by Create when repo_selector is
	// blank and use_existing_directory was not requested.
	ErrRepoSelectorEmpty = errors.New("pipeline: repo selector cannot be empty")

	// ErrRepoNotResolved is returned by Create when repo_selector matches no
	// registered repo and is not itself a usable git checkout path.
	ErrRepoNotResolved = errors.New("pipeline: could not resolve repo selector to a known or registerable repository")

	// ErrExistingDirNotRepo is returned by Create when use_existing_directory
	// points at a path that is not a git checkout.
	ErrExistingDirNotRepo = errors.New("pipeline: existing directory is not a git repository")

	// ErrSessionNameExhausted is returned when naming.NextAvailableSessionName
	// could not find a free name within its bounded search.
	ErrSessionNameExhausted = errors.New("pipeline: exhausted session name collision suffixes")

	// ErrWorktreeMissing describes attach's WorktreeNotFound outcome. Attach
	// does not return it; it reports that outcome only through AttachResult.
	ErrWorktreeMissing = errors.New("pipeline: task worktree path is unset or missing on disk")

	// ErrRepoUnavailable describes attach's RepoUnavailable outcome. Attach
	// does not return it; it reports that outcome only through AttachResult.
	ErrRepoUnavailable = errors.New("pipeline: task's repo path does not exist on disk")

	// ErrNoCategories is returned by Create when no category_id was given
	// and the store has no categories to default into.
	ErrNoCategories = errors.New("pipeline: no category available to assign the new task to")
)
