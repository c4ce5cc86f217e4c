package store

import "errors"

var (
	// ErrRepoExists is returned by AddRepo when a repo at the same
	// canonical path is already registered.
	ErrRepoExists = errors.New("store: repo already registered at this path")

	// ErrRepoNotFound is returned when a repo id does not resolve to a row.
	ErrRepoNotFound = errors.New("store: repo not found")

	// ErrRepoInUse is returned when deleting a repo still referenced by a task.
	ErrRepoInUse = errors.New("store: repo is referenced by at least one task")

	// ErrCategoryExists is returned when a category name collides with an
	// existing one.
	ErrCategoryExists = errors.New("store: category name already exists")

	// ErrCategoryNotFound is returned when a category id does not resolve.
	ErrCategoryNotFound = errors.New("store: category not found")

	// ErrCategoryNotEmpty is returned when deleting a category that still
	// has tasks assigned to it.
	ErrCategoryNotEmpty = errors.New("store: category still has tasks assigned")

	// ErrTaskExists is returned when a task's (repo_id, branch) pair
	// collides with an existing task.
	ErrTaskExists = errors.New("store: task already exists for this repo and branch")

	// ErrTaskNotFound is returned when a task id does not resolve to a row.
	ErrTaskNotFound = errors.New("store: task not found")

	// ErrBranchEmpty is returned by AddTask when branch is blank.
	ErrBranchEmpty = errors.New("store: branch cannot be empty")
)
