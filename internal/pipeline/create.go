package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/boshu2/taskboard/internal/adapter"
	"github.com/boshu2/taskboard/internal/naming"
	"github.com/boshu2/taskboard/internal/resolver"
	"github.com/boshu2/taskboard/internal/store"
	"github.com/boshu2/taskboard/internal/types"
)

// CreateInput is the user-facing request to materialize a new task.
type CreateInput struct {
	RepoSelector         string
	Branch               string
	Title                string
	BaseRef              string
	EnsureBaseUpToDate   bool
	UseExistingDirectory bool
	ExistingDir          string
	CategoryID           string
}

// CreateResult is what the create pipeline hands back on success.
type CreateResult struct {
	Task         types.Task
	FetchWarning string
}

// Create runs the full create pipeline (C4): resolve repo, derive branch,
// materialize a worktree, open a session, and persist the task, rolling back
// everything it built if any step from worktree creation onward fails.
type Create struct {
	Store         *store.Store
	Runtime       adapter.CreateTaskRuntime
	WorktreesRoot func(repoPath string) string
	AttachCommand func(agentSessionID string) string
}

// Run executes the pipeline for in, returning the persisted task or a
// rollback-safe error.
func (c *Create) Run(in CreateInput) (CreateResult, error) {
	repo, branch, existingDirPath, err := c.resolveRepoAndBranch(in)
	if err != nil {
		return CreateResult{}, err
	}

	title := strings.TrimSpace(in.Title)
	if branch == "" {
		if title == "" {
			return CreateResult{}, ErrBranchAndTitleEmpty
		}
		branch = naming.GenerateBranchSlug()
	}

	if err := c.Runtime.GitValidateBranch(branch); err != nil {
		return CreateResult{}, err
	}

	baseRef := strings.TrimSpace(in.BaseRef)
	if baseRef == "" {
		baseRef = c.Runtime.GitDetectDefaultBranch(repo.Path)
	}

	var fetchWarning string
	if err := c.Runtime.GitFetch(repo.Path); err != nil {
		fetchWarning = err.Error()
	}

	if in.EnsureBaseUpToDate {
		if err := c.Runtime.GitCheckBranchUpToDate(repo.Path, baseRef); err != nil {
			return CreateResult{}, err
		}
	}

	var undo []func()
	rollback := func() {
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}

	wtPath := existingDirPath
	if !in.UseExistingDirectory {
		wtPath = naming.DeriveWorktreePath(c.WorktreesRoot(repo.Path), repo.Path, branch)
		if err := c.Runtime.GitCreateWorktree(repo.Path, wtPath, branch, baseRef); err != nil {
			return CreateResult{}, fmt.Errorf("pipeline: create worktree: %w", err)
		}
		undo = append(undo, func() { _ = c.Runtime.GitRemoveWorktree(repo.Path, wtPath) })
	}

	sessionName := naming.NextAvailableSessionName("", "", repo.Name, branch, c.Runtime.SessionExists)
	if c.Runtime.SessionExists(sessionName) {
		rollback()
		return CreateResult{}, ErrSessionNameExhausted
	}

	command := ""
	if c.AttachCommand != nil {
		command = c.AttachCommand("")
	}
	if err := c.Runtime.CreateSession(sessionName, wtPath, command); err != nil {
		rollback()
		return CreateResult{}, fmt.Errorf("pipeline: create session: %w", err)
	}
	undo = append(undo, func() { _ = c.Runtime.KillSession(sessionName) })

	categoryID := strings.TrimSpace(in.CategoryID)
	if categoryID == "" {
		categoryID, err = c.defaultCategoryID()
		if err != nil {
			rollback()
			return CreateResult{}, err
		}
	}

	task, err := c.Store.AddTask(repo.ID, branch, title, categoryID)
	if err != nil {
		rollback()
		return CreateResult{}, fmt.Errorf("pipeline: persist task: %w", err)
	}
	undo = append(undo, func() { _ = c.Store.DeleteTask(task.ID) })

	if err := c.Store.UpdateTaskSession(task.ID, sessionName, wtPath); err != nil {
		rollback()
		return CreateResult{}, fmt.Errorf("pipeline: persist task session: %w", err)
	}
	if err := c.Store.UpdateTaskStatus(task.ID, types.StatusIdle); err != nil {
		rollback()
		return CreateResult{}, fmt.Errorf("pipeline: persist task status: %w", err)
	}

	task, err = c.Store.GetTask(task.ID)
	if err != nil {
		rollback()
		return CreateResult{}, fmt.Errorf("pipeline: reload task: %w", err)
	}

	_ = c.Store.IncrementCommandUsage(resolver.RepoSelectionCommandID(repo.ID))

	return CreateResult{Task: task, FetchWarning: fetchWarning}, nil
}

// resolveRepoAndBranch implements C4 step 1. It returns the resolved repo,
// the branch to use (empty when the caller must still derive one from
// title), and, when use_existing_directory was requested, the canonical
// existing directory path to use as the task's worktree path verbatim.
func (c *Create) resolveRepoAndBranch(in CreateInput) (types.Repo, string, string, error) {
	if in.UseExistingDirectory {
		return c.resolveFromExistingDir(in.ExistingDir)
	}

	selector := strings.TrimSpace(in.RepoSelector)
	if selector == "" {
		return types.Repo{}, "", "", ErrRepoSelectorEmpty
	}
	repo, err := c.resolveBySelector(selector)
	if err != nil {
		return types.Repo{}, "", "", err
	}
	return repo, strings.TrimSpace(in.Branch), "", nil
}

func (c *Create) resolveFromExistingDir(existingDir string) (types.Repo, string, string, error) {
	abs, err := filepath.Abs(existingDir)
	if err != nil {
		return types.Repo{}, "", "", fmt.Errorf("pipeline: resolve existing directory: %w", err)
	}
	if !c.Runtime.GitIsValidRepo(abs) {
		return types.Repo{}, "", "", fmt.Errorf("%w: %s", ErrExistingDirNotRepo, abs)
	}
	root, err := c.Runtime.GitRepoRoot(abs)
	if err != nil {
		return types.Repo{}, "", "", err
	}
	branch, err := c.Runtime.GitCurrentBranch(abs)
	if err != nil {
		return types.Repo{}, "", "", err
	}
	repo, err := c.findOrRegisterRepo(root)
	if err != nil {
		return types.Repo{}, "", "", err
	}
	return repo, branch, abs, nil
}

func (c *Create) resolveBySelector(selector string) (types.Repo, error) {
	repos, err := c.Store.ListRepos()
	if err != nil {
		return types.Repo{}, fmt.Errorf("pipeline: list repos: %w", err)
	}
	for _, r := range repos {
		if r.ID == selector || r.Name == selector || r.Path == selector {
			return r, nil
		}
	}

	abs, err := filepath.Abs(selector)
	if err != nil || !c.Runtime.GitIsValidRepo(abs) {
		return types.Repo{}, fmt.Errorf("%w: %q", ErrRepoNotResolved, selector)
	}
	return c.findOrRegisterRepo(abs)
}

// defaultCategoryID returns the lowest-position category, used when the
// caller does not specify one: new tasks land in the leftmost column.
func (c *Create) defaultCategoryID() (string, error) {
	categories, err := c.Store.ListCategories()
	if err != nil {
		return "", fmt.Errorf("pipeline: list categories: %w", err)
	}
	if len(categories) == 0 {
		return "", ErrNoCategories
	}
	best := categories[0]
	for _, cat := range categories[1:] {
		if cat.Position < best.Position {
			best = cat
		}
	}
	return best.ID, nil
}

// findOrRegisterRepo registers path as a new repo, or returns the already
// registered repo at that canonical path.
func (c *Create) findOrRegisterRepo(path string) (types.Repo, error) {
	repo, err := c.Store.AddRepo(path)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, store.ErrRepoExists) {
		return types.Repo{}, fmt.Errorf("pipeline: register repo: %w", err)
	}

	abs := path
	if resolved, rerr := filepath.Abs(path); rerr == nil {
		abs = resolved
	}
	repos, lerr := c.Store.ListRepos()
	if lerr != nil {
		return types.Repo{}, fmt.Errorf("pipeline: list repos: %w", lerr)
	}
	for _, r := range repos {
		if r.Path == abs {
			return r, nil
		}
	}
	return types.Repo{}, fmt.Errorf("pipeline: repo exists but could not be relocated: %w", err)
}
