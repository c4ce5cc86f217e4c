package pipeline

import (
	"fmt"

	"github.com/boshu2/taskboard/internal/adapter"
	"github.com/boshu2/taskboard/internal/naming"
	"github.com/boshu2/taskboard/internal/store"
	"github.com/boshu2/taskboard/internal/types"
)

// AttachResult is the outcome of an attach attempt, mirroring the three
// cases a caller (the UI) must branch on.
type AttachResult int

const (
	Attached AttachResult = iota
	WorktreeNotFound
	RepoUnavailable
)

func (r AttachResult) String() string {
	switch r {
	case Attached:
		return "attached"
	case WorktreeNotFound:
		return "worktree_not_found"
	case RepoUnavailable:
		return "repo_unavailable"
	default:
		return "unknown"
	}
}

// Attach runs the attach pipeline (C5): reattach to a task's live session,
// recreate a dead one, or report that its worktree or repo is gone.
type Attach struct {
	Store         *store.Store
	Runtime       adapter.RecoveryRuntime
	AttachCommand func(agentSessionID string) string
}

// Run attempts to bring task up to a live, attached session.
func (a *Attach) Run(task types.Task, repo types.Repo) (AttachResult, error) {
	if !a.Runtime.RepoExists(repo.Path) {
		if err := a.Store.UpdateTaskStatus(task.ID, types.StatusRepoUnavailable); err != nil {
			return RepoUnavailable, fmt.Errorf("pipeline: mark repo unavailable: %w", err)
		}
		return RepoUnavailable, nil
	}

	if task.SessionName != "" && a.Runtime.SessionExists(task.SessionName) {
		if err := a.Runtime.SwitchClient(task.SessionName); err != nil {
			return Attached, fmt.Errorf("pipeline: switch client: %w", err)
		}
		return Attached, nil
	}

	if task.WorktreePath == "" || !a.Runtime.WorktreeExists(task.WorktreePath) {
		return WorktreeNotFound, nil
	}

	sessionName := naming.NextAvailableSessionName(task.SessionName, "", repo.Name, task.Branch, a.Runtime.SessionExists)
	if a.Runtime.SessionExists(sessionName) {
		return WorktreeNotFound, ErrSessionNameExhausted
	}

	command := ""
	if a.AttachCommand != nil {
		command = a.AttachCommand(task.AgentSessionID)
	}
	if err := a.Runtime.CreateSession(sessionName, task.WorktreePath, command); err != nil {
		return WorktreeNotFound, fmt.Errorf("pipeline: create session: %w", err)
	}

	if err := a.Store.UpdateTaskSession(task.ID, sessionName, task.WorktreePath); err != nil {
		return Attached, fmt.Errorf("pipeline: persist task session: %w", err)
	}
	if err := a.Store.UpdateTaskStatus(task.ID, types.StatusIdle); err != nil {
		return Attached, fmt.Errorf("pipeline: persist task status: %w", err)
	}
	if err := a.Runtime.SwitchClient(sessionName); err != nil {
		return Attached, fmt.Errorf("pipeline: switch client: %w", err)
	}

	return Attached, nil
}

// RecreateFromRepoRoot implements the UI's "Recreate from repo root" recovery
// action for a WorktreeNotFound outcome: it clears the stale session name,
// resets status to idle, then retries Run and returns its result. The task's
// worktree path is kept, so the retry reports WorktreeNotFound again while
// that path is still missing on disk.
func (a *Attach) RecreateFromRepoRoot(task types.Task, repo types.Repo) (AttachResult, error) {
	if err := a.Store.UpdateTaskSession(task.ID, "", task.WorktreePath); err != nil {
		return WorktreeNotFound, fmt.Errorf("pipeline: clear stale session: %w", err)
	}
	if err := a.Store.UpdateTaskStatus(task.ID, types.StatusIdle); err != nil {
		return WorktreeNotFound, fmt.Errorf("pipeline: reset status: %w", err)
	}
	task.SessionName = ""
	return a.Run(task, repo)
}

// MarkBroken implements the UI's "Mark broken" recovery action for a
// WorktreeNotFound outcome.
func (a *Attach) MarkBroken(task types.Task) error {
	return a.Store.UpdateTaskStatus(task.ID, types.StatusBroken)
}
