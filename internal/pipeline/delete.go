package pipeline

import (
	"fmt"

	"github.com/boshu2/taskboard/internal/adapter"
	"github.com/boshu2/taskboard/internal/store"
	"github.com/boshu2/taskboard/internal/types"
)

// DeleteInput selects which artifacts the delete pipeline tears down before
// removing the task row. Each flag is independent and tolerant of its
// target already being gone.
type DeleteInput struct {
	TaskID         string
	KillSession    bool
	RemoveWorktree bool
	DeleteBranch   bool
}

// Delete runs the delete pipeline (C6). Only the final delete_task step's
// failure is surfaced to the caller; every prior step swallows "already
// absent" conditions.
type Delete struct {
	Store   *store.Store
	Runtime adapter.CreateTaskRuntime
}

// Run tears down task in.TaskID per the requested flags and deletes its row.
func (d *Delete) Run(in DeleteInput, task types.Task, repo types.Repo) error {
	if in.KillSession && task.SessionName != "" {
		_ = d.Runtime.KillSession(task.SessionName)
	}

	if in.RemoveWorktree && task.WorktreePath != "" && d.Runtime.GitIsValidRepo(repo.Path) {
		_ = d.Runtime.GitRemoveWorktree(repo.Path, task.WorktreePath)
	}

	if in.DeleteBranch && task.Branch != "" && d.Runtime.GitIsValidRepo(repo.Path) {
		_ = d.Runtime.GitDeleteBranch(repo.Path, task.Branch)
	}

	if err := d.Store.DeleteTask(task.ID); err != nil {
		return fmt.Errorf("pipeline: delete task: %w", err)
	}
	return nil
}

// Archive flips a task's archived flag without touching its session,
// worktree, or branch (§4.6's soft variant of delete).
func Archive(st *store.Store, taskID string) error {
	if err := st.ArchiveTask(taskID); err != nil {
		return fmt.Errorf("pipeline: archive task: %w", err)
	}
	return nil
}

// Unarchive clears a task's archived flag, restoring it to the active board.
func Unarchive(st *store.Store, taskID string) error {
	if err := st.UnarchiveTask(taskID); err != nil {
		return fmt.Errorf("pipeline: unarchive task: %w", err)
	}
	return nil
}
