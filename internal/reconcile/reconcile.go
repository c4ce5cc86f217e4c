// Package reconcile implements the one-shot startup sweep (C8) that brings
// every task's stored status back in line with what actually exists on disk
// and in the multiplexer before the UI starts accepting input.
package reconcile

import (
	"fmt"

	"github.com/boshu2/taskboard/internal/adapter"
	"github.com/boshu2/taskboard/internal/store"
	"github.com/boshu2/taskboard/internal/types"
)

// Reconciler runs the startup reconciliation sweep.
type Reconciler struct {
	Store   *store.Store
	Runtime adapter.RecoveryRuntime
}

// Result summarizes one task's reconciliation for logging.
type Result struct {
	TaskID string
	From   types.ObservedStatus
	To     types.ObservedStatus
}

// Run sweeps every non-archived task once, writing back any status that no
// longer matches observed reality. It returns the set of tasks it changed.
func (r *Reconciler) Run() ([]Result, error) {
	tasks, err := r.Store.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("reconcile: list tasks: %w", err)
	}

	repos, err := r.Store.ListRepos()
	if err != nil {
		return nil, fmt.Errorf("reconcile: list repos: %w", err)
	}
	repoPathByID := make(map[string]string, len(repos))
	for _, repo := range repos {
		repoPathByID[repo.ID] = repo.Path
	}

	var changed []Result
	for _, task := range tasks {
		reconciled := r.reconcileOne(task, repoPathByID[task.RepoID])
		if reconciled == task.ObservedStatus {
			continue
		}
		if err := r.Store.UpdateTaskStatus(task.ID, reconciled); err != nil {
			return changed, fmt.Errorf("reconcile: update task %s: %w", task.ID, err)
		}
		changed = append(changed, Result{TaskID: task.ID, From: task.ObservedStatus, To: reconciled})
	}
	return changed, nil
}

// reconcileOne applies the desired/observed/reconciled algorithm to a single
// task. repoPath is empty when the task's repo row is gone entirely, which is
// treated the same as the repo path not existing on disk.
func (r *Reconciler) reconcileOne(task types.Task, repoPath string) types.ObservedStatus {
	repoAvailable := repoPath != "" && r.Runtime.RepoExists(repoPath)
	expectedSessionName := task.SessionName

	if !repoAvailable {
		return types.StatusRepoUnavailable
	}

	if expectedSessionName == "" {
		switch task.ObservedStatus {
		case types.StatusRepoUnavailable, types.StatusDead, types.StatusBroken:
			return types.StatusUnknown
		default:
			return task.ObservedStatus
		}
	}

	if !r.Runtime.SessionExists(expectedSessionName) {
		return types.StatusDead
	}

	status, err := r.Runtime.DetectStatusDetailed(expectedSessionName)
	if err != nil || status == "" {
		return types.StatusUnknown
	}
	return status
}
