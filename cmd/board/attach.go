package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/pipeline"
)

var (
	attachRecreate   bool
	attachMarkBroken bool
)

var attachCmd = &cobra.Command{
	Use:   "attach <task-id>",
	Short: "Attach to a task's session, recreating it if necessary",
	Args:  cobra.ExactArgs(1),
	RunE:  runAttach,
}

func init() {
	attachCmd.Flags().BoolVar(&attachRecreate, "recreate", false, "On a missing worktree, clear the stale session, reset status to idle, and retry attach")
	attachCmd.Flags().BoolVar(&attachMarkBroken, "mark-broken", false, "On a missing worktree, mark the task broken instead of recreating it")
	rootCmd.AddCommand(attachCmd)
}

func runAttach(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	task, err := st.GetTask(args[0])
	if err != nil {
		return err
	}
	repo, err := st.GetRepo(task.RepoID)
	if err != nil {
		return err
	}

	rt := newRuntime(cfg)
	a := &pipeline.Attach{Store: st, Runtime: rt, AttachCommand: rt.AgentAttachCommand}
	result, err := a.Run(task, repo)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch result {
	case pipeline.Attached:
		fmt.Fprintf(w, "attached to %s\n", task.Title)
		return nil
	case pipeline.RepoUnavailable:
		fmt.Fprintf(w, "repo unavailable for %s\n", task.Title)
		return nil
	case pipeline.WorktreeNotFound:
		switch {
		case attachRecreate:
			result, err = a.RecreateFromRepoRoot(task, repo)
			if err != nil {
				return err
			}
			if result == pipeline.Attached {
				fmt.Fprintf(w, "recreated and attached to %s\n", task.Title)
			} else {
				fmt.Fprintf(w, "cleared session for %s; retry result: %s\n", task.Title, result)
			}
		case attachMarkBroken:
			if err := a.MarkBroken(task); err != nil {
				return err
			}
			fmt.Fprintf(w, "marked %s broken\n", task.Title)
		default:
			fmt.Fprintf(w, "worktree missing for %s; rerun with --recreate or --mark-broken\n", task.Title)
		}
	}
	return nil
}
