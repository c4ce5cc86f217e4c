package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/pipeline"
)

var deleteInput pipeline.DeleteInput

var deleteCmd = &cobra.Command{
	Use:   "delete <task-id>",
	Short: "Tear down a task's session/worktree/branch and remove its row",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteInput.KillSession, "kill-session", true, "Kill the bound multiplexer session")
	deleteCmd.Flags().BoolVar(&deleteInput.RemoveWorktree, "remove-worktree", true, "Remove the bound git worktree")
	deleteCmd.Flags().BoolVar(&deleteInput.DeleteBranch, "delete-branch", false, "Delete the task's branch")
	rootCmd.AddCommand(deleteCmd)

	archiveCmd := &cobra.Command{
		Use:   "archive <task-id>",
		Short: "Archive a task, keeping its session/worktree/branch intact",
		Args:  cobra.ExactArgs(1),
		RunE:  runArchive,
	}
	unarchiveCmd := &cobra.Command{
		Use:   "unarchive <task-id>",
		Short: "Restore an archived task to the active board",
		Args:  cobra.ExactArgs(1),
		RunE:  runUnarchive,
	}
	rootCmd.AddCommand(archiveCmd, unarchiveCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	deleteInput.TaskID = args[0]
	task, err := st.GetTask(deleteInput.TaskID)
	if err != nil {
		return err
	}
	repo, err := st.GetRepo(task.RepoID)
	if err != nil {
		repo.Path = ""
	}

	rt := newRuntime(cfg)
	d := &pipeline.Delete{Store: st, Runtime: rt}
	if err := d.Run(deleteInput, task, repo); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", task.Title)
	return nil
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := pipeline.Archive(st, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "archived")
	return nil
}

func runUnarchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := pipeline.Unarchive(st, args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "unarchived")
	return nil
}
