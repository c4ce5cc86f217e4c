package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/pipeline"
)

var createInput pipeline.CreateInput

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new task: worktree, session, and board entry",
	Long: `Create materializes a new task (C4): resolves or registers the repo,
derives a branch when only a title is given, creates a git worktree and a
multiplexer session for it, and persists the task row. Any failure from
worktree creation onward is rolled back.`,
	RunE: runCreate,
}

func init() {
	createCmd.Flags().StringVar(&createInput.RepoSelector, "repo", "", "Repo id, name, path, or a new path to register")
	createCmd.Flags().StringVar(&createInput.Branch, "branch", "", "Branch name (a random feature/<adjective>-<noun>-NNN name is generated when empty and --title is set)")
	createCmd.Flags().StringVar(&createInput.Title, "title", "", "Task title (defaults to <repo>:<branch>)")
	createCmd.Flags().StringVar(&createInput.BaseRef, "base-ref", "", "Base ref to branch from (default: repo's detected default branch)")
	createCmd.Flags().BoolVar(&createInput.EnsureBaseUpToDate, "ensure-base-up-to-date", false, "Fail if the local base ref has diverged from origin")
	createCmd.Flags().BoolVar(&createInput.UseExistingDirectory, "use-existing-dir", false, "Bind the task to an already-checked-out directory instead of a new worktree")
	createCmd.Flags().StringVar(&createInput.ExistingDir, "existing-dir", "", "Directory to use with --use-existing-dir")
	createCmd.Flags().StringVar(&createInput.CategoryID, "category", "", "Target category id (default: first category)")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rt := newRuntime(cfg)
	create := &pipeline.Create{
		Store:         st,
		Runtime:       rt,
		WorktreesRoot: cfg.WorktreesRoot,
		AttachCommand: rt.AgentAttachCommand,
	}

	result, err := create.Run(createInput)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if result.FetchWarning != "" {
		fmt.Fprintf(w, "warning: fetch failed: %s\n", result.FetchWarning)
	}
	fmt.Fprintf(w, "created task %s (%s) session=%s worktree=%s\n",
		result.Task.ID, result.Task.Title, result.Task.SessionName, result.Task.WorktreePath)
	return nil
}
