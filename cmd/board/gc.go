package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/adapter"
	"github.com/boshu2/taskboard/internal/config"
	"github.com/boshu2/taskboard/internal/store"
)

var (
	gcDryRun bool
)

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove worktree directories and tmux sessions no task references",
	Long: `Garbage-collect orphaned state: worktree directories under a repo's
worktrees root that no task row points at, and tmux sessions that no task
row names. This is distinct from the startup reconciler, which goes the
other direction and repairs task rows to match what's actually on disk.`,
	RunE: runGC,
}

func init() {
	gcCmd.Flags().BoolVar(&gcDryRun, "dry-run", false, "Report what would be removed without removing it")
	rootCmd.AddCommand(gcCmd)
}

func runGC(cmd *cobra.Command, args []string) error {
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
	w := cmd.OutOrStdout()

	removedWT, err := gcOrphanWorktrees(st, cfg, rt.Git, w)
	if err != nil {
		return err
	}
	killedSessions, err := gcOrphanSessions(st, rt.Tmux, w)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "gc complete: worktrees=%d sessions=%d\n", removedWT, killedSessions)
	return nil
}

// gcOrphanWorktrees walks each registered repo's worktrees root and removes
// any branch-slug directory that does not match a live task's WorktreePath.
func gcOrphanWorktrees(st *store.Store, cfg *config.Config, git *adapter.Git, w io.Writer) (int, error) {
	repos, err := st.ListRepos()
	if err != nil {
		return 0, err
	}
	referenced, err := referencedWorktreePaths(st)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, repo := range repos {
		root := cfg.WorktreesRoot(repo.Path)
		entries, err := os.ReadDir(root)
		if err != nil {
			continue
		}
		for _, repoDir := range entries {
			if !repoDir.IsDir() {
				continue
			}
			branchEntries, err := os.ReadDir(filepath.Join(root, repoDir.Name()))
			if err != nil {
				continue
			}
			for _, branchDir := range branchEntries {
				if !branchDir.IsDir() {
					continue
				}
				candidate := filepath.Join(root, repoDir.Name(), branchDir.Name())
				if referenced[candidate] {
					continue
				}
				if gcDryRun {
					fmt.Fprintf(w, "[dry-run] would remove worktree %s\n", candidate)
					continue
				}
				if err := git.RemoveWorktree(repo.Path, candidate); err != nil {
					fmt.Fprintf(w, "warning: failed to remove worktree %s: %v\n", candidate, err)
					continue
				}
				fmt.Fprintf(w, "removed worktree %s\n", candidate)
				removed++
			}
		}
	}
	return removed, nil
}

// gcOrphanSessions kills any alive tmux session that no task row names.
func gcOrphanSessions(st *store.Store, tm *adapter.Tmux, w io.Writer) (int, error) {
	referenced, err := referencedSessionNames(st)
	if err != nil {
		return 0, err
	}
	sessions, err := tm.ListSessions()
	if err != nil {
		return 0, err
	}

	killed := 0
	for _, name := range sessions {
		if referenced[name] {
			continue
		}
		if gcDryRun {
			fmt.Fprintf(w, "[dry-run] would kill session %s\n", name)
			continue
		}
		if err := tm.KillSession(name); err != nil {
			fmt.Fprintf(w, "warning: failed to kill session %s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(w, "killed session %s\n", name)
		killed++
	}
	return killed, nil
}

func referencedWorktreePaths(st *store.Store) (map[string]bool, error) {
	active, err := st.ListTasks()
	if err != nil {
		return nil, err
	}
	archived, err := st.ListArchivedTasks()
	if err != nil {
		return nil, err
	}
	paths := make(map[string]bool, len(active)+len(archived))
	for _, t := range append(active, archived...) {
		if t.WorktreePath != "" {
			paths[t.WorktreePath] = true
		}
	}
	return paths, nil
}

func referencedSessionNames(st *store.Store) (map[string]bool, error) {
	active, err := st.ListTasks()
	if err != nil {
		return nil, err
	}
	archived, err := st.ListArchivedTasks()
	if err != nil {
		return nil, err
	}
	names := make(map[string]bool, len(active)+len(archived))
	for _, t := range append(active, archived...) {
		if t.SessionName != "" {
			names[t.SessionName] = true
		}
	}
	return names, nil
}
