package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/adapter"
	"github.com/boshu2/taskboard/internal/store"
	"github.com/boshu2/taskboard/internal/types"
	"github.com/boshu2/taskboard/internal/worker"
)

var (
	listArchived bool
	listChanges  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks grouped by category",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listArchived, "archived", false, "List archived tasks instead of active ones")
	listCmd.Flags().BoolVar(&listChanges, "changes", false, "Compute each task's diffstat against its repo's base ref")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	var tasks []types.Task
	if listArchived {
		tasks, err = st.ListArchivedTasks()
	} else {
		tasks, err = st.ListTasks()
	}
	if err != nil {
		return err
	}

	categories, err := st.ListCategories()
	if err != nil {
		return err
	}
	categoryName := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryName[c.ID] = c.Name
	}

	var summaries map[string]string
	if listChanges {
		summaries = computeChangeSummaries(st, tasks, newRuntime(cfg))
	}

	if jsonOutput() {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(tasks)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 2, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTITLE\tBRANCH\tSTATUS\tSESSION\tCHANGES")
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CategoryID != tasks[j].CategoryID {
			return categoryName[tasks[i].CategoryID] < categoryName[tasks[j].CategoryID]
		}
		return tasks[i].Position < tasks[j].Position
	})
	for _, t := range tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			categoryName[t.CategoryID], t.Title, t.Branch, t.ObservedStatus, orDash(t.SessionName), summaries[t.ID])
	}
	return w.Flush()
}

// computeChangeSummaries fans each visible task's diffstat computation out
// to internal/worker's Dispatcher so list doesn't serialize N `git diff`
// subprocess calls on the main loop (§5).
func computeChangeSummaries(st *store.Store, tasks []types.Task, rt *adapter.Runtime) map[string]string {
	d := worker.NewDispatcher(4, len(tasks)+1, rt.Git.DiffSummary)
	repos, err := st.ListRepos()
	if err != nil {
		d.Close()
		return nil
	}
	baseRefByRepo := make(map[string]string, len(repos))
	for _, r := range repos {
		baseRefByRepo[r.ID] = firstNonEmpty(r.DefaultBase, "main")
	}

	requested := 0
	for _, t := range tasks {
		if t.WorktreePath == "" {
			continue
		}
		d.Submit(worker.SummaryRequest{TaskID: t.ID, WorktreePath: t.WorktreePath, BaseRef: baseRefByRepo[t.RepoID]})
		requested++
	}

	out := make(map[string]string, requested)
	for i := 0; i < requested; i++ {
		res := <-d.Results()
		if res.Err != nil {
			out[res.TaskID] = "?"
			continue
		}
		out[res.TaskID] = formatDiffstat(res.Summary)
	}
	d.Close()
	return out
}

func formatDiffstat(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "-"
	}
	return raw
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
