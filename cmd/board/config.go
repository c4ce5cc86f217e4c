package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show resolved configuration and where each value came from",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	rc := config.Resolve(baseDirArg, verbose)
	w := cmd.OutOrStdout()

	if jsonOutput() {
		return json.NewEncoder(w).Encode(rc)
	}

	fmt.Fprintf(w, "base_dir             %-40s (%s)\n", rc.BaseDir.Value, rc.BaseDir.Source)
	fmt.Fprintf(w, "worktrees_root_name  %-40s (%s)\n", rc.WorktreesRootName.Value, rc.WorktreesRootName.Source)
	fmt.Fprintf(w, "verbose              %-40s (%s)\n", rc.Verbose.Value, rc.Verbose.Source)
	fmt.Fprintf(w, "git_command          %-40s (%s)\n", rc.GitCommand.Value, rc.GitCommand.Source)
	fmt.Fprintf(w, "tmux_command         %-40s (%s)\n", rc.TmuxCommand.Value, rc.TmuxCommand.Source)
	fmt.Fprintf(w, "agent_command        %-40s (%s)\n", rc.AgentCommand.Value, rc.AgentCommand.Source)
	return nil
}
