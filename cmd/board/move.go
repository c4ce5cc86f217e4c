package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/pipeline"
)

var moveCmd = &cobra.Command{
	Use:   "move <task-id> <left|right|up|down>",
	Short: "Move a task to an adjacent category or swap it with a neighbor",
	Args:  cobra.ExactArgs(2),
	RunE:  runMove,
}

func init() {
	rootCmd.AddCommand(moveCmd)
}

var moveDirections = map[string]pipeline.Direction{
	"left":  pipeline.MoveLeft,
	"right": pipeline.MoveRight,
	"up":    pipeline.MoveUp,
	"down":  pipeline.MoveDown,
}

func runMove(cmd *cobra.Command, args []string) error {
	dir, ok := moveDirections[args[1]]
	if !ok {
		return fmt.Errorf("unknown move direction %q (want left|right|up|down)", args[1])
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	r := &pipeline.Reorder{Store: st}
	if err := r.Move(args[0], dir); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "moved")
	return nil
}
