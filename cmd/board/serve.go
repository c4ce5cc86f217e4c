package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/poller"
	"github.com/boshu2/taskboard/internal/reconcile"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the startup reconciler once, then the background status poller until interrupted",
	Long: `serve runs the reconciler's one-shot sweep (C8) to bring every task's
stored status back in line with reality, then starts the poller (C9) as a
daemon that keeps it that way. It blocks until interrupted.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if checks := gatherDoctorChecks(cfg); hasRequiredFailure(checks) {
		return fmt.Errorf("environment check failed: %s (run board doctor for details)", computeDoctorResult(checks).Summary)
	}
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	rt := newRuntime(cfg)
	logger := newLogger(os.Stderr)

	reconciler := &reconcile.Reconciler{Store: st, Runtime: rt}
	changed, err := reconciler.Run()
	if err != nil {
		return fmt.Errorf("startup reconcile: %w", err)
	}
	for _, c := range changed {
		logger.Info("reconciled task", "task", c.TaskID, "from", c.From, "to", c.To)
	}
	logger.Info("startup reconcile complete", "changed", len(changed))

	p := &poller.Poller{
		Store:         st,
		Runtime:       rt,
		BaseSeconds:   cfg.Poll.BaseSeconds,
		JitterMillis:  cfg.Poll.JitterMillis,
		RetryInterval: cfg.Poll.RetryInterval,
		Logger:        logger,
	}
	p.Start()
	defer p.Stop()

	logger.Info("poller started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())
	return nil
}
