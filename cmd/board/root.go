package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/adapter"
	"github.com/boshu2/taskboard/internal/config"
	"github.com/boshu2/taskboard/internal/store"
)

var (
	verbose    bool
	output     string
	cfgFile    string
	baseDirArg string
)

var rootCmd = &cobra.Command{
	Use:          "board",
	Short:        "Terminal board for AI-coding task sessions",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Status patterns file override")
	rootCmd.PersistentFlags().StringVar(&baseDirArg, "base-dir", "", "Data directory (default: ~/.local/share/taskboard)")
}

// VerbosePrintf prints only when --verbose was passed.
func VerbosePrintf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

// loadConfig resolves configuration per internal/config's precedence chain,
// applying any flag overrides this process was invoked with.
func loadConfig() (*config.Config, error) {
	var overrides *config.Config
	if baseDirArg != "" || verbose || cfgFile != "" {
		overrides = &config.Config{BaseDir: baseDirArg, Verbose: verbose, StatusPatternsFile: cfgFile}
	}
	return config.Load(overrides)
}

// openStore opens the sqlite file at cfg.BaseDir/board.db, creating the data
// directory if needed.
func openStore(cfg *config.Config) (*store.Store, error) {
	path := filepath.Join(cfg.BaseDir, "board.db")
	return store.Open(path)
}

// newRuntime builds the production adapter.Runtime from resolved config.
func newRuntime(cfg *config.Config) *adapter.Runtime {
	rt := adapter.NewRuntime(cfg.Commands.Agent, cfg.Commands.AgentServerURL)
	rt.Patterns = cfg.LoadStatusPatterns()
	if cfg.Poll.PaneCaptureLines > 0 {
		rt.PaneCaptureLines = cfg.Poll.PaneCaptureLines
	}
	return rt
}

// newLogger builds the structured, colorized logger the poller and
// reconciler use (AMBIENT STACK: background components log via log/slog
// with a tint handler; the CLI surface itself sticks to fmt + VerbosePrintf).
func newLogger(w *os.File) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(w, &tint.Options{Level: level}))
}

func jsonOutput() bool {
	return strings.EqualFold(output, "json")
}
