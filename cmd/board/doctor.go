package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boshu2/taskboard/internal/config"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that git, tmux, and the configured agent binary are usable",
	Long: `Run environment checks the board depends on at startup.

git, tmux, and ps are required: the reconciler and poller fail fast at
boot without them (§7). The agent binary is reported as a warning since a
task can still sit on the board unattached without it.`,
	RunE: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(doctorCmd)
}

type doctorCheck struct {
	Name     string `json:"name"`
	Status   string `json:"status"` // "pass", "warn", "fail"
	Detail   string `json:"detail"`
	Required bool   `json:"required"`
}

type doctorOutput struct {
	Checks  []doctorCheck `json:"checks"`
	Result  string        `json:"result"` // "HEALTHY", "DEGRADED", "UNHEALTHY"
	Summary string        `json:"summary"`
}

func gatherDoctorChecks(cfg *config.Config) []doctorCheck {
	return []doctorCheck{
		checkRequiredBinary("git"),
		checkRequiredBinary("tmux"),
		checkRequiredBinary("ps"),
		checkAgentBinary(cfg.Commands.Agent),
		checkDataDir(cfg),
	}
}

func doctorStatusIcon(status string) string {
	switch status {
	case "pass":
		return "✓"
	case "warn":
		return "!"
	case "fail":
		return "✗"
	}
	return "?"
}

func renderDoctorTable(w io.Writer, output doctorOutput) {
	fmt.Fprintln(w, "board doctor")
	fmt.Fprintln(w, "───────────")

	maxName := 0
	for _, c := range output.Checks {
		if len(c.Name) > maxName {
			maxName = len(c.Name)
		}
	}

	for _, c := range output.Checks {
		padding := strings.Repeat(" ", maxName-len(c.Name))
		fmt.Fprintf(w, "%s %s%s  %s\n", doctorStatusIcon(c.Status), c.Name, padding, c.Detail)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", output.Summary)
}

func hasRequiredFailure(checks []doctorCheck) bool {
	for _, c := range checks {
		if c.Required && c.Status == "fail" {
			return true
		}
	}
	return false
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	output := computeDoctorResult(gatherDoctorChecks(cfg))
	w := cmd.OutOrStdout()

	if doctorJSON {
		data, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal doctor output: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	renderDoctorTable(w, output)

	if hasRequiredFailure(output.Checks) {
		return fmt.Errorf("doctor failed: one or more required checks did not pass")
	}
	return nil
}

func checkRequiredBinary(name string) doctorCheck {
	if path, err := exec.LookPath(name); err == nil {
		return doctorCheck{Name: name, Status: "pass", Detail: path, Required: true}
	}
	return doctorCheck{Name: name, Status: "fail", Detail: fmt.Sprintf("%s not found on PATH", name), Required: true}
}

func checkAgentBinary(name string) doctorCheck {
	if name == "" {
		return doctorCheck{Name: "agent", Status: "warn", Detail: "no agent binary configured", Required: false}
	}
	if path, err := exec.LookPath(name); err == nil {
		return doctorCheck{Name: "agent", Status: "pass", Detail: path, Required: false}
	}
	return doctorCheck{Name: "agent", Status: "warn", Detail: fmt.Sprintf("%s not found on PATH — attach will fail until it is installed", name), Required: false}
}

func checkDataDir(cfg *config.Config) doctorCheck {
	st, err := openStore(cfg)
	if err != nil {
		return doctorCheck{Name: "data directory", Status: "fail", Detail: fmt.Sprintf("cannot open %s: %v", cfg.BaseDir, err), Required: true}
	}
	st.Close()
	return doctorCheck{Name: "data directory", Status: "pass", Detail: cfg.BaseDir, Required: true}
}

func countCheckStatuses(checks []doctorCheck) (passes, fails, warns int) {
	for _, c := range checks {
		switch c.Status {
		case "pass":
			passes++
		case "fail":
			fails++
		case "warn":
			warns++
		}
	}
	return passes, fails, warns
}

func buildDoctorSummary(passes, fails, warns, total int) string {
	switch {
	case fails == 0 && warns == 0:
		return fmt.Sprintf("%d/%d checks passed", passes, total)
	case fails == 0:
		summary := fmt.Sprintf("%d/%d checks passed, %d warning", passes, total, warns)
		if warns > 1 {
			summary += "s"
		}
		return summary
	default:
		parts := []string{fmt.Sprintf("%d/%d checks passed", passes, total)}
		if warns > 0 {
			w := fmt.Sprintf("%d warning", warns)
			if warns > 1 {
				w += "s"
			}
			parts = append(parts, w)
		}
		if fails > 0 {
			parts = append(parts, fmt.Sprintf("%d failed", fails))
		}
		return strings.Join(parts, ", ")
	}
}

func computeDoctorResult(checks []doctorCheck) doctorOutput {
	passes, fails, warns := countCheckStatuses(checks)
	result := "HEALTHY"
	switch {
	case fails > 0:
		result = "UNHEALTHY"
	case warns > 0:
		result = "DEGRADED"
	}
	return doctorOutput{
		Checks:  checks,
		Result:  result,
		Summary: buildDoctorSummary(passes, fails, warns, len(checks)),
	}
}
