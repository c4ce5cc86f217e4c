package adapter

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/boshu2/taskboard/internal/types"
)

// Tmux shells out to the tmux binary for session lifecycle management:
// existence checks, creation, teardown, and pane capture for status
// classification.
type Tmux struct {
	Timeout time.Duration
}

// NewTmux returns a Tmux adapter with a sane default timeout.
func NewTmux() *Tmux {
	return &Tmux{Timeout: 5 * time.Second}
}

func (tm *Tmux) timeout() time.Duration {
	if tm.Timeout <= 0 {
		return 5 * time.Second
	}
	return tm.Timeout
}

func (tm *Tmux) run(args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), tm.timeout())
	defer cancel()
	cmd := exec.CommandContext(ctx, "tmux", args...)
	out, err := cmd.CombinedOutput()
	if err != nil && errors.Is(err, exec.ErrNotFound) {
		return "", fmt.Errorf("%w: %v", ErrTmuxNotFound, err)
	}
	return string(out), err
}

// SessionExists reports whether a session named name is currently alive.
func (tm *Tmux) SessionExists(name string) bool {
	_, err := tm.run("has-session", "-t", name)
	return err == nil
}

// CreateSession starts a new detached session named name, rooted at cwd,
// running command. If command is empty, the session starts an interactive
// shell instead.
func (tm *Tmux) CreateSession(name, cwd, command string) error {
	args := []string{"new-session", "-d", "-s", name, "-c", cwd}
	if command != "" {
		args = append(args, command)
	}
	out, err := tm.run(args...)
	if err != nil {
		return fmt.Errorf("adapter: create tmux session %s: %w (%s)", name, err, strings.TrimSpace(out))
	}
	return nil
}

// KillSession terminates a session by name. Already-gone is not an error.
func (tm *Tmux) KillSession(name string) error {
	if !tm.SessionExists(name) {
		return nil
	}
	_, err := tm.run("kill-session", "-t", name)
	return err
}

// SendCommand types command into the session's active pane and presses
// Enter, as if run interactively.
func (tm *Tmux) SendCommand(name, command string) error {
	_, err := tm.run("send-keys", "-t", name, command, "Enter")
	return err
}

// SwitchClient attaches the current client to the named session.
func (tm *Tmux) SwitchClient(name string) error {
	_, err := tm.run("switch-client", "-t", name)
	return err
}

// CapturePane returns the trailing lines lines of a session's active pane.
func (tm *Tmux) CapturePane(name string, lines int) (string, error) {
	if lines <= 0 {
		lines = 50
	}
	out, err := tm.run("capture-pane", "-p", "-t", name, "-S", fmt.Sprintf("-%d", lines))
	if err != nil {
		return "", fmt.Errorf("adapter: capture pane %s: %w", name, err)
	}
	return out, nil
}

// PanePID returns the pid of the process currently occupying a session's
// active pane, used to check agent liveness via ps.
func (tm *Tmux) PanePID(name string) (int, error) {
	out, err := tm.run("list-panes", "-t", name, "-F", "#{pane_pid}")
	if err != nil {
		return 0, fmt.Errorf("adapter: list panes for %s: %w", name, err)
	}
	first := strings.TrimSpace(strings.SplitN(out, "\n", 2)[0])
	pid, err := strconv.Atoi(first)
	if err != nil {
		return 0, fmt.Errorf("adapter: parse pane pid for %s: %w", name, err)
	}
	return pid, nil
}

// ListSessions returns the names of all currently alive tmux sessions.
func (tm *Tmux) ListSessions() ([]string, error) {
	out, err := tm.run("list-sessions", "-F", "#{session_name}")
	if err != nil {
		// No server running yields a non-zero exit; treat as no sessions.
		return nil, nil
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// IsAgentRunning checks whether the process occupying a session's active
// pane is (or recently was) the agent binary: first via ps -o command= on
// the pane pid, falling back to a pane-capture classification when ps is
// inconclusive.
func IsAgentRunning(tm *Tmux, patterns StatusPatterns, sessionName, agentBinary string) bool {
	pid, err := tm.PanePID(sessionName)
	if err == nil {
		if cmdline, err := psCommand(pid); err == nil && strings.Contains(strings.ToLower(cmdline), strings.ToLower(agentBinary)) {
			return true
		}
	}

	pane, err := tm.CapturePane(sessionName, 50)
	if err != nil {
		return false
	}
	switch ClassifyPane(patterns, pane) {
	case types.StatusRunning, types.StatusWaiting, types.StatusIdle:
		return true
	default:
		return false
	}
}

func psCommand(pid int) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	cmd := exec.CommandContext(ctx, "ps", "-p", strconv.Itoa(pid), "-o", "command=")
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}
